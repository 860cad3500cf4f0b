package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner/internal/api/tripcontext"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// MultiDayBuilder orchestrates the day builder across a whole trip: POIs are
// never repeated across days, and core POIs are rotated so the must-sees are
// spread over the trip instead of front-loaded onto day one.
type MultiDayBuilder struct {
	logger   *slog.Logger
	day      *DayBuilder
	provider tripcontext.Provider
}

func NewMultiDayBuilder(day *DayBuilder, provider tripcontext.Provider, logger *slog.Logger) *MultiDayBuilder {
	return &MultiDayBuilder{logger: logger, day: day, provider: provider}
}

// BuildPlan builds req.Days consecutive days from the given catalog slice.
func (m *MultiDayBuilder) BuildPlan(ctx context.Context, candidates []types.POI, req types.GenerateRequest) ([]types.DayPlan, error) {
	if req.Days < 1 {
		return nil, fmt.Errorf("day count must be at least 1: %w", types.ErrValidation)
	}
	windowStart, windowEnd := req.WindowStart, req.WindowEnd
	if windowStart == 0 && windowEnd == 0 {
		windowStart, windowEnd = DefaultWindowStart, DefaultWindowEnd
	}
	if windowStart >= windowEnd {
		return nil, fmt.Errorf("day window [%d, %d) is empty: %w", windowStart, windowEnd, types.ErrValidation)
	}

	profile := req.Profile.Normalized()
	featured := rotateCore(candidates, req.Days)
	used := make(map[uuid.UUID]bool)

	days := make([]types.DayPlan, 0, req.Days)
	for d := 0; d < req.Days; d++ {
		date := req.StartDate.AddDate(0, 0, d)
		tctx, err := m.provider.GetContext(ctx, req.Location, date)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve context for day %d: %w", d+1, err)
		}

		day, err := m.day.Build(ctx, candidates, DayParams{
			DayIndex:     d + 1,
			Date:         date,
			WindowStart:  windowStart,
			WindowEnd:    windowEnd,
			Profile:      profile,
			Context:      tctx,
			Used:         used,
			FeaturedCore: featured[d],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build day %d: %w", d+1, err)
		}
		m.logger.DebugContext(ctx, "day built",
			slog.Int("day", d+1), slog.Int("items", len(day.Items)))
		days = append(days, day)
	}
	return days, nil
}

// rotateCore assigns each core POI a featured day round-robin in catalog
// order. On its featured day a core POI keeps the full core bonus; elsewhere
// it competes with the secondary bonus only.
func rotateCore(candidates []types.POI, days int) []map[uuid.UUID]bool {
	featured := make([]map[uuid.UUID]bool, days)
	for d := range featured {
		featured[d] = make(map[uuid.UUID]bool)
	}
	if days <= 1 {
		// single-day trips need no rotation; feature everything
		for _, poi := range candidates {
			if poi.Priority == types.PriorityCore {
				featured[0][poi.ID] = true
			}
		}
		return featured
	}
	i := 0
	for _, poi := range candidates {
		if poi.Priority != types.PriorityCore {
			continue
		}
		featured[i%days][poi.ID] = true
		i++
	}
	return featured
}
