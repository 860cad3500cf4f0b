package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/scoring"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const (
	DefaultWindowStart = 9 * 60
	DefaultWindowEnd   = 21 * 60

	lunchEarliestMinute  = 12*60 + 30
	lunchWindowFrom      = 12 * 60
	lunchWindowTo        = 14 * 60
	dinnerEarliestMinute = 19 * 60
	dinnerWindowFrom     = 18*60 + 30
	dinnerWindowTo       = 20*60 + 30
	mealDurationMinutes  = 60

	minGapMinutes      = 15
	fillableGapMinutes = 45

	parkingMinutes  = 10
	scoringParallel = 8
)

// DayParams drives one day-build pass. Used is shared across days of a plan
// and is mutated as POIs are consumed.
type DayParams struct {
	DayIndex    int // 1-based
	Date        time.Time
	WindowStart int // minutes of day
	WindowEnd   int
	Profile     types.UserProfile
	Context     types.TripContext
	Used        map[uuid.UUID]bool
	// FeaturedCore limits the full core bonus to the listed POIs; other core
	// POIs are demoted to the secondary bonus. Nil disables rotation.
	FeaturedCore map[uuid.UUID]bool
	// Pinned items are fixed in place; the builder schedules around them.
	Pinned []types.ScheduledItem
	// SkipMeals suppresses meal insertion (used when regenerating a
	// sub-range whose meals are pinned or out of range).
	SkipMeals bool
}

// DayBuilder fills a single day's time window by repeatedly scoring the
// remaining catalog and placing the best fitting candidate, together with
// parking, meal breaks and labeled free time.
type DayBuilder struct {
	logger *slog.Logger
	scorer *scoring.Scorer
}

func NewDayBuilder(scorer *scoring.Scorer, logger *slog.Logger) *DayBuilder {
	return &DayBuilder{logger: logger, scorer: scorer}
}

type mealSlot struct {
	name     string
	earliest int
	pending  bool
}

// Build runs the scheduling loop until the window is exhausted or no
// eligible candidate fits. Candidates must be in catalog order; ties on
// score resolve to the earliest candidate.
func (b *DayBuilder) Build(ctx context.Context, candidates []types.POI, p DayParams) (types.DayPlan, error) {
	if p.WindowStart >= p.WindowEnd {
		return types.DayPlan{}, fmt.Errorf("day window [%d, %d) is empty: %w", p.WindowStart, p.WindowEnd, types.ErrValidation)
	}
	if p.Used == nil {
		p.Used = make(map[uuid.UUID]bool)
	}

	day := types.DayPlan{DayIndex: p.DayIndex, Date: p.Date}
	day.Items = append(day.Items, p.Pinned...)
	sortItems(day.Items)

	lunch := mealSlot{name: "lunch", earliest: lunchEarliestMinute}
	dinner := mealSlot{name: "dinner", earliest: dinnerEarliestMinute}
	if !p.SkipMeals {
		lunch.pending = p.WindowStart < lunchWindowTo && p.WindowEnd > lunchWindowFrom && !hasMeal(day.Items, "lunch")
		dinner.pending = p.WindowStart < dinnerWindowTo && p.WindowEnd > dinnerWindowFrom && !hasMeal(day.Items, "dinner")
	}

	cursor := p.WindowStart
	state := types.BodyStateNeutral

	for cursor < p.WindowEnd {
		cursor = skipPinned(day.Items, cursor)
		if cursor >= p.WindowEnd {
			break
		}

		if lunch.pending && cursor >= lunch.earliest {
			day.Items = insertItem(day.Items, b.mealItem(p.Date, &lunch, cursor, p.WindowEnd))
			cursor += mealDurationMinutes
			continue
		}
		if dinner.pending && cursor >= dinner.earliest {
			day.Items = insertItem(day.Items, b.mealItem(p.Date, &dinner, cursor, p.WindowEnd))
			cursor += mealDurationMinutes
			continue
		}

		limit := b.selectionLimit(day.Items, p, cursor, lunch, dinner)
		pick, ok, err := b.selectCandidate(ctx, candidates, p, cursor, limit, state)
		if err != nil {
			return types.DayPlan{}, err
		}
		if !ok {
			// nothing fits before the limit; move on to the next commitment
			next, label := nextCommitment(p, cursor, lunch, dinner, day.Items)
			gap := next - cursor
			if gap >= minGapMinutes && gap <= fillableGapMinutes {
				day.Items = insertItem(day.Items, freeTimeItem(p.Date, cursor, next, label))
			}
			if next <= cursor || next >= p.WindowEnd {
				if !lunch.pending && !dinner.pending {
					break
				}
			}
			cursor = next
			continue
		}

		for _, item := range pick.items {
			day.Items = insertItem(day.Items, item)
		}
		p.Used[pick.poi.ID] = true
		state = b.scorer.NextBodyState(state, pick.poi)
		cursor = pick.endMinute
	}

	sortItems(day.Items)
	return day, nil
}

// selection holds one placed candidate: the attraction item plus an optional
// preceding parking item.
type selection struct {
	poi       types.POI
	items     []types.ScheduledItem
	endMinute int
}

// selectCandidate scores every eligible POI and places the best one starting
// at cursor. Scoring runs in parallel; the final argmax scans in candidate
// order so ties stay catalog-order stable regardless of execution order.
func (b *DayBuilder) selectCandidate(ctx context.Context, candidates []types.POI, p DayParams, cursor, limit int, state types.BodyState) (selection, bool, error) {
	type placed struct {
		poi        types.POI
		start, end int
		parking    bool
	}

	var eligible []placed
	for _, poi := range candidates {
		if p.Used[poi.ID] {
			continue
		}
		start := cursor
		needsParking := poi.Parking != nil && p.Profile.HasVehicle
		if needsParking {
			start = cursor + parkingMinutes + poi.Parking.WalkTimeMinutes
		}
		if start+poi.MinVisitMinutes > limit {
			continue
		}
		if !catalog.OpenAt(poi.Hours, p.Date, start) {
			continue
		}
		end := start + poi.TypicalVisitMinutes()
		if end > limit {
			end = limit
		}
		eligible = append(eligible, placed{poi: poi, start: start, end: end, parking: needsParking})
	}
	if len(eligible) == 0 {
		return selection{}, false, nil
	}

	scores := make([]types.ScoreBreakdown, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoringParallel)
	for i := range eligible {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			sb := b.scorer.Score(eligible[i].poi, p.Profile, p.Context, state)
			if p.FeaturedCore != nil && eligible[i].poi.Priority == types.PriorityCore && !p.FeaturedCore[eligible[i].poi.ID] {
				// demote off-rotation core POIs to the secondary bonus
				sb.Priority = 10.0
				sb.Total -= 20.0
			}
			scores[i] = sb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return selection{}, false, fmt.Errorf("candidate scoring interrupted: %w", err)
	}

	best := 0
	for i := 1; i < len(eligible); i++ {
		if scores[i].Total > scores[best].Total {
			best = i
		}
	}

	chosen := eligible[best]
	sb := scores[best]
	sel := selection{poi: chosen.poi, endMinute: chosen.end}
	if chosen.parking {
		parkEnd := cursor + parkingMinutes
		parkID := uuid.New()
		sel.items = append(sel.items, types.ScheduledItem{
			ID:              parkID,
			Type:            types.ItemParking,
			Start:           minuteToTime(p.Date, cursor),
			End:             minuteToTime(p.Date, parkEnd),
			Name:            chosen.poi.Parking.Name,
			WalkTimeMinutes: chosen.poi.Parking.WalkTimeMinutes,
		})
	}
	poiID := chosen.poi.ID
	sel.items = append(sel.items, types.ScheduledItem{
		ID:      uuid.New(),
		Type:    types.ItemAttraction,
		Start:   minuteToTime(p.Date, chosen.start),
		End:     minuteToTime(p.Date, chosen.end),
		Name:    chosen.poi.Name,
		POIID:   &poiID,
		Score:   &sb,
		Reasons: selectionReasons(sb, chosen.poi),
	})
	return sel, true, nil
}

// selectionLimit is the latest minute the next attraction may run to: the
// next pinned item's start, minus time reserved for still-pending meals,
// capped by the window end.
func (b *DayBuilder) selectionLimit(items []types.ScheduledItem, p DayParams, cursor int, lunch, dinner mealSlot) int {
	limit := p.WindowEnd
	if next := nextPinnedStart(items, cursor); next >= 0 && next < limit {
		limit = next
	}
	reserved := 0
	if lunch.pending && cursor <= lunch.earliest {
		reserved += mealDurationMinutes
	}
	if dinner.pending && cursor <= dinner.earliest {
		reserved += mealDurationMinutes
	}
	if limit == p.WindowEnd {
		limit -= reserved
	}
	return limit
}

func (b *DayBuilder) mealItem(date time.Time, meal *mealSlot, cursor, windowEnd int) types.ScheduledItem {
	end := cursor + mealDurationMinutes
	if end > windowEnd {
		end = windowEnd
	}
	meal.pending = false
	return types.ScheduledItem{
		ID:    uuid.New(),
		Type:  types.ItemMeal,
		Start: minuteToTime(date, cursor),
		End:   minuteToTime(date, end),
		Name:  meal.name,
		Label: meal.name,
	}
}

// nextCommitment returns the next fixed boundary after cursor and a label
// describing the temporal context of the gap leading up to it.
func nextCommitment(p DayParams, cursor int, lunch, dinner mealSlot, items []types.ScheduledItem) (int, string) {
	next := p.WindowEnd
	label := "free time to wind down the day"
	if pinned := nextPinnedStart(items, cursor); pinned >= 0 && pinned < next {
		next = pinned
		label = "free time before the next fixed stop"
	}
	if lunch.pending && lunch.earliest > cursor && lunch.earliest < next {
		next = lunch.earliest
		label = "free time before lunch"
	} else if dinner.pending && dinner.earliest > cursor && dinner.earliest < next {
		next = dinner.earliest
		label = "free time before dinner"
	}
	return next, label
}

func freeTimeItem(date time.Time, from, to int, label string) types.ScheduledItem {
	return types.ScheduledItem{
		ID:    uuid.New(),
		Type:  types.ItemFreeTime,
		Start: minuteToTime(date, from),
		End:   minuteToTime(date, to),
		Name:  "free time",
		Label: label,
	}
}

func selectionReasons(sb types.ScoreBreakdown, poi types.POI) []string {
	var reasons []string
	if sb.Priority >= 30 {
		reasons = append(reasons, "must-see highlight of the area")
	}
	if sb.TargetGroup >= 6 {
		reasons = append(reasons, "good fit for your group")
	}
	if sb.TravelStyle >= 6 {
		reasons = append(reasons, "matches your travel style")
	}
	if sb.TagPreference > 0 {
		reasons = append(reasons, "matches your stated interests")
	}
	if sb.Budget > 0 {
		reasons = append(reasons, "easy on the budget")
	}
	if sb.BodyState > 0 {
		reasons = append(reasons, "a good moment to warm up and recover")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("best available option (%s)", poi.Category))
	}
	return reasons
}

func hasMeal(items []types.ScheduledItem, name string) bool {
	for _, it := range items {
		if it.Type == types.ItemMeal && it.Label == name {
			return true
		}
	}
	return false
}

// skipPinned advances the cursor past any pinned item covering it.
func skipPinned(items []types.ScheduledItem, cursor int) int {
	for _, it := range items {
		start, end := minuteOf(it.Start), minuteOf(it.End)
		if cursor >= start && cursor < end {
			cursor = end
		}
	}
	return cursor
}

// nextPinnedStart returns the start minute of the first item beginning after
// cursor, or -1 when there is none. Items are kept sorted by start.
func nextPinnedStart(items []types.ScheduledItem, cursor int) int {
	next := -1
	for _, it := range items {
		start := minuteOf(it.Start)
		if start >= cursor && (next < 0 || start < next) {
			next = start
		}
	}
	return next
}

func insertItem(items []types.ScheduledItem, item types.ScheduledItem) []types.ScheduledItem {
	items = append(items, item)
	sortItems(items)
	return items
}

func sortItems(items []types.ScheduledItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start.Before(items[j].Start)
	})
}

func minuteToTime(date time.Time, minute int) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return midnight.Add(time.Duration(minute) * time.Minute)
}

func minuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
