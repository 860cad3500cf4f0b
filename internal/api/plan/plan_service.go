package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/similarity"
	"github.com/FACorreiaa/go-trip-planner/internal/api/tripcontext"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the plan edit state machine. Every mutating operation loads the
// latest version, computes the new day layout, and appends an immutable
// version on top; concurrent edits against the same base lose with
// ErrVersionConflict and must reload.
type Service interface {
	Generate(ctx context.Context, req types.GenerateRequest) (*types.PlanWithVersion, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*types.PlanWithVersion, error)
	GetVersion(ctx context.Context, planID uuid.UUID, versionNumber int) (*types.PlanVersion, error)
	ListVersions(ctx context.Context, planID uuid.UUID) ([]types.PlanVersion, error)
	DeletePlan(ctx context.Context, planID uuid.UUID) error
	Remove(ctx context.Context, req types.RemoveRequest) (*types.PlanWithVersion, error)
	Replace(ctx context.Context, req types.ReplaceRequest) (*types.PlanWithVersion, error)
	RegenerateRange(ctx context.Context, req types.RegenerateRangeRequest) (*types.PlanWithVersion, error)
	Rollback(ctx context.Context, req types.RollbackRequest) (*types.PlanWithVersion, error)
}

// Narrator produces an optional human-readable trip description. A nil
// narrator leaves the description empty.
type Narrator interface {
	Describe(ctx context.Context, plan types.Plan, days []types.DayPlan) string
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	catalog  catalog.Repository
	multiday *itinerary.MultiDayBuilder
	day      *itinerary.DayBuilder
	matcher  *similarity.Matcher
	provider tripcontext.Provider
	narrator Narrator
	metrics  *metrics.AppMetrics
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	multiday *itinerary.MultiDayBuilder,
	day *itinerary.DayBuilder,
	matcher *similarity.Matcher,
	provider tripcontext.Provider,
	narrator Narrator,
	appMetrics *metrics.AppMetrics,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		catalog:  catalogRepo,
		multiday: multiday,
		day:      day,
		matcher:  matcher,
		provider: provider,
		narrator: narrator,
		metrics:  appMetrics,
	}
}

// recordEdit updates the edit counters; a nil metrics handle (tests) is a
// no-op.
func (s *ServiceImpl) recordEdit(ctx context.Context, op types.ChangeType, err error) {
	if s.metrics == nil {
		return
	}
	if errors.Is(err, types.ErrVersionConflict) {
		s.metrics.VersionConflictsTotal.Add(ctx, 1)
	}
	if err == nil {
		s.metrics.PlanEditsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("operation", string(op))))
	}
}

func (s *ServiceImpl) Generate(ctx context.Context, req types.GenerateRequest) (*types.PlanWithVersion, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("plan.location", req.Location),
		attribute.Int("plan.days", req.Days),
	))
	defer span.End()

	if req.Location == "" {
		return nil, fmt.Errorf("location is required: %w", types.ErrValidation)
	}
	if req.Days < 1 {
		return nil, fmt.Errorf("day count must be at least 1: %w", types.ErrValidation)
	}
	buildStart := time.Now()

	candidates, err := s.catalog.ListPOIs(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("catalog is empty, nothing to schedule: %w", types.ErrInfeasible)
	}

	days, err := s.multiday.BuildPlan(ctx, candidates, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	profile := req.Profile.Normalized()
	plan := types.Plan{
		ID:          uuid.New(),
		Location:    req.Location,
		GroupType:   profile.TargetGroup,
		DayCount:    req.Days,
		BudgetLevel: profile.BudgetLevel,
		Profile:     profile,
		Metadata:    req.Metadata,
	}
	if s.narrator != nil {
		plan.Description = s.narrator.Describe(ctx, plan, days)
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		span.RecordError(err)
		return nil, err
	}

	version, err := s.repo.AppendVersion(ctx, AppendVersionParams{
		PlanID:        plan.ID,
		BaseVersion:   0,
		ChangeType:    types.ChangeGenerate,
		Days:          days,
		ChangeSummary: fmt.Sprintf("generated %d-day plan for %s", req.Days, req.Location),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PlansGeneratedTotal.Add(ctx, 1)
		s.metrics.PlanBuildDurationSeconds.Record(ctx, time.Since(buildStart).Seconds())
	}
	span.SetStatus(codes.Ok, "Plan generated")
	s.logger.InfoContext(ctx, "plan generated",
		slog.String("planID", plan.ID.String()),
		slog.Int("days", req.Days),
		slog.String("location", req.Location),
	)
	return &types.PlanWithVersion{Plan: plan, Version: *version}, nil
}

func (s *ServiceImpl) GetPlan(ctx context.Context, planID uuid.UUID) (*types.PlanWithVersion, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "GetPlan")
	defer span.End()

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	latest, err := s.repo.LoadLatest(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &types.PlanWithVersion{Plan: *plan, Version: *latest}, nil
}

func (s *ServiceImpl) GetVersion(ctx context.Context, planID uuid.UUID, versionNumber int) (*types.PlanVersion, error) {
	return s.repo.LoadVersion(ctx, planID, versionNumber)
}

func (s *ServiceImpl) ListVersions(ctx context.Context, planID uuid.UUID) ([]types.PlanVersion, error) {
	return s.repo.ListVersions(ctx, planID)
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	return s.repo.DeletePlan(ctx, planID)
}

func (s *ServiceImpl) Remove(ctx context.Context, req types.RemoveRequest) (*types.PlanWithVersion, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "Remove", trace.WithAttributes(
		attribute.String("plan.id", req.PlanID.String()),
	))
	defer span.End()

	plan, latest, err := s.loadLatest(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	days := cloneDays(latest.Days)
	dayIdx, itemIdx := findItem(days, req.ItemID)
	if dayIdx < 0 {
		return nil, fmt.Errorf("item %s is not in the current plan: %w", req.ItemID, types.ErrNotFound)
	}

	removed := days[dayIdx].Items[itemIdx]
	cut := []int{itemIdx}
	// the parking stop that serves a removed attraction goes with it
	if removed.Type == types.ItemAttraction && itemIdx > 0 &&
		days[dayIdx].Items[itemIdx-1].Type == types.ItemParking {
		cut = append([]int{itemIdx - 1}, cut...)
	}
	days[dayIdx].Items = removeAt(days[dayIdx].Items, cut)

	summary := fmt.Sprintf("removed %q from day %d", removed.Name, days[dayIdx].DayIndex)
	if removed.POIID != nil {
		summary = fmt.Sprintf("removed %q (poi %s) from day %d", removed.Name, removed.POIID, days[dayIdx].DayIndex)
	}
	version, err := s.repo.AppendVersion(ctx, AppendVersionParams{
		PlanID:          req.PlanID,
		BaseVersion:     latest.VersionNumber,
		ChangeType:      types.ChangeRemove,
		ParentVersionID: &latest.ID,
		Days:            days,
		ChangeSummary:   summary,
	})
	s.recordEdit(ctx, types.ChangeRemove, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Item removed")
	return &types.PlanWithVersion{Plan: *plan, Version: *version}, nil
}

func (s *ServiceImpl) Replace(ctx context.Context, req types.ReplaceRequest) (*types.PlanWithVersion, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "Replace", trace.WithAttributes(
		attribute.String("plan.id", req.PlanID.String()),
		attribute.String("replace.strategy", string(req.Strategy)),
	))
	defer span.End()

	plan, latest, err := s.loadLatest(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	days := cloneDays(latest.Days)
	dayIdx, itemIdx := findItem(days, req.ItemID)
	if dayIdx < 0 {
		return nil, fmt.Errorf("item %s is not in the current plan: %w", req.ItemID, types.ErrNotFound)
	}
	target := days[dayIdx].Items[itemIdx]
	if target.Type != types.ItemAttraction || target.POIID == nil {
		return nil, fmt.Errorf("only attractions can be replaced: %w", types.ErrValidation)
	}

	outgoing, err := s.catalog.GetPOI(ctx, *target.POIID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.ListPOIs(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if req.Strategy == types.StrategySameCategory {
		var filtered []types.POI
		for _, poi := range candidates {
			if poi.Category == outgoing.Category {
				filtered = append(filtered, poi)
			}
		}
		candidates = filtered
	}

	// the substitute must be open for the slot it inherits
	date := days[dayIdx].Date
	from, to := minuteOf(target.Start), minuteOf(target.End)
	var open []types.POI
	for _, poi := range candidates {
		if catalog.OpenForInterval(poi.Hours, date, from, to) {
			open = append(open, poi)
		}
	}

	match, ok := s.matcher.FindSubstitute(*outgoing, open, usedPOIs(days), &target.Start)
	if !ok {
		return nil, fmt.Errorf("no acceptable substitute for %q: %w", target.Name, types.ErrInfeasible)
	}

	substituteID := match.POI.ID
	days[dayIdx].Items[itemIdx] = types.ScheduledItem{
		ID:      uuid.New(),
		Type:    types.ItemAttraction,
		Start:   target.Start,
		End:     target.End,
		Name:    match.POI.Name,
		POIID:   &substituteID,
		Reasons: []string{fmt.Sprintf("similar to %s (%.0f%% match)", target.Name, match.Score*100)},
	}

	version, err := s.repo.AppendVersion(ctx, AppendVersionParams{
		PlanID:          req.PlanID,
		BaseVersion:     latest.VersionNumber,
		ChangeType:      types.ChangeReplace,
		ParentVersionID: &latest.ID,
		Days:            days,
		ChangeSummary:   fmt.Sprintf("replaced %q with %q on day %d", target.Name, match.POI.Name, days[dayIdx].DayIndex),
	})
	s.recordEdit(ctx, types.ChangeReplace, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Item replaced")
	return &types.PlanWithVersion{Plan: *plan, Version: *version}, nil
}

func (s *ServiceImpl) RegenerateRange(ctx context.Context, req types.RegenerateRangeRequest) (*types.PlanWithVersion, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "RegenerateRange", trace.WithAttributes(
		attribute.String("plan.id", req.PlanID.String()),
		attribute.Int("range.day", req.Day),
		attribute.Int("range.from", req.FromMinute),
		attribute.Int("range.to", req.ToMinute),
	))
	defer span.End()

	if req.FromMinute >= req.ToMinute {
		return nil, fmt.Errorf("range [%d, %d) is empty: %w", req.FromMinute, req.ToMinute, types.ErrValidation)
	}

	plan, latest, err := s.loadLatest(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	days := cloneDays(latest.Days)
	if req.Day < 1 || req.Day > len(days) {
		return nil, fmt.Errorf("day %d is outside the plan: %w", req.Day, types.ErrValidation)
	}
	target := &days[req.Day-1]

	pinnedSet := make(map[uuid.UUID]bool, len(req.PinnedItems))
	for _, id := range req.PinnedItems {
		pinnedSet[id] = true
	}

	// split the day: items outside the range survive as-is, meals and
	// explicitly pinned items inside the range are kept in place, the rest is
	// discarded and rebuilt
	var outside, pinned []types.ScheduledItem
	dropped := make(map[uuid.UUID]bool)
	for _, it := range target.Items {
		start, end := minuteOf(it.Start), minuteOf(it.End)
		if end <= req.FromMinute || start >= req.ToMinute {
			outside = append(outside, it)
			continue
		}
		if it.Type == types.ItemMeal || pinnedSet[it.ID] {
			pinned = append(pinned, it)
			continue
		}
		if it.POIID != nil {
			dropped[*it.POIID] = true
		}
	}

	used := usedPOIs(days)
	for id := range dropped {
		delete(used, id)
	}

	tctx, err := s.provider.GetContext(ctx, plan.Location, target.Date)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to resolve context for day %d: %w", req.Day, err)
	}

	candidates, err := s.catalog.ListPOIs(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	rebuilt, err := s.day.Build(ctx, candidates, itinerary.DayParams{
		DayIndex:    req.Day,
		Date:        target.Date,
		WindowStart: req.FromMinute,
		WindowEnd:   req.ToMinute,
		Profile:     plan.Profile,
		Context:     tctx,
		Used:        used,
		Pinned:      pinned,
		SkipMeals:   true,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	target.Items = mergeItems(outside, rebuilt.Items)

	version, err := s.repo.AppendVersion(ctx, AppendVersionParams{
		PlanID:          req.PlanID,
		BaseVersion:     latest.VersionNumber,
		ChangeType:      types.ChangeRegenerateRange,
		ParentVersionID: &latest.ID,
		Days:            days,
		ChangeSummary:   fmt.Sprintf("regenerated day %d between %s and %s", req.Day, clock(req.FromMinute), clock(req.ToMinute)),
	})
	s.recordEdit(ctx, types.ChangeRegenerateRange, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Range regenerated")
	return &types.PlanWithVersion{Plan: *plan, Version: *version}, nil
}

func (s *ServiceImpl) Rollback(ctx context.Context, req types.RollbackRequest) (*types.PlanWithVersion, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "Rollback", trace.WithAttributes(
		attribute.String("plan.id", req.PlanID.String()),
		attribute.Int("rollback.target", req.TargetVersion),
	))
	defer span.End()

	plan, latest, err := s.loadLatest(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if req.TargetVersion == latest.VersionNumber {
		return nil, fmt.Errorf("version %d is already current: %w", req.TargetVersion, types.ErrValidation)
	}
	target, err := s.repo.LoadVersion(ctx, req.PlanID, req.TargetVersion)
	if err != nil {
		return nil, err
	}

	// rollback never rewrites history; it appends a copy of the target
	// snapshot so the detour stays visible in the lineage
	version, err := s.repo.AppendVersion(ctx, AppendVersionParams{
		PlanID:          req.PlanID,
		BaseVersion:     latest.VersionNumber,
		ChangeType:      types.ChangeRollback,
		ParentVersionID: &latest.ID,
		Days:            cloneDays(target.Days),
		ChangeSummary:   fmt.Sprintf("rolled back to version %d", req.TargetVersion),
	})
	s.recordEdit(ctx, types.ChangeRollback, err)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Plan rolled back")
	s.logger.InfoContext(ctx, "plan rolled back",
		slog.String("planID", req.PlanID.String()),
		slog.Int("target", req.TargetVersion),
		slog.Int("newVersion", version.VersionNumber),
	)
	return &types.PlanWithVersion{Plan: *plan, Version: *version}, nil
}

func (s *ServiceImpl) loadLatest(ctx context.Context, planID uuid.UUID) (*types.Plan, *types.PlanVersion, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	latest, err := s.repo.LoadLatest(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	return plan, latest, nil
}

// cloneDays deep-copies the item slices so edits never alias a loaded
// snapshot.
func cloneDays(days []types.DayPlan) []types.DayPlan {
	out := make([]types.DayPlan, len(days))
	for i, d := range days {
		out[i] = d
		out[i].Items = append([]types.ScheduledItem(nil), d.Items...)
	}
	return out
}

func findItem(days []types.DayPlan, itemID uuid.UUID) (dayIdx, itemIdx int) {
	for d := range days {
		for i := range days[d].Items {
			if days[d].Items[i].ID == itemID {
				return d, i
			}
		}
	}
	return -1, -1
}

func usedPOIs(days []types.DayPlan) map[uuid.UUID]bool {
	used := make(map[uuid.UUID]bool)
	for _, day := range days {
		for _, it := range day.Items {
			if it.POIID != nil {
				used[*it.POIID] = true
			}
		}
	}
	return used
}

func removeAt(items []types.ScheduledItem, indexes []int) []types.ScheduledItem {
	skip := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		skip[i] = true
	}
	out := items[:0]
	for i, it := range items {
		if !skip[i] {
			out = append(out, it)
		}
	}
	return out
}

func mergeItems(a, b []types.ScheduledItem) []types.ScheduledItem {
	merged := make([]types.ScheduledItem, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})
	return merged
}

func minuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
