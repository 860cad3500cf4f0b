package plan

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-planner/internal/api/scoring"
	"github.com/FACorreiaa/go-trip-planner/internal/api/similarity"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var testMonday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) // a Monday

// memoryRepository is an in-memory Repository that enforces the same
// append-only contract as the database: a version number can only be taken
// once per plan.
type memoryRepository struct {
	plans    map[uuid.UUID]types.Plan
	versions map[uuid.UUID][]types.PlanVersion
}

var _ Repository = (*memoryRepository)(nil)

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		plans:    make(map[uuid.UUID]types.Plan),
		versions: make(map[uuid.UUID][]types.PlanVersion),
	}
}

func (m *memoryRepository) CreatePlan(_ context.Context, plan types.Plan) error {
	m.plans[plan.ID] = plan
	return nil
}

func (m *memoryRepository) GetPlan(_ context.Context, planID uuid.UUID) (*types.Plan, error) {
	plan, ok := m.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
	}
	return &plan, nil
}

func (m *memoryRepository) DeletePlan(_ context.Context, planID uuid.UUID) error {
	if _, ok := m.plans[planID]; !ok {
		return fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
	}
	delete(m.plans, planID)
	delete(m.versions, planID)
	return nil
}

func (m *memoryRepository) LoadLatest(_ context.Context, planID uuid.UUID) (*types.PlanVersion, error) {
	versions := m.versions[planID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("plan %s has no versions: %w", planID, types.ErrNotFound)
	}
	latest := versions[len(versions)-1]
	return &latest, nil
}

func (m *memoryRepository) LoadVersion(_ context.Context, planID uuid.UUID, versionNumber int) (*types.PlanVersion, error) {
	for _, v := range m.versions[planID] {
		if v.VersionNumber == versionNumber {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("plan %s version %d: %w", planID, versionNumber, types.ErrNotFound)
}

func (m *memoryRepository) ListVersions(_ context.Context, planID uuid.UUID) ([]types.PlanVersion, error) {
	return append([]types.PlanVersion(nil), m.versions[planID]...), nil
}

func (m *memoryRepository) AppendVersion(_ context.Context, params AppendVersionParams) (*types.PlanVersion, error) {
	number := params.BaseVersion + 1
	for _, v := range m.versions[params.PlanID] {
		if v.VersionNumber == number {
			return nil, fmt.Errorf("plan %s base version %d is stale: %w",
				params.PlanID, params.BaseVersion, types.ErrVersionConflict)
		}
	}
	version := types.PlanVersion{
		ID:              uuid.New(),
		PlanID:          params.PlanID,
		VersionNumber:   number,
		ChangeType:      params.ChangeType,
		ParentVersionID: params.ParentVersionID,
		Days:            cloneDays(params.Days),
		ChangeSummary:   params.ChangeSummary,
		CreatedAt:       time.Now(),
	}
	m.versions[params.PlanID] = append(m.versions[params.PlanID], version)
	return &version, nil
}

// staleRepository simulates a concurrent editor: it always reports the first
// version as latest, so the second append on a plan conflicts.
type staleRepository struct {
	*memoryRepository
}

func (s *staleRepository) LoadLatest(_ context.Context, planID uuid.UUID) (*types.PlanVersion, error) {
	versions := s.versions[planID]
	if len(versions) == 0 {
		return nil, fmt.Errorf("plan %s has no versions: %w", planID, types.ErrNotFound)
	}
	first := versions[0]
	return &first, nil
}

type stubCatalog struct {
	pois []types.POI
}

var _ catalog.Repository = (*stubCatalog)(nil)

func (s *stubCatalog) ListPOIs(_ context.Context) ([]types.POI, error) {
	return s.pois, nil
}

func (s *stubCatalog) GetPOI(_ context.Context, id uuid.UUID) (*types.POI, error) {
	for _, poi := range s.pois {
		if poi.ID == id {
			return &poi, nil
		}
	}
	return nil, fmt.Errorf("poi %s: %w", id, types.ErrNotFound)
}

func (s *stubCatalog) SavePOI(_ context.Context, poi types.POI) (uuid.UUID, error) {
	s.pois = append(s.pois, poi)
	return poi.ID, nil
}

type stubProvider struct{}

func (stubProvider) GetContext(_ context.Context, _ string, date time.Time) (types.TripContext, error) {
	return types.TripContext{
		Season:  types.SeasonSummer,
		Date:    date,
		Weekday: date.Weekday(),
		Weather: types.WeatherSunny,
	}, nil
}

func testPOI(name string, minutes int, position int) types.POI {
	return types.POI{
		ID:              uuid.New(),
		Name:            name,
		Category:        "museum",
		MinVisitMinutes: minutes,
		MaxVisitMinutes: minutes,
		BudgetLevel:     2,
		CrowdLevel:      1,
		Hours:           types.OpeningHours{OpenMinute: 8 * 60, CloseMinute: 22 * 60},
		Position:        position,
	}
}

func newTestService(repo Repository, pois []types.POI) *ServiceImpl {
	logger := slog.New(slog.DiscardHandler)
	day := itinerary.NewDayBuilder(scoring.NewScorer(nil), logger)
	multiday := itinerary.NewMultiDayBuilder(day, stubProvider{}, logger)
	return NewService(repo, &stubCatalog{pois: pois}, multiday, day,
		similarity.NewMatcher(nil), stubProvider{}, nil, nil, logger)
}

// morningRequest keeps the window short of the lunch band so generated days
// hold attractions only.
func morningRequest(days int) types.GenerateRequest {
	return types.GenerateRequest{
		Location:    "Lake Balaton",
		StartDate:   testMonday,
		Days:        days,
		Profile:     types.UserProfile{TargetGroup: types.TargetGroupCouples},
		WindowStart: 9 * 60,
		WindowEnd:   12 * 60,
	}
}

func attractionItems(days []types.DayPlan) []types.ScheduledItem {
	var out []types.ScheduledItem
	for _, day := range days {
		for _, it := range day.Items {
			if it.Type == types.ItemAttraction {
				out = append(out, it)
			}
		}
	}
	return out
}

func TestGenerateCreatesVersionOne(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{
		testPOI("Museum A", 90, 0),
		testPOI("Gallery B", 90, 1),
		testPOI("Castle C", 90, 2),
		testPOI("Cave D", 90, 3),
	})

	result, err := service.Generate(context.Background(), morningRequest(2))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Version.VersionNumber)
	assert.Equal(t, types.ChangeGenerate, result.Version.ChangeType)
	assert.Nil(t, result.Version.ParentVersionID)
	require.Len(t, result.Version.Days, 2)
	assert.NotEmpty(t, attractionItems(result.Version.Days))
	assert.Equal(t, 2, result.Plan.DayCount)
}

func TestGenerateEmptyCatalogIsInfeasible(t *testing.T) {
	service := newTestService(newMemoryRepository(), nil)

	_, err := service.Generate(context.Background(), morningRequest(1))
	assert.ErrorIs(t, err, types.ErrInfeasible)
}

func TestRemoveAppendsVersionWithoutItem(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{
		testPOI("Museum A", 90, 0),
		testPOI("Gallery B", 90, 1),
	})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)
	attractions := attractionItems(generated.Version.Days)
	require.NotEmpty(t, attractions)
	victim := attractions[0]

	result, err := service.Remove(context.Background(), types.RemoveRequest{
		PlanID: generated.Plan.ID,
		ItemID: victim.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Version.VersionNumber)
	assert.Equal(t, types.ChangeRemove, result.Version.ChangeType)
	require.NotNil(t, result.Version.ParentVersionID)
	assert.Equal(t, generated.Version.ID, *result.Version.ParentVersionID)
	require.NotNil(t, victim.POIID)
	assert.Contains(t, result.Version.ChangeSummary, victim.POIID.String())
	for _, it := range attractionItems(result.Version.Days) {
		assert.NotEqual(t, victim.ID, it.ID)
	}

	// the generated version is untouched
	v1, err := repo.LoadVersion(context.Background(), generated.Plan.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, generated.Version.Days, v1.Days)
}

func TestRemoveAttractionTakesParkingAlong(t *testing.T) {
	withCar := testPOI("Hillside Cave", 90, 0)
	withCar.Parking = &types.ParkingInfo{Name: "Cave Lot", WalkTimeMinutes: 5}

	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{withCar})

	req := morningRequest(1)
	req.Profile.HasVehicle = true
	generated, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	attractions := attractionItems(generated.Version.Days)
	require.Len(t, attractions, 1)

	result, err := service.Remove(context.Background(), types.RemoveRequest{
		PlanID: generated.Plan.ID,
		ItemID: attractions[0].ID,
	})
	require.NoError(t, err)

	for _, day := range result.Version.Days {
		for _, it := range day.Items {
			assert.NotEqual(t, types.ItemParking, it.Type, "orphaned parking stop left behind")
		}
	}
}

func TestRemoveUnknownItem(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{testPOI("Museum A", 90, 0)})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)

	_, err = service.Remove(context.Background(), types.RemoveRequest{
		PlanID: generated.Plan.ID,
		ItemID: uuid.New(),
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestReplaceSwapsInSimilarAttraction(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{
		testPOI("City Museum", 90, 0),
		testPOI("Maritime Museum", 90, 1),
	})

	req := morningRequest(1)
	req.WindowEnd = 11 * 60 // room for one attraction only
	generated, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	attractions := attractionItems(generated.Version.Days)
	require.Len(t, attractions, 1)
	original := attractions[0]
	require.Equal(t, "City Museum", original.Name)

	result, err := service.Replace(context.Background(), types.ReplaceRequest{
		PlanID: generated.Plan.ID,
		ItemID: original.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, types.ChangeReplace, result.Version.ChangeType)
	replaced := attractionItems(result.Version.Days)
	require.Len(t, replaced, 1)
	assert.Equal(t, "Maritime Museum", replaced[0].Name)
	// the substitute inherits the original slot
	assert.Equal(t, original.Start, replaced[0].Start)
	assert.Equal(t, original.End, replaced[0].End)
}

func TestReplaceWithoutSubstituteIsInfeasible(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{testPOI("Only Museum", 90, 0)})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)
	attractions := attractionItems(generated.Version.Days)
	require.NotEmpty(t, attractions)

	_, err = service.Replace(context.Background(), types.ReplaceRequest{
		PlanID: generated.Plan.ID,
		ItemID: attractions[0].ID,
	})
	assert.ErrorIs(t, err, types.ErrInfeasible)

	// a failed replace appends nothing
	latest, err := repo.LoadLatest(context.Background(), generated.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.VersionNumber)
}

func TestRegenerateRangePreservesMealsAndOutsideItems(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{
		testPOI("Museum A", 90, 0),
		testPOI("Gallery B", 90, 1),
		testPOI("Castle C", 90, 2),
		testPOI("Cave D", 90, 3),
	})

	req := morningRequest(1)
	req.WindowEnd = 14 * 60 // crosses the lunch band
	generated, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	var lunch *types.ScheduledItem
	for _, day := range generated.Version.Days {
		for i := range day.Items {
			if day.Items[i].Type == types.ItemMeal {
				lunch = &day.Items[i]
			}
		}
	}
	require.NotNil(t, lunch, "expected a lunch break in the generated day")

	result, err := service.RegenerateRange(context.Background(), types.RegenerateRangeRequest{
		PlanID:     generated.Plan.ID,
		Day:        1,
		FromMinute: 9 * 60,
		ToMinute:   14 * 60,
	})
	require.NoError(t, err)

	assert.Equal(t, types.ChangeRegenerateRange, result.Version.ChangeType)
	require.Len(t, result.Version.Days, 1)

	var keptLunch *types.ScheduledItem
	seen := map[uuid.UUID]bool{}
	items := result.Version.Days[0].Items
	for i := range items {
		if items[i].Type == types.ItemMeal {
			keptLunch = &items[i]
		}
		if items[i].POIID != nil {
			assert.False(t, seen[*items[i].POIID], "POI %s scheduled twice", items[i].Name)
			seen[*items[i].POIID] = true
		}
	}
	require.NotNil(t, keptLunch, "the lunch break must survive regeneration")
	assert.Equal(t, lunch.ID, keptLunch.ID)
	assert.Equal(t, lunch.Start, keptLunch.Start)
	assert.Equal(t, lunch.End, keptLunch.End)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Start.Before(items[i-1].End),
			"regenerated day has overlapping items")
	}
}

func TestRegenerateRangeRejectsBadInput(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{testPOI("Museum A", 90, 0)})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)

	_, err = service.RegenerateRange(context.Background(), types.RegenerateRangeRequest{
		PlanID: generated.Plan.ID, Day: 1, FromMinute: 12 * 60, ToMinute: 10 * 60,
	})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = service.RegenerateRange(context.Background(), types.RegenerateRangeRequest{
		PlanID: generated.Plan.ID, Day: 5, FromMinute: 9 * 60, ToMinute: 12 * 60,
	})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestRollbackAppendsCopyOfTarget(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{
		testPOI("Museum A", 90, 0),
		testPOI("Gallery B", 90, 1),
	})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)
	attractions := attractionItems(generated.Version.Days)
	require.NotEmpty(t, attractions)

	removed, err := service.Remove(context.Background(), types.RemoveRequest{
		PlanID: generated.Plan.ID,
		ItemID: attractions[0].ID,
	})
	require.NoError(t, err)

	rolled, err := service.Rollback(context.Background(), types.RollbackRequest{
		PlanID:        generated.Plan.ID,
		TargetVersion: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, rolled.Version.VersionNumber)
	assert.Equal(t, types.ChangeRollback, rolled.Version.ChangeType)
	require.NotNil(t, rolled.Version.ParentVersionID)
	assert.Equal(t, removed.Version.ID, *rolled.Version.ParentVersionID, "rollback parents onto the latest version, not the target")
	assert.Equal(t, generated.Version.Days, rolled.Version.Days)

	// the detour stays in the lineage
	versions, err := service.ListVersions(context.Background(), generated.Plan.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
}

func TestRollbackToCurrentVersionFails(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{testPOI("Museum A", 90, 0)})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)

	_, err = service.Rollback(context.Background(), types.RollbackRequest{
		PlanID:        generated.Plan.ID,
		TargetVersion: generated.Version.VersionNumber,
	})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestConcurrentEditConflicts(t *testing.T) {
	repo := newMemoryRepository()
	service := newTestService(repo, []types.POI{
		testPOI("Museum A", 90, 0),
		testPOI("Gallery B", 90, 1),
	})

	generated, err := service.Generate(context.Background(), morningRequest(1))
	require.NoError(t, err)
	attractions := attractionItems(generated.Version.Days)
	require.Len(t, attractions, 2)

	// first editor wins
	_, err = service.Remove(context.Background(), types.RemoveRequest{
		PlanID: generated.Plan.ID,
		ItemID: attractions[0].ID,
	})
	require.NoError(t, err)

	// the second editor still sees version 1 and loses
	stale := newTestService(&staleRepository{repo}, []types.POI{
		testPOI("Museum A", 90, 0),
	})
	_, err = stale.Remove(context.Background(), types.RemoveRequest{
		PlanID: generated.Plan.ID,
		ItemID: attractions[1].ID,
	})
	assert.ErrorIs(t, err, types.ErrVersionConflict)
}
