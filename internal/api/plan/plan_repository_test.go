package plan

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	repo := NewRepository(mockPool, slog.New(slog.DiscardHandler))
	return repo, mockPool
}

func versionRows(planID uuid.UUID, number int, changeType string, parentID *uuid.UUID) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "plan_id", "version_number", "change_type",
		"parent_version_id", "snapshot", "change_summary", "created_at",
	}).AddRow(uuid.New(), planID, number, changeType, parentID, []byte(`[]`), "summary", time.Now())
}

func TestAppendVersionInsertsNextNumber(t *testing.T) {
	repo, mockPool := setupRepositoryTest(t)
	planID := uuid.New()
	parentID := uuid.New()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery("INSERT INTO plan_versions").
		WithArgs(planID, 4, "REMOVE", &parentID, pgxmock.AnyArg(), "removed an item").
		WillReturnRows(versionRows(planID, 4, "REMOVE", &parentID))
	mockPool.ExpectExec("UPDATE plans SET updated_at").
		WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()

	version, err := repo.AppendVersion(context.Background(), AppendVersionParams{
		PlanID:          planID,
		BaseVersion:     3,
		ChangeType:      types.ChangeRemove,
		ParentVersionID: &parentID,
		Days:            []types.DayPlan{},
		ChangeSummary:   "removed an item",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, version.VersionNumber)
	assert.Equal(t, types.ChangeRemove, version.ChangeType)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestAppendVersionMapsUniqueViolationToConflict(t *testing.T) {
	repo, mockPool := setupRepositoryTest(t)
	planID := uuid.New()
	parentID := uuid.New()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery("INSERT INTO plan_versions").
		WithArgs(planID, 4, "REPLACE", &parentID, pgxmock.AnyArg(), "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "plan_versions_plan_id_version_number_key"})
	mockPool.ExpectRollback()

	_, err := repo.AppendVersion(context.Background(), AppendVersionParams{
		PlanID:          planID,
		BaseVersion:     3,
		ChangeType:      types.ChangeReplace,
		ParentVersionID: &parentID,
	})
	assert.ErrorIs(t, err, types.ErrVersionConflict)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestLoadLatestNoVersions(t *testing.T) {
	repo, mockPool := setupRepositoryTest(t)
	planID := uuid.New()

	mockPool.ExpectQuery("FROM plan_versions").
		WithArgs(planID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.LoadLatest(context.Background(), planID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestLoadVersionNotFound(t *testing.T) {
	repo, mockPool := setupRepositoryTest(t)
	planID := uuid.New()

	mockPool.ExpectQuery("FROM plan_versions").
		WithArgs(planID, 7).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.LoadVersion(context.Background(), planID, 7)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListVersionsKeepsOrder(t *testing.T) {
	repo, mockPool := setupRepositoryTest(t)
	planID := uuid.New()

	rows := pgxmock.NewRows([]string{
		"id", "plan_id", "version_number", "change_type",
		"parent_version_id", "snapshot", "change_summary", "created_at",
	}).
		AddRow(uuid.New(), planID, 1, "GENERATE", (*uuid.UUID)(nil), []byte(`[]`), "generated", time.Now()).
		AddRow(uuid.New(), planID, 2, "REMOVE", &planID, []byte(`[]`), "removed", time.Now())

	mockPool.ExpectQuery("FROM plan_versions").
		WithArgs(planID).
		WillReturnRows(rows)

	versions, err := repo.ListVersions(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, types.ChangeGenerate, versions[0].ChangeType)
	assert.Equal(t, 2, versions[1].VersionNumber)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestDeletePlanNotFound(t *testing.T) {
	repo, mockPool := setupRepositoryTest(t)
	planID := uuid.New()

	mockPool.ExpectExec("DELETE FROM plans").
		WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeletePlan(context.Background(), planID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
