package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the versioned-plan store. Versions are append-only:
// AppendVersion writes version baseVersion+1 and relies on the unique
// (plan_id, version_number) index to reject stale writers, which is what
// serializes concurrent edits on one plan.
type Repository interface {
	CreatePlan(ctx context.Context, plan types.Plan) error
	GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	DeletePlan(ctx context.Context, planID uuid.UUID) error
	LoadLatest(ctx context.Context, planID uuid.UUID) (*types.PlanVersion, error)
	LoadVersion(ctx context.Context, planID uuid.UUID, versionNumber int) (*types.PlanVersion, error)
	ListVersions(ctx context.Context, planID uuid.UUID) ([]types.PlanVersion, error)
	AppendVersion(ctx context.Context, params AppendVersionParams) (*types.PlanVersion, error)
}

// AppendVersionParams carries one new immutable version. BaseVersion is the
// version number the edit was computed against; the new row gets
// BaseVersion+1.
type AppendVersionParams struct {
	PlanID          uuid.UUID
	BaseVersion     int
	ChangeType      types.ChangeType
	ParentVersionID *uuid.UUID
	Days            []types.DayPlan
	ChangeSummary   string
}

// PGXPool is the subset of *pgxpool.Pool the repository touches; tests
// substitute a pgxmock pool.
type PGXPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ PGXPool = (*pgxpool.Pool)(nil)

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewRepository(pgpool PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) CreatePlan(ctx context.Context, plan types.Plan) error {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "CreatePlan", trace.WithAttributes(
		attribute.String("plan.id", plan.ID.String()),
	))
	defer span.End()

	profileJSON, err := json.Marshal(plan.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal plan profile: %w", err)
	}
	metaJSON, err := json.Marshal(plan.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal plan metadata: %w", err)
	}

	query := `
        INSERT INTO plans (id, location, group_type, day_count, budget_level, description, profile, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	if _, err := r.pgpool.Exec(ctx, query,
		plan.ID, plan.Location, string(plan.GroupType), plan.DayCount,
		plan.BudgetLevel, plan.Description, profileJSON, metaJSON,
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "GetPlan")
	defer span.End()

	query := `
        SELECT id, location, group_type, day_count, budget_level, description, profile, metadata, created_at, updated_at
        FROM plans WHERE id = $1
    `
	var (
		plan        types.Plan
		groupType   string
		profileJSON []byte
		metaJSON    []byte
	)
	if err := r.pgpool.QueryRow(ctx, query, planID).Scan(
		&plan.ID, &plan.Location, &groupType, &plan.DayCount, &plan.BudgetLevel,
		&plan.Description, &profileJSON, &metaJSON, &plan.CreatedAt, &plan.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	plan.GroupType = types.TargetGroup(groupType)
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &plan.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan profile: %w", err)
		}
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &plan.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan metadata: %w", err)
		}
	}
	return &plan, nil
}

// DeletePlan removes the plan; versions go with it via ON DELETE CASCADE.
func (r *RepositoryImpl) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "DeletePlan")
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)
	}
	r.logger.InfoContext(ctx, "plan deleted", slog.String("planID", planID.String()))
	return nil
}

const versionColumns = `id, plan_id, version_number, change_type, parent_version_id, snapshot, change_summary, created_at`

func (r *RepositoryImpl) LoadLatest(ctx context.Context, planID uuid.UUID) (*types.PlanVersion, error) {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "LoadLatest")
	defer span.End()

	query := `
        SELECT ` + versionColumns + `
        FROM plan_versions WHERE plan_id = $1
        ORDER BY version_number DESC LIMIT 1
    `
	version, err := scanVersion(r.pgpool.QueryRow(ctx, query, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s has no versions: %w", planID, types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, err
	}
	return version, nil
}

func (r *RepositoryImpl) LoadVersion(ctx context.Context, planID uuid.UUID, versionNumber int) (*types.PlanVersion, error) {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "LoadVersion", trace.WithAttributes(
		attribute.Int("plan.version", versionNumber),
	))
	defer span.End()

	query := `
        SELECT ` + versionColumns + `
        FROM plan_versions WHERE plan_id = $1 AND version_number = $2
    `
	version, err := scanVersion(r.pgpool.QueryRow(ctx, query, planID, versionNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %s version %d: %w", planID, versionNumber, types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, err
	}
	return version, nil
}

func (r *RepositoryImpl) ListVersions(ctx context.Context, planID uuid.UUID) ([]types.PlanVersion, error) {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "ListVersions")
	defer span.End()

	query := `
        SELECT ` + versionColumns + `
        FROM plan_versions WHERE plan_id = $1
        ORDER BY version_number ASC
    `
	rows, err := r.pgpool.Query(ctx, query, planID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []types.PlanVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		versions = append(versions, *version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return versions, nil
}

func (r *RepositoryImpl) AppendVersion(ctx context.Context, params AppendVersionParams) (*types.PlanVersion, error) {
	ctx, span := otel.Tracer("PlanRepository").Start(ctx, "AppendVersion", trace.WithAttributes(
		attribute.String("plan.id", params.PlanID.String()),
		attribute.String("change.type", string(params.ChangeType)),
		attribute.Int("base.version", params.BaseVersion),
	))
	defer span.End()

	snapshot, err := json.Marshal(params.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal day snapshot: %w", err)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO plan_versions (plan_id, version_number, change_type, parent_version_id, snapshot, change_summary)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + versionColumns + `
    `
	version, err := scanVersion(tx.QueryRow(ctx, query,
		params.PlanID, params.BaseVersion+1, string(params.ChangeType),
		params.ParentVersionID, snapshot, params.ChangeSummary,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// a concurrent edit already claimed this version number
			return nil, fmt.Errorf("plan %s base version %d is stale: %w",
				params.PlanID, params.BaseVersion, types.ErrVersionConflict)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to append version: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE plans SET updated_at = now() WHERE id = $1`, params.PlanID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to touch plan: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit version append: %w", err)
	}

	span.SetStatus(codes.Ok, "Version appended")
	r.logger.InfoContext(ctx, "plan version appended",
		slog.String("planID", params.PlanID.String()),
		slog.Int("version", version.VersionNumber),
		slog.String("changeType", string(params.ChangeType)),
	)
	return version, nil
}

func scanVersion(row pgx.Row) (*types.PlanVersion, error) {
	var (
		version    types.PlanVersion
		changeType string
		snapshot   []byte
	)
	if err := row.Scan(
		&version.ID, &version.PlanID, &version.VersionNumber, &changeType,
		&version.ParentVersionID, &snapshot, &version.ChangeSummary, &version.CreatedAt,
	); err != nil {
		return nil, err
	}
	version.ChangeType = types.ChangeType(changeType)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &version.Days); err != nil {
			return nil, fmt.Errorf("failed to unmarshal day snapshot: %w", err)
		}
	}
	return &version, nil
}
