package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the catalog access contract the itinerary core consumes.
// ListPOIs returns the catalog in stable position order; that order is the
// tie-break key for scoring, so it must not change between calls.
type Repository interface {
	ListPOIs(ctx context.Context) ([]types.POI, error)
	GetPOI(ctx context.Context, id uuid.UUID) (*types.POI, error)
	SavePOI(ctx context.Context, poi types.POI) (uuid.UUID, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const poiColumns = `
        id, name, category, target_groups, kids_only, min_kid_age, max_kid_age,
        style, intensity, min_visit_minutes, max_visit_minutes, budget_level,
        crowd_level, priority, premium_experience, ticket_normal, ticket_reduced,
        hours, latitude, longitude, parking, outdoor, tags, position`

func (r *RepositoryImpl) ListPOIs(ctx context.Context) ([]types.POI, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "ListPOIs")
	defer span.End()

	query := `SELECT` + poiColumns + ` FROM pois ORDER BY position ASC`
	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var pois []types.POI
	for rows.Next() {
		poi, err := scanPOI(rows)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate catalog rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Catalog listed")
	return pois, nil
}

func (r *RepositoryImpl) GetPOI(ctx context.Context, id uuid.UUID) (*types.POI, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetPOI")
	defer span.End()

	query := `SELECT` + poiColumns + ` FROM pois WHERE id = $1`
	row := r.pgpool.QueryRow(ctx, query, id)
	poi, err := scanPOI(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("poi %s: %w", id, types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, err
	}
	return &poi, nil
}

func (r *RepositoryImpl) SavePOI(ctx context.Context, poi types.POI) (uuid.UUID, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "SavePOI")
	defer span.End()

	if poi.Name == "" {
		return uuid.Nil, fmt.Errorf("poi name is required: %w", types.ErrValidation)
	}

	hoursJSON, err := json.Marshal(poi.Hours)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal opening hours: %w", err)
	}
	var parkingJSON []byte
	if poi.Parking != nil {
		if parkingJSON, err = json.Marshal(poi.Parking); err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal parking: %w", err)
		}
	}
	groups := make([]string, len(poi.TargetGroups))
	for i, g := range poi.TargetGroups {
		groups[i] = string(g)
	}

	query := `
        INSERT INTO pois (
            name, category, target_groups, kids_only, min_kid_age, max_kid_age,
            style, intensity, min_visit_minutes, max_visit_minutes, budget_level,
            crowd_level, priority, premium_experience, ticket_normal, ticket_reduced,
            hours, latitude, longitude, parking, outdoor, tags, position
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
            $17, $18, $19, $20, $21, $22, $23
        ) RETURNING id
    `
	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query,
		poi.Name, poi.Category, groups, poi.KidsOnly, poi.MinKidAge, poi.MaxKidAge,
		string(poi.Style), string(poi.Intensity), poi.MinVisitMinutes, poi.MaxVisitMinutes,
		poi.BudgetLevel, poi.CrowdLevel, string(poi.Priority), poi.PremiumExperience,
		poi.Tickets.Normal, poi.Tickets.Reduced, hoursJSON, poi.Latitude, poi.Longitude,
		parkingJSON, poi.Outdoor, poi.Tags, poi.Position,
	).Scan(&id); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to insert POI: %w", err)
	}

	r.logger.InfoContext(ctx, "POI saved", slog.String("name", poi.Name), slog.String("id", id.String()))
	return id, nil
}

func scanPOI(row pgx.Row) (types.POI, error) {
	var (
		poi         types.POI
		groups      []string
		style       string
		intensity   string
		priority    string
		hoursJSON   []byte
		parkingJSON []byte
	)
	if err := row.Scan(
		&poi.ID, &poi.Name, &poi.Category, &groups, &poi.KidsOnly, &poi.MinKidAge,
		&poi.MaxKidAge, &style, &intensity, &poi.MinVisitMinutes, &poi.MaxVisitMinutes,
		&poi.BudgetLevel, &poi.CrowdLevel, &priority, &poi.PremiumExperience,
		&poi.Tickets.Normal, &poi.Tickets.Reduced, &hoursJSON, &poi.Latitude,
		&poi.Longitude, &parkingJSON, &poi.Outdoor, &poi.Tags, &poi.Position,
	); err != nil {
		return types.POI{}, err
	}
	for _, g := range groups {
		poi.TargetGroups = append(poi.TargetGroups, types.TargetGroup(g))
	}
	poi.Style = types.TravelStyle(style)
	poi.Intensity = types.Intensity(intensity)
	poi.Priority = types.PriorityLevel(priority)
	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &poi.Hours); err != nil {
			return types.POI{}, fmt.Errorf("failed to unmarshal opening hours: %w", err)
		}
	}
	if len(parkingJSON) > 0 {
		poi.Parking = &types.ParkingInfo{}
		if err := json.Unmarshal(parkingJSON, poi.Parking); err != nil {
			return types.POI{}, fmt.Errorf("failed to unmarshal parking: %w", err)
		}
	}
	return poi, nil
}
