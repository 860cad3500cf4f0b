package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*CachedRepository)(nil)

const (
	catalogCacheKey        = "catalog:list"
	defaultCatalogCacheTTL = 5 * time.Minute
)

// CachedRepository is a read-through cache in front of the catalog
// repository. The catalog is small and read on every build, so the whole
// ordered list is cached as one entry.
type CachedRepository struct {
	inner  Repository
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewCachedRepository(inner Repository, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = defaultCatalogCacheTTL
	}
	return &CachedRepository{
		inner:  inner,
		cache:  gocache.New(ttl, 10*time.Minute),
		logger: logger,
	}
}

func (c *CachedRepository) ListPOIs(ctx context.Context) ([]types.POI, error) {
	if cached, ok := c.cache.Get(catalogCacheKey); ok {
		return cached.([]types.POI), nil
	}
	pois, err := c.inner.ListPOIs(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(catalogCacheKey, pois, gocache.DefaultExpiration)
	c.logger.DebugContext(ctx, "catalog cache refreshed", slog.Int("pois", len(pois)))
	return pois, nil
}

func (c *CachedRepository) GetPOI(ctx context.Context, id uuid.UUID) (*types.POI, error) {
	if cached, ok := c.cache.Get(catalogCacheKey); ok {
		for _, poi := range cached.([]types.POI) {
			if poi.ID == id {
				p := poi
				return &p, nil
			}
		}
	}
	return c.inner.GetPOI(ctx, id)
}

func (c *CachedRepository) SavePOI(ctx context.Context, poi types.POI) (uuid.UUID, error) {
	id, err := c.inner.SavePOI(ctx, poi)
	if err == nil {
		c.cache.Delete(catalogCacheKey)
	}
	return id, err
}
