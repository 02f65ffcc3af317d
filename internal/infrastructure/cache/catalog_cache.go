// Package cache decora el catálogo de módulos con un LRU con TTL.
// Cada instancia tiene su propio caché; el TTL acota cuánto tarda en verse un cambio de contratación.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

var (
	catalogHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_catalog_cache_hits_total",
		Help: "Aciertos del caché de catálogo de módulos.",
	})
	catalogMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ma_catalog_cache_misses_total",
		Help: "Fallos del caché de catálogo de módulos.",
	})
)

var _ repository.ModuleCatalog = (*CatalogCache)(nil)

// CatalogCache implementa ModuleCatalog delante de otro ModuleCatalog.
type CatalogCache struct {
	next  repository.ModuleCatalog
	cache *expirable.LRU[string, []entity.Module]
}

// NewCatalogCache crea el decorador. size es la cantidad máxima de empresas cacheadas.
func NewCatalogCache(next repository.ModuleCatalog, size int, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		next:  next,
		cache: expirable.NewLRU[string, []entity.Module](size, nil, ttl),
	}
}

// ListModules devuelve el catálogo de la empresa desde el caché o, en un fallo, desde next.
// Los errores no se cachean.
func (c *CatalogCache) ListModules(ctx context.Context, companyID string) ([]entity.Module, error) {
	if mods, ok := c.cache.Get(companyID); ok {
		catalogHitsTotal.Inc()
		return clone(mods), nil
	}
	catalogMissesTotal.Inc()

	mods, err := c.next.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(companyID, clone(mods))
	return mods, nil
}

// Invalidate descarta el catálogo cacheado de la empresa.
func (c *CatalogCache) Invalidate(companyID string) {
	c.cache.Remove(companyID)
}

func clone(mods []entity.Module) []entity.Module {
	return append([]entity.Module(nil), mods...)
}
