package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/cache"
)

type countingCatalog struct {
	calls int
	mods  []entity.Module
	err   error
}

func (c *countingCatalog) ListModules(_ context.Context, _ string) ([]entity.Module, error) {
	c.calls++
	return c.mods, c.err
}

func TestCatalogCache_SegundaLecturaNoLlegaAlOrigen(t *testing.T) {
	src := &countingCatalog{mods: []entity.Module{{ID: "crm"}}}
	c := cache.NewCatalogCache(src, 10, time.Minute)

	for i := 0; i < 3; i++ {
		mods, err := c.ListModules(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"crm"}, entity.ModuleIDs(mods))
	}
	assert.Equal(t, 1, src.calls)
}

func TestCatalogCache_InvalidateFuerzaRelectura(t *testing.T) {
	src := &countingCatalog{mods: []entity.Module{{ID: "crm"}}}
	c := cache.NewCatalogCache(src, 10, time.Minute)

	_, _ = c.ListModules(context.Background(), "c1")
	c.Invalidate("c1")
	src.mods = []entity.Module{{ID: "crm"}, {ID: "finance"}}

	mods, err := c.ListModules(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, mods, 2)
	assert.Equal(t, 2, src.calls)
}

func TestCatalogCache_NoCacheaErrores(t *testing.T) {
	src := &countingCatalog{err: errors.New("db caída")}
	c := cache.NewCatalogCache(src, 10, time.Minute)

	_, err := c.ListModules(context.Background(), "c1")
	require.Error(t, err)
	_, err = c.ListModules(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCatalogCache_CopiaDefensiva(t *testing.T) {
	src := &countingCatalog{mods: []entity.Module{{ID: "crm"}}}
	c := cache.NewCatalogCache(src, 10, time.Minute)

	mods, _ := c.ListModules(context.Background(), "c1")
	mods[0].ID = "mutado"

	again, _ := c.ListModules(context.Background(), "c1")
	assert.Equal(t, "crm", again[0].ID)
}
