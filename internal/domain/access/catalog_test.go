package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

func TestSortCatalog_CollationEspanola(t *testing.T) {
	list := []entity.Module{
		{ID: "z", Name: "Órdenes", Category: "operaciones"},
		{ID: "b", Name: "Ñandú", Category: "operaciones"},
		{ID: "a", Name: "Nómina", Category: "operaciones"},
		{ID: "c", Name: "CRM", Category: "comercial"},
	}
	access.SortCatalog(list)

	got := make([]string, 0, len(list))
	for _, m := range list {
		got = append(got, m.Name)
	}
	assert.Equal(t, []string{"CRM", "Nómina", "Ñandú", "Órdenes"}, got)
}

func TestCatalogIndex(t *testing.T) {
	idx := access.CatalogIndex(testCatalog())
	assert.Len(t, idx, 4)
	assert.Equal(t, "Finanzas", idx["finance"].Name)
}
