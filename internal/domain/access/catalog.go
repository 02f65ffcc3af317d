package access

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// SortCatalog ordena un catálogo por categoría y nombre con collation española
// (acentos y ñ ordenan como en la UI). Empates se resuelven por id.
func SortCatalog(list []entity.Module) {
	c := collate.New(language.Spanish, collate.IgnoreCase)
	slices.SortStableFunc(list, func(a, b entity.Module) int {
		if d := c.CompareString(a.Category, b.Category); d != 0 {
			return d
		}
		if d := c.CompareString(a.Name, b.Name); d != 0 {
			return d
		}
		return c.CompareString(a.ID, b.ID)
	})
}

// CatalogIndex indexa un catálogo por id.
func CatalogIndex(catalog []entity.Module) map[string]entity.Module {
	idx := make(map[string]entity.Module, len(catalog))
	for _, m := range catalog {
		idx[m.ID] = m
	}
	return idx
}
