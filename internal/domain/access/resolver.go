package access

import (
	"sort"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// ModuleSet es un conjunto de ids de módulo.
type ModuleSet map[string]struct{}

// NewModuleSet construye un conjunto con los ids dados.
func NewModuleSet(ids ...string) ModuleSet {
	s := make(ModuleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has informa si el id pertenece al conjunto.
func (s ModuleSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted devuelve los ids ordenados (salida estable para respuestas y tests).
func (s ModuleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Baseline calcula los módulos que el rol ve por sí solo, antes de overrides.
// DefaultMatrix (o nil) => todo el catálogo; CustomizedMatrix => la fila del rol (vacía si no existe).
// Ids que ya no están en el catálogo se ignoran.
func Baseline(catalog []entity.Module, state entity.MatrixState, role entity.Role) ModuleSet {
	custom, ok := state.(entity.CustomizedMatrix)
	if !ok {
		return NewModuleSet(entity.ModuleIDs(catalog)...)
	}
	inCatalog := NewModuleSet(entity.ModuleIDs(catalog)...)
	out := make(ModuleSet)
	for _, id := range custom.Roles[role] {
		if inCatalog.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// OverrideIndex indexa los overrides de un usuario por módulo.
func OverrideIndex(overrides []entity.ModuleOverride) map[string]entity.OverrideType {
	idx := make(map[string]entity.OverrideType, len(overrides))
	for _, o := range overrides {
		idx[o.ModuleID] = o.OverrideType
	}
	return idx
}

// Enabled aplica un override (si existe) sobre la base del rol para un módulo.
func Enabled(moduleID string, baseline ModuleSet, idx map[string]entity.OverrideType) bool {
	switch idx[moduleID] {
	case entity.OverrideGrant:
		return true
	case entity.OverrideRevoke:
		return false
	default:
		return baseline.Has(moduleID)
	}
}

// Resolve devuelve los módulos visibles para un usuario con el rol dado.
// Solo pueden aparecer módulos del catálogo vigente.
func Resolve(catalog []entity.Module, state entity.MatrixState, role entity.Role, overrides []entity.ModuleOverride) ModuleSet {
	baseline := Baseline(catalog, state, role)
	idx := OverrideIndex(overrides)
	out := make(ModuleSet, len(catalog))
	for _, m := range catalog {
		if Enabled(m.ID, baseline, idx) {
			out[m.ID] = struct{}{}
		}
	}
	return out
}

// StateOf deriva el estado que el editor muestra para un módulo.
func StateOf(moduleID string, idx map[string]entity.OverrideType) entity.OverrideState {
	switch idx[moduleID] {
	case entity.OverrideGrant:
		return entity.OverrideGranted
	case entity.OverrideRevoke:
		return entity.OverrideRevoked
	default:
		return entity.OverrideInherited
	}
}

// ToggleOp es la escritura que corresponde a un cambio de visibilidad en el editor.
type ToggleOp string

const (
	ToggleNoop        ToggleOp = "noop"
	ToggleWriteGrant  ToggleOp = "grant"
	ToggleWriteRevoke ToggleOp = "revoke"
	ToggleDelete      ToggleOp = "delete"
)

// Toggle decide qué escribir en el store de overrides para dejar el módulo en enable.
// Nunca produce un override redundante: si la base del rol ya da el resultado buscado,
// se borra el override en lugar de escribir uno nuevo.
func Toggle(baseline ModuleSet, idx map[string]entity.OverrideType, moduleID string, enable bool) ToggleOp {
	if Enabled(moduleID, baseline, idx) == enable {
		return ToggleNoop
	}
	fromRole := baseline.Has(moduleID)
	if enable {
		if fromRole {
			return ToggleDelete
		}
		return ToggleWriteGrant
	}
	if fromRole {
		return ToggleWriteRevoke
	}
	return ToggleDelete
}

// IsRedundant informa si un override coincide con la base del rol (no cambia el resultado).
func IsRedundant(o entity.ModuleOverride, baseline ModuleSet) bool {
	switch o.OverrideType {
	case entity.OverrideGrant:
		return baseline.Has(o.ModuleID)
	case entity.OverrideRevoke:
		return !baseline.Has(o.ModuleID)
	}
	return true
}

// Prune descarta overrides redundantes respecto de la base. Si un módulo aparece repetido,
// gana la última entrada.
func Prune(overrides []entity.ModuleOverride, baseline ModuleSet) []entity.ModuleOverride {
	last := make(map[string]int, len(overrides))
	for i, o := range overrides {
		last[o.ModuleID] = i
	}
	out := make([]entity.ModuleOverride, 0, len(overrides))
	for i, o := range overrides {
		if last[o.ModuleID] != i || IsRedundant(o, baseline) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Orphans devuelve los ids que no pertenecen al catálogo (lápidas tras un cambio de catálogo).
func Orphans(catalog []entity.Module, ids []string) []string {
	inCatalog := NewModuleSet(entity.ModuleIDs(catalog)...)
	var out []string
	for _, id := range ids {
		if !inCatalog.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
