package entity

import (
	"regexp"
	"time"
)

// Company representa una organización/tenant del sistema.
type Company struct {
	ID        string
	Name      string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Module es una entrada del catálogo de módulos funcionales de una empresa (CRM, gastos, expedientes...).
// IsCore es informativo para la UI; el resolver no lo trata de forma especial.
type Module struct {
	ID       string
	Name     string
	Category string
	IsCore   bool
}

// ModuleIDs devuelve los ids de un catálogo conservando el orden.
func ModuleIDs(catalog []Module) []string {
	ids := make([]string, 0, len(catalog))
	for _, m := range catalog {
		ids = append(ids, m.ID)
	}
	return ids
}

var moduleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidModuleID informa si el id tiene el formato de catálogo (minúsculas, dígitos, '-' y '_').
func ValidModuleID(id string) bool {
	return moduleIDPattern.MatchString(id)
}
