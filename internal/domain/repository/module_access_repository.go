package repository

import (
	"context"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// RoleModuleRepository persiste la matriz rol→módulos por empresa.
// Ninguna fila para la empresa significa matriz por defecto.
type RoleModuleRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]entity.RoleModuleConfig, error)
	Upsert(ctx context.Context, cfg *entity.RoleModuleConfig) error
	DeleteByCompany(ctx context.Context, companyID string) error
}

// OverrideRepository persiste los overrides por usuario.
type OverrideRepository interface {
	ListByUser(ctx context.Context, companyID, userID string) ([]entity.ModuleOverride, error)
	// ListByCompany devuelve los overrides de todos los usuarios de la empresa.
	ListByCompany(ctx context.Context, companyID string) ([]entity.ModuleOverride, error)
	Upsert(ctx context.Context, o *entity.ModuleOverride) error
	Delete(ctx context.Context, companyID, userID, moduleID string) error
	DeleteByUser(ctx context.Context, companyID, userID string) error
	// DistinctModules devuelve los ids de módulo referenciados por algún override de la empresa.
	DistinctModules(ctx context.Context, companyID string) ([]string, error)
	// DeleteModules borra los overrides de la empresa que apuntan a los módulos dados; devuelve filas borradas.
	DeleteModules(ctx context.Context, companyID string, moduleIDs []string) (int64, error)
}
