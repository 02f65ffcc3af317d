package repository

import (
	"context"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// CompanyRepository define el puerto de lectura de empresas.
// La implementación vive en infrastructure.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// ModuleCatalog es el catálogo de módulos contratados por una empresa (activos y sin vencer).
// Es de solo lectura para este servicio: lo administra el alta comercial de la empresa.
type ModuleCatalog interface {
	ListModules(ctx context.Context, companyID string) ([]entity.Module, error)
}
