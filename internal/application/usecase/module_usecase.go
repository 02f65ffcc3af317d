package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
)

// ModuleResolver calcula los módulos visibles de un usuario (implementado por application/access.UseCase).
type ModuleResolver interface {
	Resolve(ctx context.Context, companyID, userID string) (access.ModuleSet, error)
}

// ModuleService responde si un usuario ve un módulo.
// Es el único punto que consultan las superficies consumidoras (middleware RequireModule, /api/me).
type ModuleService struct {
	resolver ModuleResolver
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(resolver ModuleResolver) *ModuleService {
	return &ModuleService{resolver: resolver}
}

// HasModule informa si el usuario tiene el módulo visible.
// Devuelve false (sin error) si no lo ve o si el usuario no existe en la empresa.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasModule(ctx context.Context, companyID, userID, moduleID string) (bool, error) {
	if companyID == "" || userID == "" || moduleID == "" {
		return false, fmt.Errorf("module: companyID, userID y moduleID son obligatorios")
	}
	set, err := s.resolver.Resolve(ctx, companyID, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return set.Has(moduleID), nil
}

// Modules devuelve los ids visibles del usuario, ordenados.
func (s *ModuleService) Modules(ctx context.Context, companyID, userID string) ([]string, error) {
	set, err := s.resolver.Resolve(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}
