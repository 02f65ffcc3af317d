package access

import (
	"context"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el reemplazo de la matriz y de los overrides de un usuario sea atómico.
type TxRunner interface {
	RunAccess(ctx context.Context, fn func(
		roleRepo repository.RoleModuleRepository,
		overrideRepo repository.OverrideRepository,
	) error) error
}
