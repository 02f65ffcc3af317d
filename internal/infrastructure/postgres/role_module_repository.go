package postgres

import (
	"context"
	"fmt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

var _ repository.RoleModuleRepository = (*RoleModuleRepo)(nil)

// RoleModuleRepo persiste la matriz rol→módulos (una fila por empresa y rol, ids en text[]).
type RoleModuleRepo struct {
	q Querier
}

// NewRoleModuleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoleModuleRepository(q Querier) *RoleModuleRepo {
	return &RoleModuleRepo{q: q}
}

// ListByCompany devuelve las filas de la matriz de la empresa; vacío = matriz por defecto.
func (r *RoleModuleRepo) ListByCompany(ctx context.Context, companyID string) ([]entity.RoleModuleConfig, error) {
	const query = `
		SELECT company_id, role, module_ids, updated_at
		  FROM role_module_configs
		 WHERE company_id = $1
		 ORDER BY role`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list role modules: %w", err)
	}
	defer rows.Close()

	var list []entity.RoleModuleConfig
	for rows.Next() {
		var (
			c    entity.RoleModuleConfig
			role string
		)
		if err := rows.Scan(&c.CompanyID, &role, &c.ModuleIDs, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role modules: %w", err)
		}
		c.Role = entity.Role(role)
		if c.ModuleIDs == nil {
			c.ModuleIDs = []string{}
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Upsert escribe la fila del rol; un slice vacío se guarda como '{}' (rol sin módulos).
func (r *RoleModuleRepo) Upsert(ctx context.Context, cfg *entity.RoleModuleConfig) error {
	const query = `
		INSERT INTO role_module_configs (company_id, role, module_ids, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, role)
		DO UPDATE SET module_ids = EXCLUDED.module_ids, updated_at = EXCLUDED.updated_at`
	ids := cfg.ModuleIDs
	if ids == nil {
		ids = []string{}
	}
	if _, err := r.q.Exec(ctx, query, cfg.CompanyID, string(cfg.Role), ids, cfg.UpdatedAt); err != nil {
		return fmt.Errorf("upsert role modules: %w", err)
	}
	return nil
}

// DeleteByCompany borra todas las filas: la empresa vuelve a la matriz por defecto.
func (r *RoleModuleRepo) DeleteByCompany(ctx context.Context, companyID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM role_module_configs WHERE company_id = $1`, companyID); err != nil {
		return fmt.Errorf("delete role modules: %w", err)
	}
	return nil
}
