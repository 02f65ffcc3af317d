package postgres

import (
	"context"
	"fmt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

var _ repository.OverrideRepository = (*OverrideRepo)(nil)

// OverrideRepo persiste los overrides grant/revoke por usuario.
type OverrideRepo struct {
	q Querier
}

// NewOverrideRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOverrideRepository(q Querier) *OverrideRepo {
	return &OverrideRepo{q: q}
}

// ListByUser devuelve los overrides de un usuario ordenados por módulo.
func (r *OverrideRepo) ListByUser(ctx context.Context, companyID, userID string) ([]entity.ModuleOverride, error) {
	const query = `
		SELECT company_id, user_id, module_id, override_type, COALESCE(created_by::text, ''), created_at
		  FROM user_module_overrides
		 WHERE company_id = $1 AND user_id = $2
		 ORDER BY module_id`
	return r.list(ctx, query, companyID, userID)
}

// ListByCompany devuelve los overrides de toda la empresa ordenados por usuario y módulo.
func (r *OverrideRepo) ListByCompany(ctx context.Context, companyID string) ([]entity.ModuleOverride, error) {
	const query = `
		SELECT company_id, user_id, module_id, override_type, COALESCE(created_by::text, ''), created_at
		  FROM user_module_overrides
		 WHERE company_id = $1
		 ORDER BY user_id, module_id`
	return r.list(ctx, query, companyID)
}

func (r *OverrideRepo) list(ctx context.Context, query string, args ...any) ([]entity.ModuleOverride, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var list []entity.ModuleOverride
	for rows.Next() {
		var (
			o  entity.ModuleOverride
			ot string
		)
		if err := rows.Scan(&o.CompanyID, &o.UserID, &o.ModuleID, &ot, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.OverrideType = entity.OverrideType(ot)
		list = append(list, o)
	}
	return list, rows.Err()
}

// Upsert escribe (o reemplaza) el override de un módulo.
func (r *OverrideRepo) Upsert(ctx context.Context, o *entity.ModuleOverride) error {
	const query = `
		INSERT INTO user_module_overrides (company_id, user_id, module_id, override_type, created_by, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)
		ON CONFLICT (company_id, user_id, module_id)
		DO UPDATE SET override_type = EXCLUDED.override_type,
		              created_by    = EXCLUDED.created_by,
		              created_at    = EXCLUDED.created_at`
	_, err := r.q.Exec(ctx, query, o.CompanyID, o.UserID, o.ModuleID, string(o.OverrideType), o.CreatedBy, o.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("upsert override: usuario inexistente: %w", err)
		}
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

// Delete borra el override de un módulo (no-op si no existe).
func (r *OverrideRepo) Delete(ctx context.Context, companyID, userID, moduleID string) error {
	const query = `DELETE FROM user_module_overrides WHERE company_id = $1 AND user_id = $2 AND module_id = $3`
	if _, err := r.q.Exec(ctx, query, companyID, userID, moduleID); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

// DeleteByUser borra todos los overrides del usuario.
func (r *OverrideRepo) DeleteByUser(ctx context.Context, companyID, userID string) error {
	const query = `DELETE FROM user_module_overrides WHERE company_id = $1 AND user_id = $2`
	if _, err := r.q.Exec(ctx, query, companyID, userID); err != nil {
		return fmt.Errorf("delete overrides by user: %w", err)
	}
	return nil
}

// DistinctModules devuelve los módulos referenciados por overrides de la empresa.
func (r *OverrideRepo) DistinctModules(ctx context.Context, companyID string) ([]string, error) {
	const query = `SELECT DISTINCT module_id FROM user_module_overrides WHERE company_id = $1 ORDER BY module_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("distinct override modules: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan module id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteModules borra los overrides de la empresa sobre los módulos dados.
func (r *OverrideRepo) DeleteModules(ctx context.Context, companyID string, moduleIDs []string) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM user_module_overrides WHERE company_id = $1 AND module_id = ANY($2)`
	cmd, err := r.q.Exec(ctx, query, companyID, moduleIDs)
	if err != nil {
		return 0, fmt.Errorf("delete overrides by module: %w", err)
	}
	return cmd.RowsAffected(), nil
}
