package postgres

import (
	"context"
	"fmt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

// Asegura que CompanyRepo implementa los puertos de empresa y catálogo.
var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.ModuleCatalog     = (*CompanyRepo)(nil)
)

// CompanyRepo implementación de CompanyRepository y ModuleCatalog sobre PostgreSQL.
type CompanyRepo struct {
	db Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(db Querier) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM companies WHERE id = $1`
	var c entity.Company
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// ListModules devuelve el catálogo de la empresa: módulos contratados, activos y sin vencer.
// El orden es categoría y nombre con collation española (acentos y ñ ordenan como en la UI).
func (r *CompanyRepo) ListModules(ctx context.Context, companyID string) ([]entity.Module, error) {
	const query = `
		SELECT m.id, m.name, m.category, m.is_core
		  FROM company_modules cm
		  JOIN modules m ON m.id = cm.module_id
		 WHERE cm.company_id = $1
		   AND cm.is_active  = true
		   AND (cm.expires_at IS NULL OR cm.expires_at > now())
		 ORDER BY m.sort_order, m.id`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var list []entity.Module
	for rows.Next() {
		var m entity.Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.IsCore); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	access.SortCatalog(list)
	return list, nil
}
