package postgres

import (
	"context"
	"fmt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// GetByID obtiene un cliente de la empresa por ID.
func (r *ClientRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Client, error) {
	query := `
		SELECT id, company_id, name, tax_id, email, portal_enabled, created_at, updated_at
		FROM clients WHERE company_id = $1 AND id = $2`
	var c entity.Client
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Email, &c.PortalEnabled, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}
