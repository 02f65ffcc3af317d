package repository

import (
	"context"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// ClientRepository define el puerto de lectura de clientes (CRM) necesario para invitaciones al portal.
type ClientRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Client, error)
}
