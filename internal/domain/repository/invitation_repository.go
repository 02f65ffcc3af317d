package repository

import (
	"context"
	"time"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// InvitationFilter filtra listados de invitaciones. Status vacío = todas.
// El filtro por expired se resuelve comparando expires_at con Now.
type InvitationFilter struct {
	Status entity.InvitationStatus
	Now    time.Time
	Limit  int
	Offset int
}

// InvitationRepository define el puerto de persistencia para invitaciones.
// Los Get*/Find* devuelven (nil, nil) cuando no hay fila.
type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Invitation, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Invitation, error)
	FindPendingByEmail(ctx context.Context, companyID, email string, now time.Time) (*entity.Invitation, error)
	List(ctx context.Context, companyID string, f InvitationFilter) ([]*entity.Invitation, error)
	// MarkAccepted pasa a accepted solo si sigue pending; false si otro request ganó la carrera.
	MarkAccepted(ctx context.Context, id, userID string, at time.Time) (bool, error)
	// MarkCancelled pasa a cancelled solo si sigue pending.
	MarkCancelled(ctx context.Context, id, actorID string, at time.Time) (bool, error)
}
