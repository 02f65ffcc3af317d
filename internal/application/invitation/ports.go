package invitation

import (
	"context"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

// TxRunner ejecuta la aceptación (marcar accepted + alta del usuario) en una sola transacción.
type TxRunner interface {
	RunInvitation(ctx context.Context, fn func(
		invRepo repository.InvitationRepository,
		userRepo repository.UserRepository,
	) error) error
}
