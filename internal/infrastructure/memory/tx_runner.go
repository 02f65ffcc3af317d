package memory

import (
	"context"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

// TxRunner emula transacciones sobre el Store. Los callbacks se serializan y escriben
// sobre una copia del dataset; la copia reemplaza al dataset vigente solo si fn no devuelve error.
// Los lectores ven el estado anterior completo hasta el reemplazo.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunAccess ejecuta fn con los repos de matriz y overrides.
func (r *TxRunner) RunAccess(ctx context.Context, fn func(
	roleRepo repository.RoleModuleRepository,
	overrideRepo repository.OverrideRepository,
) error) error {
	return r.run(func(h handle) error { return fn(&RoleModuleRepo{h}, &OverrideRepo{h}) })
}

// RunInvitation ejecuta fn con los repos de invitaciones y usuarios.
func (r *TxRunner) RunInvitation(ctx context.Context, fn func(
	invRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
) error) error {
	return r.run(func(h handle) error { return fn(&InvitationRepo{h}, &UserRepo{h}) })
}

// run no admite escrituras con los repos del Store dentro de fn: esperarían a txMu.
func (r *TxRunner) run(fn func(h handle) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.RLock()
	work := r.s.data.clone()
	r.s.mu.RUnlock()

	if err := fn(handle{s: r.s, tx: work}); err != nil {
		return err
	}
	r.s.mu.Lock()
	r.s.data = work
	r.s.mu.Unlock()
	return nil
}
