package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/invitation"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

// Ensure TxRunner implements access.TxRunner and invitation.TxRunner.
var _ access.TxRunner = (*TxRunner)(nil)
var _ invitation.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunAccess inicia una transacción con los repos de matriz y overrides (reemplazos y limpiezas atómicas).
func (r *TxRunner) RunAccess(ctx context.Context, fn func(
	roleRepo repository.RoleModuleRepository,
	overrideRepo repository.OverrideRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRoleModuleRepository(tx), NewOverrideRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInvitation inicia una transacción con los repos de invitaciones y usuarios (aceptación).
func (r *TxRunner) RunInvitation(ctx context.Context, fn func(
	invRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInvitationRepository(tx), NewUserRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
