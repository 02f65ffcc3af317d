package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo persiste invitaciones. El estado expired nunca se escribe:
// se deriva comparando expires_at con el instante de la consulta.
type InvitationRepo struct {
	q Querier
}

// NewInvitationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvitationRepository(q Querier) *InvitationRepo {
	return &InvitationRepo{q: q}
}

const invitationColumns = `id, company_id, email, target_role, status, token_hash, client_id, created_by,
	created_at, expires_at, accepted_at, accepted_by, cancelled_at, cancelled_by`

// Create persiste una invitación nueva (siempre pending).
func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (id, company_id, email, target_role, status, token_hash, client_id, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.Email, string(inv.TargetRole), string(inv.Status), inv.TokenHash,
		inv.ClientID, inv.CreatedBy, inv.CreatedAt, inv.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert invitation: token duplicado: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// GetByID obtiene una invitación de la empresa.
func (r *InvitationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE company_id = $1 AND id = $2`
	return r.getOne(ctx, "get invitation", query, companyID, id)
}

// GetByTokenHash busca por hash del token (el token plano nunca llega a la DB).
func (r *InvitationRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token_hash = $1`
	return r.getOne(ctx, "get invitation by token", query, tokenHash)
}

// FindPendingByEmail devuelve la invitación pendiente y vigente para el email, si existe.
func (r *InvitationRepo) FindPendingByEmail(ctx context.Context, companyID, email string, now time.Time) (*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE company_id = $1 AND lower(email) = lower($2) AND status = 'pending' AND expires_at >= $3
		ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, "find pending invitation", query, companyID, email, now)
}

// List lista invitaciones de la empresa, más recientes primero.
func (r *InvitationRepo) List(ctx context.Context, companyID string, f repository.InvitationFilter) ([]*entity.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE company_id = $1`
	args := []any{companyID}
	switch f.Status {
	case "":
	case entity.InvitationPending:
		args = append(args, f.Now)
		query += fmt.Sprintf(` AND status = 'pending' AND expires_at >= $%d`, len(args))
	case entity.InvitationExpired:
		args = append(args, f.Now)
		query += fmt.Sprintf(` AND status = 'pending' AND expires_at < $%d`, len(args))
	default:
		args = append(args, string(f.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MarkAccepted pasa la invitación a accepted solo si sigue pending y vigente.
func (r *InvitationRepo) MarkAccepted(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	const query = `
		UPDATE invitations SET status = 'accepted', accepted_at = $3, accepted_by = $2
		WHERE id = $1 AND status = 'pending' AND expires_at >= $3`
	cmd, err := r.q.Exec(ctx, query, id, userID, at)
	if err != nil {
		return false, fmt.Errorf("accept invitation: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkCancelled pasa la invitación a cancelled solo si sigue pending y vigente.
func (r *InvitationRepo) MarkCancelled(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	const query = `
		UPDATE invitations SET status = 'cancelled', cancelled_at = $3, cancelled_by = $2
		WHERE id = $1 AND status = 'pending' AND expires_at >= $3`
	cmd, err := r.q.Exec(ctx, query, id, actorID, at)
	if err != nil {
		return false, fmt.Errorf("cancel invitation: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *InvitationRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

func scanInvitation(row rowScanner) (*entity.Invitation, error) {
	var (
		inv          entity.Invitation
		role, status string
	)
	if err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.Email, &role, &status, &inv.TokenHash, &inv.ClientID, &inv.CreatedBy,
		&inv.CreatedAt, &inv.ExpiresAt, &inv.AcceptedAt, &inv.AcceptedBy, &inv.CancelledAt, &inv.CancelledBy,
	); err != nil {
		return nil, err
	}
	inv.TargetRole = entity.Role(role)
	inv.Status = entity.InvitationStatus(status)
	return &inv, nil
}
