package invitation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // límite de bcrypt
	maxBulkCancel  = 100
)

// Config parámetros del ciclo de vida.
type Config struct {
	TTL       time.Duration
	AcceptURL string
}

// UseCase casos de uso de invitaciones: alta, cancelación (simple y masiva), aceptación, listado y preview.
type UseCase struct {
	invitations repository.InvitationRepository
	users       repository.UserRepository
	companies   repository.CompanyRepository
	clients     repository.ClientRepository
	tx          TxRunner
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	invitations repository.InvitationRepository,
	users repository.UserRepository,
	companies repository.CompanyRepository,
	clients repository.ClientRepository,
	tx TxRunner,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		invitations: invitations,
		users:       users,
		companies:   companies,
		clients:     clients,
		tx:          tx,
		cfg:         cfg,
		log:         log.Component("invitations"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests de vencimiento).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create da de alta una invitación pendiente. El rol debe estar dentro de la jerarquía del actor:
// invitaciones de equipo para roles no portal, de cliente solo para el rol portal con un cliente habilitado.
// Devuelve el token plano una única vez.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, companyID string, in dto.CreateInvitationRequest) (*dto.CreateInvitationResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, ok := entity.ParseRole(in.TargetRole)
	if !ok {
		return nil, domain.NewValidationError("target_role", "rol desconocido")
	}

	var clientID *string
	if role.IsPortal() {
		if !containsRole(access.ClientInvitableRoles(actor.Role), role) {
			return nil, uc.reject(actor, companyID, role, domain.ErrRoleNotAssignable)
		}
		if in.ClientID == nil || strings.TrimSpace(*in.ClientID) == "" {
			return nil, domain.NewValidationError("client_id", "obligatorio para invitaciones al portal")
		}
		client, err := uc.clients.GetByID(ctx, companyID, strings.TrimSpace(*in.ClientID))
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.NewValidationError("client_id", "cliente inexistente")
		}
		if !client.PortalEnabled {
			return nil, domain.NewValidationError("client_id", "el cliente no tiene el portal habilitado")
		}
		clientID = &client.ID
	} else {
		if !containsRole(access.TeamInvitableRoles(actor.Role), role) {
			return nil, uc.reject(actor, companyID, role, domain.ErrRoleNotAssignable)
		}
		if in.ClientID != nil && *in.ClientID != "" {
			return nil, domain.NewValidationError("client_id", "solo aplica a invitaciones al portal")
		}
	}

	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}
	member, err := uc.users.GetByEmailAndCompany(ctx, email, companyID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	now := uc.now()
	pending, err := uc.invitations.FindPendingByEmail(ctx, companyID, email, now)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, domain.NewStateConflict("invitation", string(entity.InvitationPending))
	}

	token, hash, err := newToken()
	if err != nil {
		return nil, err
	}
	inv := &entity.Invitation{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		Email:      email,
		TargetRole: role,
		Status:     entity.InvitationPending,
		TokenHash:  hash,
		ClientID:   clientID,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(uc.cfg.TTL),
	}
	if err := uc.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	invitationEventsTotal.WithLabelValues("created").Inc()
	uc.log.Info().Str("company_id", companyID).Str("invitation_id", inv.ID).Str("actor_id", actor.UserID).
		Str("target_role", string(role)).Bool("client", clientID != nil).Msg("invitación creada")

	return &dto.CreateInvitationResponse{
		Invitation: toInvitationResponse(inv, now),
		Token:      token,
		AcceptURL:  acceptURL(uc.cfg.AcceptURL, token),
	}, nil
}

// Cancel cancela una invitación pendiente y vigente. En cualquier otro estado devuelve
// un StateConflictError con el estado actual.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, companyID, id string) (*dto.InvitationResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	inv, err := uc.invitations.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvitationNotFound
	}
	if !access.CanManage(actor.Role, inv.TargetRole) {
		return nil, domain.ErrForbidden
	}
	now := uc.now()
	if st := inv.EffectiveStatus(now); st != entity.InvitationPending {
		return nil, domain.NewStateConflict("invitation", string(st))
	}
	ok, err := uc.invitations.MarkCancelled(ctx, inv.ID, actor.UserID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, uc.currentStateConflict(ctx, uc.invitations, companyID, inv.ID, now)
	}

	inv.Status = entity.InvitationCancelled
	inv.CancelledAt = &now
	inv.CancelledBy = &actor.UserID
	invitationEventsTotal.WithLabelValues("cancelled").Inc()
	uc.log.Info().Str("company_id", companyID).Str("invitation_id", inv.ID).Str("actor_id", actor.UserID).Msg("invitación cancelada")
	resp := toInvitationResponse(inv, now)
	return &resp, nil
}

// BulkCancel cancela cada id de forma independiente y reporta el resultado por id.
// Un fallo en un id no afecta a los demás.
func (uc *UseCase) BulkCancel(ctx context.Context, actor entity.Actor, companyID string, ids []string) (*dto.BulkCancelResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "al menos un id")
	}
	if len(ids) > maxBulkCancel {
		return nil, domain.NewValidationError("ids", fmt.Sprintf("máximo %d ids por solicitud", maxBulkCancel))
	}

	out := &dto.BulkCancelResponse{Results: make([]dto.BulkCancelItem, 0, len(ids))}
	for _, id := range ids {
		item := dto.BulkCancelItem{ID: id, OK: true}
		if _, err := uc.Cancel(ctx, actor, companyID, id); err != nil {
			item = failureItem(id, err)
			if item.Code == "INTERNAL" {
				uc.log.Error().Err(err).Str("company_id", companyID).Str("invitation_id", id).Msg("cancelación masiva: error")
			}
		}
		if item.OK {
			out.Succeeded++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, item)
	}
	return out, nil
}

// Accept canjea el token: valida estado y vigencia, marca la invitación como aceptada y da de alta
// al usuario con el rol (y cliente) de la invitación, todo en una transacción. El token es de un solo uso.
func (uc *UseCase) Accept(ctx context.Context, in dto.AcceptInvitationRequest) (*dto.UserResponse, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, domain.NewValidationError("token", "obligatorio")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 200 {
		return nil, domain.NewValidationError("name", "obligatorio, hasta 200 caracteres")
	}
	if len(in.Password) < minPasswordLen || len(in.Password) > maxPasswordLen {
		return nil, domain.NewValidationError("password", fmt.Sprintf("entre %d y %d caracteres", minPasswordLen, maxPasswordLen))
	}

	inv, err := uc.invitations.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvitationNotFound
	}
	now := uc.now()
	if st := inv.EffectiveStatus(now); st != entity.InvitationPending {
		invitationEventsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.NewStateConflict("invitation", string(st))
	}
	if inv.ClientID != nil {
		client, err := uc.clients.GetByID(ctx, inv.CompanyID, *inv.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil || !client.PortalEnabled {
			return nil, domain.NewValidationError("client_id", "el cliente ya no tiene el portal habilitado")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    inv.CompanyID,
		Email:        inv.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         inv.TargetRole,
		Status:       entity.UserStatusActive,
		ClientID:     inv.ClientID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.RunInvitation(ctx, func(invRepo repository.InvitationRepository, userRepo repository.UserRepository) error {
		member, err := userRepo.GetByEmailAndCompany(ctx, inv.Email, inv.CompanyID)
		if err != nil {
			return err
		}
		if member != nil {
			return domain.ErrEmailAlreadyExists
		}
		ok, err := invRepo.MarkAccepted(ctx, inv.ID, user.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return uc.currentStateConflict(ctx, invRepo, inv.CompanyID, inv.ID, now)
		}
		return userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	invitationEventsTotal.WithLabelValues("accepted").Inc()
	uc.log.Info().Str("company_id", inv.CompanyID).Str("invitation_id", inv.ID).Str("user_id", user.ID).
		Str("role", string(user.Role)).Msg("invitación aceptada")
	return toUserResponse(user), nil
}

// List lista invitaciones de la empresa con su estado efectivo. status vacío = todas.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, companyID, status string, page dto.PageRequest) (*dto.InvitationListResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	if len(access.AssignableRoles(actor.Role)) == 0 {
		return nil, domain.ErrForbidden
	}
	st := entity.InvitationStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	page.DefaultPage()
	now := uc.now()

	list, err := uc.invitations.List(ctx, companyID, repository.InvitationFilter{Status: st, Now: now, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	out := &dto.InvitationListResponse{Items: make([]dto.InvitationResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, inv := range list {
		out.Items = append(out.Items, toInvitationResponse(inv, now))
	}
	return out, nil
}

// Preview devuelve los datos públicos de la invitación asociada al token (pantalla de aceptación).
func (uc *UseCase) Preview(ctx context.Context, token string) (*dto.InvitationPreviewResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewValidationError("token", "obligatorio")
	}
	inv, err := uc.invitations.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvitationNotFound
	}
	return &dto.InvitationPreviewResponse{
		Email:      inv.Email,
		TargetRole: string(inv.TargetRole),
		CompanyID:  inv.CompanyID,
		Status:     string(inv.EffectiveStatus(uc.now())),
		ExpiresAt:  inv.ExpiresAt,
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func (uc *UseCase) reject(actor entity.Actor, companyID string, role entity.Role, err error) error {
	invitationEventsTotal.WithLabelValues("rejected").Inc()
	uc.log.Warn().Str("company_id", companyID).Str("actor_id", actor.UserID).Str("actor_role", string(actor.Role)).
		Str("target_role", string(role)).Msg("invitación rechazada por jerarquía")
	return err
}

// currentStateConflict relee la invitación tras perder una actualización condicional.
func (uc *UseCase) currentStateConflict(ctx context.Context, repo repository.InvitationRepository, companyID, id string, now time.Time) error {
	cur, err := repo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return domain.ErrInvitationNotFound
	}
	return domain.NewStateConflict("invitation", string(cur.EffectiveStatus(now)))
}

func failureItem(id string, err error) dto.BulkCancelItem {
	item := dto.BulkCancelItem{ID: id, Message: err.Error()}
	var sc *domain.StateConflictError
	switch {
	case errors.As(err, &sc):
		item.Code, item.State = "CONFLICT", sc.State
	case errors.Is(err, domain.ErrNotFound):
		item.Code = "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		item.Code = "FORBIDDEN"
	case errors.Is(err, domain.ErrInvalidInput):
		item.Code = "VALIDATION"
	default:
		item.Code, item.Message = "INTERNAL", "error interno"
	}
	return item
}

func sameCompany(actor entity.Actor, companyID string) error {
	if companyID == "" {
		return domain.NewValidationError("company_id", "obligatorio")
	}
	if actor.CompanyID != companyID {
		return domain.ErrCrossCompany
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("email", "formato inválido")
	}
	return email, nil
}

func acceptURL(base, token string) string {
	if base == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}

func containsRole(roles []entity.Role, r entity.Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}

func toInvitationResponse(inv *entity.Invitation, now time.Time) dto.InvitationResponse {
	return dto.InvitationResponse{
		ID:          inv.ID,
		CompanyID:   inv.CompanyID,
		Email:       inv.Email,
		TargetRole:  string(inv.TargetRole),
		Status:      string(inv.EffectiveStatus(now)),
		ClientID:    inv.ClientID,
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt,
		ExpiresAt:   inv.ExpiresAt,
		AcceptedAt:  inv.AcceptedAt,
		CancelledAt: inv.CancelledAt,
	}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Status:    u.Status,
		ClientID:  u.ClientID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
