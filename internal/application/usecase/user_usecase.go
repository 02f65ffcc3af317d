package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

// OverridePruner borra los overrides que el rol vigente del usuario vuelve redundantes
// (implementado por application/access.UseCase).
type OverridePruner interface {
	PruneUserOverrides(ctx context.Context, companyID, userID string) (int, error)
}

// UserUseCase aplica las reglas de la jerarquía de roles a la administración de miembros.
type UserUseCase struct {
	repo   repository.UserRepository
	pruner OverridePruner
	log    *logger.Logger
	now    func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, pruner OverridePruner, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, pruner: pruner, log: log.Component("users"), now: time.Now}
}

// List lista los miembros de la empresa. Los usuarios del portal no ven el equipo.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor, companyID string, page dto.PageRequest) (*dto.UserListResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	if actor.Role.IsPortal() || !actor.Role.Valid() {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{Items: make([]dto.UserResponse, 0, len(list)), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
	for _, u := range list {
		out.Items = append(out.Items, *entityToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un miembro de la empresa del actor.
func (uc *UserUseCase) GetByID(ctx context.Context, actor entity.Actor, companyID, id string) (*dto.UserResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return entityToUserResponse(user), nil
}

// ChangeRole cambia el rol de un miembro. El actor debe administrar el rol actual y poder asignar el nuevo.
// El rol del portal no entra ni sale por esta vía: esos usuarios nacen de invitaciones de cliente.
// Con el rol ya guardado se borran los overrides que la base del nuevo rol vuelve redundantes.
func (uc *UserUseCase) ChangeRole(ctx context.Context, actor entity.Actor, companyID, userID, rawRole string) (*dto.UserResponse, error) {
	target, err := uc.manageable(ctx, actor, companyID, userID)
	if err != nil {
		return nil, err
	}
	role, ok := entity.ParseRole(rawRole)
	if !ok {
		return nil, domain.NewValidationError("role", "rol desconocido")
	}
	if role.IsPortal() || target.Role.IsPortal() {
		return nil, domain.NewValidationError("role", "el rol del portal solo se asigna por invitación de cliente")
	}
	if !access.CanAssign(actor.Role, role) {
		return nil, domain.ErrRoleNotAssignable
	}
	if target.Role == role {
		return entityToUserResponse(target), nil
	}

	prev := target.Role
	target.Role = role
	target.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("actor_id", actor.UserID).
		Str("from", string(prev)).Str("to", string(role)).Msg("rol cambiado")
	if _, err := uc.pruner.PruneUserOverrides(ctx, companyID, userID); err != nil {
		return nil, err
	}
	return entityToUserResponse(target), nil
}

// ChangeStatus activa, desactiva o suspende a un miembro administrable.
func (uc *UserUseCase) ChangeStatus(ctx context.Context, actor entity.Actor, companyID, userID, status string) (*dto.UserResponse, error) {
	target, err := uc.manageable(ctx, actor, companyID, userID)
	if err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !entity.ValidUserStatus(status) {
		return nil, domain.NewValidationError("status", "debe ser active, inactive o suspended")
	}
	if target.Status == status {
		return entityToUserResponse(target), nil
	}
	target.Status = status
	target.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	uc.log.Info().Str("company_id", companyID).Str("user_id", userID).Str("actor_id", actor.UserID).
		Str("status", status).Msg("estado de usuario cambiado")
	return entityToUserResponse(target), nil
}

// Roles describe qué puede hacer el actor con cada rol (para armar la UI de equipo e invitaciones).
func (uc *UserUseCase) Roles(actor entity.Actor, companyID string) (*dto.RolesResponse, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	return &dto.RolesResponse{
		Role:            string(actor.Role),
		Assignable:      roleStrings(access.AssignableRoles(actor.Role)),
		Manageable:      roleStrings(access.ManageableRoles(actor.Role)),
		TeamInvitable:   roleStrings(access.TeamInvitableRoles(actor.Role)),
		ClientInvitable: roleStrings(access.ClientInvitableRoles(actor.Role)),
	}, nil
}

// manageable carga el usuario objetivo y exige que el actor lo administre. Nadie se edita a sí mismo.
func (uc *UserUseCase) manageable(ctx context.Context, actor entity.Actor, companyID, userID string) (*entity.User, error) {
	if err := sameCompany(actor, companyID); err != nil {
		return nil, err
	}
	if actor.UserID == userID {
		return nil, domain.ErrForbidden
	}
	target, err := uc.repo.GetByID(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}
	if !access.CanManage(actor.Role, target.Role) {
		return nil, domain.ErrForbidden
	}
	return target, nil
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

func roleStrings(roles []entity.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
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
