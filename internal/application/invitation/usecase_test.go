package invitation_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/invitation"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/memory"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

const (
	companyID = "c1"
	clientID  = "cli-1"
)

type fixture struct {
	store *memory.Store
	uc    *invitation.UseCase
	ctx   context.Context
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.PutCompany(entity.Company{ID: companyID, Name: "Acme", Status: "active"},
		entity.Module{ID: "crm", Name: "CRM", Category: "comercial"})
	s.PutCompany(entity.Company{ID: "c2", Name: "Otra", Status: "active"})
	s.PutClient(entity.Client{ID: clientID, CompanyID: companyID, Name: "Cliente", PortalEnabled: true})
	s.PutClient(entity.Client{ID: "cli-off", CompanyID: companyID, Name: "Sin portal"})
	for _, u := range []entity.User{
		{ID: "owner", CompanyID: companyID, Email: "owner@acme.test", Role: entity.RoleOwner, Status: entity.UserStatusActive},
		{ID: "admin", CompanyID: companyID, Email: "admin@acme.test", Role: entity.RoleAdmin, Status: entity.UserStatusActive},
		{ID: "manager", CompanyID: companyID, Email: "manager@acme.test", Role: entity.RoleManager, Status: entity.UserStatusActive},
	} {
		s.PutUser(u)
	}

	f := &fixture{store: s, ctx: context.Background(), now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.uc = invitation.NewUseCase(s.Invitations(), s.Users(), s.Companies(), s.Clients(), memory.NewTxRunner(s),
		invitation.Config{TTL: 7 * 24 * time.Hour, AcceptURL: "https://app.test/invite"}, logger.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func actor(id string, role entity.Role) entity.Actor {
	return entity.Actor{UserID: id, CompanyID: companyID, Role: role}
}

var (
	owner   = actor("owner", entity.RoleOwner)
	admin   = actor("admin", entity.RoleAdmin)
	manager = actor("manager", entity.RoleManager)
	emp     = actor("emp", entity.RoleEmployee)
)

func (f *fixture) invite(t *testing.T, by entity.Actor, email string, role entity.Role) *dto.CreateInvitationResponse {
	t.Helper()
	out, err := f.uc.Create(f.ctx, by, companyID, dto.CreateInvitationRequest{Email: email, TargetRole: string(role)})
	require.NoError(t, err)
	return out
}

func (f *fixture) countInvitations(t *testing.T) int {
	t.Helper()
	list, err := f.uc.List(f.ctx, owner, companyID, "", dto.PageRequest{Limit: 100})
	require.NoError(t, err)
	return len(list.Items)
}

func acceptReq(token string) dto.AcceptInvitationRequest {
	return dto.AcceptInvitationRequest{Token: token, Name: "Nuevo Usuario", Password: "clave-segura"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_InvitacionDeEquipo(t *testing.T) {
	f := newFixture(t)
	out := f.invite(t, admin, "  Nuevo@Acme.test ", entity.RoleEmployee)

	assert.Equal(t, "nuevo@acme.test", out.Invitation.Email)
	assert.Equal(t, "pending", out.Invitation.Status)
	assert.Equal(t, f.now.Add(7*24*time.Hour), out.Invitation.ExpiresAt)
	assert.NotEmpty(t, out.Token)
	assert.Nil(t, out.Invitation.ClientID)

	u, err := url.Parse(out.AcceptURL)
	require.NoError(t, err)
	assert.Equal(t, out.Token, u.Query().Get("token"))
}

func TestCreate_ManagerNoPuedeInvitarOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, manager, companyID, dto.CreateInvitationRequest{Email: "x@acme.test", TargetRole: "owner"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, f.countInvitations(t), "no se debe persistir ninguna invitación")
}

func TestCreate_RolesFueraDeLaJerarquia(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		by   entity.Actor
		role entity.Role
	}{
		{admin, entity.RoleAdmin},
		{manager, entity.RoleManager},
		{emp, entity.RoleEmployee},
	}
	for _, tc := range cases {
		_, err := f.uc.Create(f.ctx, tc.by, companyID, dto.CreateInvitationRequest{Email: "x@acme.test", TargetRole: string(tc.role)})
		assert.ErrorIs(t, err, domain.ErrRoleNotAssignable, "%s invitando %s", tc.by.Role, tc.role)
	}
}

func TestCreate_RolDesconocidoOEmailInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, owner, companyID, dto.CreateInvitationRequest{Email: "x@acme.test", TargetRole: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(f.ctx, owner, companyID, dto.CreateInvitationRequest{Email: "no-es-email", TargetRole: "employee"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestCreate_OtraEmpresa(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, owner, "c2", dto.CreateInvitationRequest{Email: "x@otra.test", TargetRole: "employee"})
	assert.ErrorIs(t, err, domain.ErrCrossCompany)
}

func TestCreate_InvitacionDeClienteValidaElCliente(t *testing.T) {
	f := newFixture(t)
	ptr := func(s string) *string { return &s }

	cases := []struct {
		name     string
		clientID *string
	}{
		{"sin cliente", nil},
		{"cliente inexistente", ptr("nope")},
		{"cliente sin portal", ptr("cli-off")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(f.ctx, manager, companyID, dto.CreateInvitationRequest{
				Email: "portal@cliente.test", TargetRole: "viewer", ClientID: tc.clientID,
			})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "client_id", verr.Field)
		})
	}

	out, err := f.uc.Create(f.ctx, manager, companyID, dto.CreateInvitationRequest{
		Email: "portal@cliente.test", TargetRole: "viewer", ClientID: ptr(clientID),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Invitation.ClientID)
	assert.Equal(t, clientID, *out.Invitation.ClientID)
}

func TestCreate_ClienteEnInvitacionDeEquipoEsInvalido(t *testing.T) {
	f := newFixture(t)
	id := clientID
	_, err := f.uc.Create(f.ctx, owner, companyID, dto.CreateInvitationRequest{Email: "x@acme.test", TargetRole: "employee", ClientID: &id})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_Duplicados(t *testing.T) {
	f := newFixture(t)
	f.invite(t, owner, "dup@acme.test", entity.RoleEmployee)

	_, err := f.uc.Create(f.ctx, owner, companyID, dto.CreateInvitationRequest{Email: "DUP@acme.test", TargetRole: "manager"})
	var sc *domain.StateConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "pending", sc.State)

	_, err = f.uc.Create(f.ctx, owner, companyID, dto.CreateInvitationRequest{Email: "admin@acme.test", TargetRole: "employee"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestCreate_PendienteVencidaNoBloqueaNuevaInvitacion(t *testing.T) {
	f := newFixture(t)
	f.invite(t, owner, "late@acme.test", entity.RoleEmployee)
	f.now = f.now.Add(8 * 24 * time.Hour)

	_, err := f.uc.Create(f.ctx, owner, companyID, dto.CreateInvitationRequest{Email: "late@acme.test", TargetRole: "employee"})
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel / BulkCancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_PendienteYLuegoConflicto(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, admin, "c@acme.test", entity.RoleEmployee)

	got, err := f.uc.Cancel(f.ctx, admin, companyID, inv.Invitation.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.NotNil(t, got.CancelledAt)

	_, err = f.uc.Cancel(f.ctx, admin, companyID, inv.Invitation.ID)
	var sc *domain.StateConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "cancelled", sc.State)
}

func TestCancel_VencidaDevuelveExpired(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, owner, "c@acme.test", entity.RoleEmployee)
	f.now = f.now.Add(7*24*time.Hour + time.Second)

	_, err := f.uc.Cancel(f.ctx, owner, companyID, inv.Invitation.ID)
	var sc *domain.StateConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "expired", sc.State)
}

func TestCancel_RequiereAdministrarElRolInvitado(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, owner, "a@acme.test", entity.RoleAdmin)

	_, err := f.uc.Cancel(f.ctx, manager, companyID, inv.Invitation.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Cancel(f.ctx, owner, companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrInvitationNotFound)
}

func TestBulkCancel_ResultadoPorID(t *testing.T) {
	f := newFixture(t)
	a := f.invite(t, owner, "a@acme.test", entity.RoleEmployee)
	b := f.invite(t, owner, "b@acme.test", entity.RoleEmployee)
	c := f.invite(t, owner, "c@acme.test", entity.RoleEmployee)

	_, err := f.uc.Accept(f.ctx, acceptReq(c.Token))
	require.NoError(t, err)

	out, err := f.uc.BulkCancel(f.ctx, owner, companyID, []string{a.Invitation.ID, b.Invitation.ID, c.Invitation.ID})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Results, 3)
	assert.True(t, out.Results[0].OK)
	assert.True(t, out.Results[1].OK)
	assert.False(t, out.Results[2].OK)
	assert.Equal(t, "CONFLICT", out.Results[2].Code)
	assert.Equal(t, "accepted", out.Results[2].State)
}

func TestBulkCancel_ListaVaciaEsInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.BulkCancel(f.ctx, owner, companyID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.uc.BulkCancel(f.ctx, owner, companyID, []string{"nope"})
	require.NoError(t, err)
	assert.Equal(t, "NOT_FOUND", out.Results[0].Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Accept
// ──────────────────────────────────────────────────────────────────────────────

func TestAccept_ProvisionaUsuarioConElRolInvitado(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, admin, "nuevo@acme.test", entity.RoleManager)

	user, err := f.uc.Accept(f.ctx, acceptReq(inv.Token))
	require.NoError(t, err)
	assert.Equal(t, "manager", user.Role)
	assert.Equal(t, "active", user.Status)
	assert.Equal(t, companyID, user.CompanyID)

	stored, err := f.store.Users().GetByEmailAndCompany(f.ctx, "nuevo@acme.test", companyID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-segura")))

	prev, err := f.uc.Preview(f.ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, "accepted", prev.Status)
}

func TestAccept_TokenDeUnSoloUso(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, owner, "once@acme.test", entity.RoleEmployee)

	_, err := f.uc.Accept(f.ctx, acceptReq(inv.Token))
	require.NoError(t, err)

	_, err = f.uc.Accept(f.ctx, acceptReq(inv.Token))
	var sc *domain.StateConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "accepted", sc.State)
}

func TestAccept_VencidaNoCreaUsuario(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, owner, "tarde@acme.test", entity.RoleEmployee)
	f.now = f.now.Add(8 * 24 * time.Hour)

	_, err := f.uc.Accept(f.ctx, acceptReq(inv.Token))
	var sc *domain.StateConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, "expired", sc.State)

	u, err := f.store.Users().GetByEmailAndCompany(f.ctx, "tarde@acme.test", companyID)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAccept_CanceladaNoCreaUsuario(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, owner, "cx@acme.test", entity.RoleEmployee)
	_, err := f.uc.Cancel(f.ctx, owner, companyID, inv.Invitation.ID)
	require.NoError(t, err)

	_, err = f.uc.Accept(f.ctx, acceptReq(inv.Token))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccept_ClienteQueDaVinculadoAlCliente(t *testing.T) {
	f := newFixture(t)
	id := clientID
	inv, err := f.uc.Create(f.ctx, admin, companyID, dto.CreateInvitationRequest{Email: "p@cliente.test", TargetRole: "viewer", ClientID: &id})
	require.NoError(t, err)

	user, err := f.uc.Accept(f.ctx, acceptReq(inv.Token))
	require.NoError(t, err)
	require.NotNil(t, user.ClientID)
	assert.Equal(t, clientID, *user.ClientID)
	assert.Equal(t, "viewer", user.Role)
}

func TestAccept_Validaciones(t *testing.T) {
	f := newFixture(t)
	inv := f.invite(t, owner, "v@acme.test", entity.RoleEmployee)

	cases := map[string]dto.AcceptInvitationRequest{
		"token":    {Token: "", Name: "N", Password: "clave-segura"},
		"name":     {Token: inv.Token, Name: "  ", Password: "clave-segura"},
		"password": {Token: inv.Token, Name: "N", Password: "corta"},
	}
	for field, req := range cases {
		_, err := f.uc.Accept(f.ctx, req)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}

	_, err := f.uc.Accept(f.ctx, acceptReq(strings.Repeat("x", 43)))
	assert.True(t, errors.Is(err, domain.ErrInvitationNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// List / Preview
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstadoEfectivo(t *testing.T) {
	f := newFixture(t)
	f.invite(t, owner, "vieja@acme.test", entity.RoleEmployee)
	f.now = f.now.Add(8 * 24 * time.Hour)
	f.invite(t, owner, "nueva@acme.test", entity.RoleEmployee)

	pending, err := f.uc.List(f.ctx, manager, companyID, "pending", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "nueva@acme.test", pending.Items[0].Email)
	assert.Equal(t, 20, pending.Page.Limit)

	expired, err := f.uc.List(f.ctx, manager, companyID, "expired", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, expired.Items, 1)
	assert.Equal(t, "expired", expired.Items[0].Status)

	_, err = f.uc.List(f.ctx, manager, companyID, "borrada", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList_ViewerNoPuedeListar(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.List(f.ctx, actor("v", entity.RoleViewer), companyID, "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPreview_TokenDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Preview(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
