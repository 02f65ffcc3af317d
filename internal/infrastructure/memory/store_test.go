package memory_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/memory"
)

func TestUserRepo_EmailUnicoPorEmpresaSinMayusculas(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: "u1", CompanyID: "c1", Email: "Ana@x.test"}))
	err := s.Users().Create(ctx, &entity.User{ID: "u2", CompanyID: "c1", Email: "ana@X.test"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	require.NoError(t, s.Users().Create(ctx, &entity.User{ID: "u3", CompanyID: "c2", Email: "ana@x.test"}))

	u, err := s.Users().GetByID(ctx, "c2", "u1")
	require.NoError(t, err)
	assert.Nil(t, u, "GetByID no cruza empresas")
}

func TestCompanyRepo_CatalogoOrdenado(t *testing.T) {
	s := memory.NewStore()
	memory.SeedDemo(s, "hash", time.Now())

	mods, err := s.Companies().ListModules(context.Background(), memory.DemoCompanyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"quotes", "crm", "finance", "expenses", "cases", "client-portal"}, entity.ModuleIDs(mods))
}

func TestInvitationRepo_MarkAcceptedUnaSolaVez(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Now()
	inv := &entity.Invitation{ID: "i1", CompanyID: "c1", Email: "a@x", Status: entity.InvitationPending, TokenHash: "h", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, s.Invitations().Create(ctx, inv))

	ok, err := s.Invitations().MarkAccepted(ctx, "i1", "u1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Invitations().MarkAccepted(ctx, "i1", "u2", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Invitations().MarkCancelled(ctx, "i1", "u1", now)
	require.NoError(t, err)
	assert.False(t, ok, "una invitación aceptada no se cancela")
}

func TestInvitationRepo_ListFiltraPorEstadoEfectivo(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Invitations().Create(ctx, &entity.Invitation{ID: "live", CompanyID: "c1", Status: entity.InvitationPending, TokenHash: "a", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.Invitations().Create(ctx, &entity.Invitation{ID: "old", CompanyID: "c1", Status: entity.InvitationPending, TokenHash: "b", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-time.Minute)}))

	pending, err := s.Invitations().List(ctx, "c1", repository.InvitationFilter{Status: entity.InvitationPending, Now: now})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "live", pending[0].ID)

	expired, err := s.Invitations().List(ctx, "c1", repository.InvitationFilter{Status: entity.InvitationExpired, Now: now})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)

	all, err := s.Invitations().List(ctx, "c1", repository.InvitationFilter{Now: now, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "old", all[0].ID)
}

func TestTxRunner_RestauraAnteError(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	runner := memory.NewTxRunner(s)

	boom := errors.New("boom")
	err := runner.RunAccess(ctx, func(roles repository.RoleModuleRepository, ovs repository.OverrideRepository) error {
		require.NoError(t, roles.Upsert(ctx, &entity.RoleModuleConfig{CompanyID: "c1", Role: entity.RoleAdmin, ModuleIDs: []string{"crm"}}))
		require.NoError(t, ovs.Upsert(ctx, &entity.ModuleOverride{CompanyID: "c1", UserID: "u1", ModuleID: "crm", OverrideType: entity.OverrideGrant}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := s.RoleModules().ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	ovs, err := s.Overrides().ListByUser(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Empty(t, ovs)
}

func TestOverrideRepo_DeleteModulesSoloDeLaEmpresa(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	for _, o := range []entity.ModuleOverride{
		{CompanyID: "c1", UserID: "u1", ModuleID: "legacy", OverrideType: entity.OverrideGrant},
		{CompanyID: "c1", UserID: "u2", ModuleID: "legacy", OverrideType: entity.OverrideRevoke},
		{CompanyID: "c1", UserID: "u2", ModuleID: "crm", OverrideType: entity.OverrideRevoke},
		{CompanyID: "c2", UserID: "u9", ModuleID: "legacy", OverrideType: entity.OverrideGrant},
	} {
		o := o
		require.NoError(t, s.Overrides().Upsert(ctx, &o))
	}

	n, err := s.Overrides().DeleteModules(ctx, "c1", []string{"legacy"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	other, err := s.Overrides().ListByUser(ctx, "c2", "u9")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestTxRunner_LectoresNoVenReemplazoParcial(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	runner := memory.NewTxRunner(s)
	rows := []entity.RoleModuleConfig{
		{CompanyID: "c1", Role: entity.RoleAdmin, ModuleIDs: []string{"crm", "finance"}},
		{CompanyID: "c1", Role: entity.RoleManager, ModuleIDs: []string{"crm"}},
		{CompanyID: "c1", Role: entity.RoleEmployee, ModuleIDs: []string{}},
	}
	replace := func() error {
		return runner.RunAccess(ctx, func(roles repository.RoleModuleRepository, _ repository.OverrideRepository) error {
			if err := roles.DeleteByCompany(ctx, "c1"); err != nil {
				return err
			}
			for i := range rows {
				runtime.Gosched()
				if err := roles.Upsert(ctx, &rows[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, replace())

	var stop atomic.Bool
	var partial atomic.Int64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			got, err := s.RoleModules().ListByCompany(ctx, "c1")
			if err != nil || len(got) != len(rows) {
				partial.Add(1)
			}
		}
	}()
	for i := 0; i < 300; i++ {
		require.NoError(t, replace())
	}
	stop.Store(true)
	wg.Wait()

	assert.Zero(t, partial.Load(), "un lector vio la matriz vacía o incompleta")
}

func TestTxRunner_EscrituraSueltaEsperaAlCommit(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	runner := memory.NewTxRunner(s)

	inTx := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.RunAccess(ctx, func(_ repository.RoleModuleRepository, ovs repository.OverrideRepository) error {
			close(inTx)
			<-release
			return ovs.Upsert(ctx, &entity.ModuleOverride{CompanyID: "c1", UserID: "u1", ModuleID: "crm", OverrideType: entity.OverrideGrant})
		})
	}()
	<-inTx

	written := make(chan struct{})
	go func() {
		_ = s.Overrides().Upsert(ctx, &entity.ModuleOverride{CompanyID: "c1", UserID: "u2", ModuleID: "crm", OverrideType: entity.OverrideRevoke})
		close(written)
	}()
	close(release)
	require.NoError(t, <-done)
	<-written

	all, err := s.Overrides().ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, all, 2, "el commit no pisa la escritura hecha fuera de la transacción")
}

func TestOverrideRepo_ListByCompany(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	for _, o := range []entity.ModuleOverride{
		{CompanyID: "c1", UserID: "u2", ModuleID: "crm", OverrideType: entity.OverrideRevoke},
		{CompanyID: "c1", UserID: "u1", ModuleID: "finance", OverrideType: entity.OverrideGrant},
		{CompanyID: "c1", UserID: "u1", ModuleID: "cases", OverrideType: entity.OverrideGrant},
		{CompanyID: "c2", UserID: "u9", ModuleID: "crm", OverrideType: entity.OverrideGrant},
	} {
		o := o
		require.NoError(t, s.Overrides().Upsert(ctx, &o))
	}

	list, err := s.Overrides().ListByCompany(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "u1", list[0].UserID)
	assert.Equal(t, "cases", list[0].ModuleID)
	assert.Equal(t, "u2", list[2].UserID)
}
