package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/postgres"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/config"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

// setupTestDB levanta PostgreSQL en un contenedor, aplica migraciones y devuelve el pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("test de integración omitido: TEST_INTEGRATION no está definida")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		tcpostgres.WithDatabase("marketpaper_test"),
		tcpostgres.WithUsername("marketpaper"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("error al detener el contenedor: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, logger.Nop()))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 5, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	companyID string
	userID    string
	clientID  string
}

func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{companyID: uuid.NewString(), userID: uuid.NewString(), clientID: uuid.NewString()}

	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO companies (id, name) VALUES ($1, 'Acme')`, []any{f.companyID}},
		{`INSERT INTO modules (id, name, category) VALUES ('crm','CRM','comercial'), ('finance','Finanzas','finanzas'), ('expenses','Gastos','finanzas') ON CONFLICT (id) DO NOTHING`, nil},
		{`INSERT INTO company_modules (company_id, module_id) VALUES ($1,'crm'), ($1,'finance')`, []any{f.companyID}},
		{`INSERT INTO company_modules (company_id, module_id, expires_at) VALUES ($1,'expenses', now() - interval '1 day')`, []any{f.companyID}},
		{`INSERT INTO clients (id, company_id, name, portal_enabled) VALUES ($1, $2, 'Cliente SA', true)`, []any{f.clientID, f.companyID}},
		{`INSERT INTO users (id, company_id, email, password_hash, name, role) VALUES ($1, $2, 'owner@acme.test', 'x', 'Owner', 'owner')`, []any{f.userID, f.companyID}},
	}
	for _, s := range stmts {
		_, err := pool.Exec(ctx, s.sql, s.args...)
		require.NoError(t, err, s.sql)
	}
	return f
}

func TestCompanyRepo_ListModulesExcluyeVencidos(t *testing.T) {
	pool := setupTestDB(t)
	f := seed(t, pool)

	mods, err := postgres.NewCompanyRepository(pool).ListModules(context.Background(), f.companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{"crm", "finance"}, entity.ModuleIDs(mods))
}

func TestRoleModuleRepo_FilaVaciaSeConservaYResetBorraTodo(t *testing.T) {
	pool := setupTestDB(t)
	f := seed(t, pool)
	ctx := context.Background()
	repo := postgres.NewRoleModuleRepository(pool)

	require.NoError(t, repo.Upsert(ctx, &entity.RoleModuleConfig{CompanyID: f.companyID, Role: entity.RoleEmployee, ModuleIDs: []string{}, UpdatedAt: time.Now()}))
	require.NoError(t, repo.Upsert(ctx, &entity.RoleModuleConfig{CompanyID: f.companyID, Role: entity.RoleAdmin, ModuleIDs: []string{"crm"}, UpdatedAt: time.Now()}))

	rows, err := repo.ListByCompany(ctx, f.companyID)
	require.NoError(t, err)
	state := entity.MatrixFromConfigs(rows)
	custom, ok := state.(entity.CustomizedMatrix)
	require.True(t, ok)
	assert.Equal(t, []string{}, custom.Roles[entity.RoleEmployee])
	assert.Equal(t, []string{"crm"}, custom.Roles[entity.RoleAdmin])

	require.NoError(t, repo.DeleteByCompany(ctx, f.companyID))
	rows, err = repo.ListByCompany(ctx, f.companyID)
	require.NoError(t, err)
	assert.IsType(t, entity.DefaultMatrix{}, entity.MatrixFromConfigs(rows))
}

func TestOverrideRepo_UpsertReemplazaYDeleteModules(t *testing.T) {
	pool := setupTestDB(t)
	f := seed(t, pool)
	ctx := context.Background()
	repo := postgres.NewOverrideRepository(pool)

	o := &entity.ModuleOverride{CompanyID: f.companyID, UserID: f.userID, ModuleID: "finance", OverrideType: entity.OverrideGrant, CreatedBy: f.userID, CreatedAt: time.Now()}
	require.NoError(t, repo.Upsert(ctx, o))
	o.OverrideType = entity.OverrideRevoke
	require.NoError(t, repo.Upsert(ctx, o))

	list, err := repo.ListByUser(ctx, f.companyID, f.userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.OverrideRevoke, list[0].OverrideType)

	all, err := repo.ListByCompany(ctx, f.companyID)
	require.NoError(t, err)
	assert.Equal(t, list, all)

	n, err := repo.DeleteModules(ctx, f.companyID, []string{"finance", "legacy"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestInvitationRepo_AceptacionCondicionalYFiltroExpired(t *testing.T) {
	pool := setupTestDB(t)
	f := seed(t, pool)
	ctx := context.Background()
	repo := postgres.NewInvitationRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	live := &entity.Invitation{ID: uuid.NewString(), CompanyID: f.companyID, Email: "New@Acme.test", TargetRole: entity.RoleEmployee,
		Status: entity.InvitationPending, TokenHash: "h1", CreatedBy: f.userID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	old := &entity.Invitation{ID: uuid.NewString(), CompanyID: f.companyID, Email: "old@acme.test", TargetRole: entity.RoleEmployee,
		Status: entity.InvitationPending, TokenHash: "h2", CreatedBy: f.userID, CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, old))

	found, err := repo.FindPendingByEmail(ctx, f.companyID, "new@acme.test", now)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, live.ID, found.ID)

	expired, err := repo.List(ctx, f.companyID, repository.InvitationFilter{Status: entity.InvitationExpired, Now: now, Limit: 10})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)

	ok, err := repo.MarkAccepted(ctx, live.ID, f.userID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkAccepted(ctx, live.ID, f.userID, now)
	require.NoError(t, err)
	assert.False(t, ok, "la segunda aceptación no debe afectar filas")

	ok, err = repo.MarkCancelled(ctx, old.ID, f.userID, now)
	require.NoError(t, err)
	assert.False(t, ok, "una invitación vencida no se cancela")

	got, err := repo.GetByTokenHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationAccepted, got.Status)
	require.NotNil(t, got.AcceptedBy)
	assert.Equal(t, f.userID, *got.AcceptedBy)
}

func TestTxRunner_RollbackAnteError(t *testing.T) {
	pool := setupTestDB(t)
	f := seed(t, pool)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)

	err := runner.RunAccess(ctx, func(roles repository.RoleModuleRepository, _ repository.OverrideRepository) error {
		require.NoError(t, roles.Upsert(ctx, &entity.RoleModuleConfig{CompanyID: f.companyID, Role: entity.RoleAdmin, ModuleIDs: []string{"crm"}, UpdatedAt: time.Now()}))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	rows, err := postgres.NewRoleModuleRepository(pool).ListByCompany(ctx, f.companyID)
	require.NoError(t, err)
	assert.Empty(t, rows, "la fila escrita dentro de la tx fallida no debe persistir")
}

func TestRegisterPoolMetrics_ExponeEstadoDelPool(t *testing.T) {
	pool := setupTestDB(t)
	reg := prometheus.NewRegistry()
	require.NoError(t, postgres.RegisterPoolMetrics(reg, pool))

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, f := range families {
		got[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
	}
	assert.Equal(t, float64(5), got["ma_db_pool_max_conns"])
	assert.Contains(t, got, "ma_db_pool_empty_acquire_total")
}
