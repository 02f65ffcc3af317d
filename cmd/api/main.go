package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	appaccess "github.com/marianoberton/marketpaper-demo-sub001/internal/application/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/invitation"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/usecase"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/repository"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/cache"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/memory"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/postgres"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/ratelimit"
	httpRouter "github.com/marianoberton/marketpaper-demo-sub001/internal/interfaces/http"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/config"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/jwt"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

// repos agrupa los puertos que necesitan los casos de uso, sea cual sea el almacenamiento.
type repos struct {
	users       repository.UserRepository
	companies   repository.CompanyRepository
	catalog     repository.ModuleCatalog
	clients     repository.ClientRepository
	roles       repository.RoleModuleRepository
	overrides   repository.OverrideRepository
	invitations repository.InvitationRepository
	accessTx    appaccess.TxRunner
	invTx       invitation.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var r repos
	switch cfg.App.Storage {
	case config.StorageMemory:
		r = memoryRepos(cfg, log)
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
			log.Warn().Err(err).Msg("métricas del pool")
		}

		companyRepo := postgres.NewCompanyRepository(pool)
		txRunner := postgres.NewTxRunner(pool)
		r = repos{
			users:       postgres.NewUserRepository(pool),
			companies:   companyRepo,
			catalog:     companyRepo,
			clients:     postgres.NewClientRepository(pool),
			roles:       postgres.NewRoleModuleRepository(pool),
			overrides:   postgres.NewOverrideRepository(pool),
			invitations: postgres.NewInvitationRepository(pool),
			accessTx:    txRunner,
			invTx:       txRunner,
		}
	}

	// Caché LRU del catálogo (lo consulta cada resolución de módulos)
	if cfg.Cache.CatalogSize > 0 {
		r.catalog = cache.NewCatalogCache(r.catalog, cfg.Cache.CatalogSize, cfg.Cache.CatalogTTL)
	}

	accessUC := appaccess.NewUseCase(r.catalog, r.roles, r.overrides, r.users, r.accessTx, log)
	invitationUC := invitation.NewUseCase(r.invitations, r.users, r.companies, r.clients, r.invTx,
		invitation.Config{TTL: cfg.Invitation.TTL, AcceptURL: cfg.Invitation.AcceptURL}, log)
	userUC := usecase.NewUserUseCase(r.users, accessUC, log)
	moduleSvc := usecase.NewModuleService(accessUC)

	// Rate limit de invitaciones: solo con Redis configurado
	var inviteLimiter ratelimit.Limiter
	if cfg.Redis.Enabled() {
		rdb, err := ratelimit.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		inviteLimiter = ratelimit.NewRedisLimiter(rdb, cfg.Redis.InviteLimit, cfg.Redis.Window, "invitations", log)
	}

	app := httpRouter.NewApp(cfg.App.Name, log)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Module Access API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AccessUC:      accessUC,
		InvitationUC:  invitationUC,
		UserUC:        userUC,
		ModuleService: moduleSvc,
		InviteLimiter: inviteLimiter,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// memoryRepos arma el almacenamiento en memoria con el dataset demo y deja en el log
// un token de owner para probar la API en local.
func memoryRepos(cfg *config.Config, log *logger.Logger) repos {
	s := memory.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash demo")
	}
	memory.SeedDemo(s, string(hash), time.Now())

	owner := jwt.Identity{UserID: memory.DemoOwnerID, CompanyID: memory.DemoCompanyID, Role: string(entity.RoleOwner)}
	token, err := jwt.Issue(cfg.JWT.Secret, owner, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		log.Fatal().Err(err).Msg("token demo")
	}
	log.Warn().
		Str("company_id", memory.DemoCompanyID).
		Str("client_id", memory.DemoClientID).
		Str("owner_token", token).
		Msg("almacenamiento en memoria: solo para desarrollo, los datos se pierden al reiniciar")

	companies := s.Companies()
	tx := memory.NewTxRunner(s)
	return repos{
		users:       s.Users(),
		companies:   companies,
		catalog:     companies,
		clients:     s.Clients(),
		roles:       s.RoleModules(),
		overrides:   s.Overrides(),
		invitations: s.Invitations(),
		accessTx:    tx,
		invTx:       tx,
	}
}
