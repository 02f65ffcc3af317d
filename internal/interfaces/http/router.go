package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appaccess "github.com/marianoberton/marketpaper-demo-sub001/internal/application/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/invitation"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/usecase"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/infrastructure/ratelimit"
	"github.com/marianoberton/marketpaper-demo-sub001/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AccessUC      *appaccess.UseCase
	InvitationUC  *invitation.UseCase
	UserUC        *usecase.UserUseCase
	ModuleService *usecase.ModuleService
	InviteLimiter ratelimit.Limiter // nil = sin rate limit
	JWTSecret     string
}

// NewApp construye la app Fiber con el manejo de errores, recover, logging, métricas y health.
func NewApp(name string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(RequestLogger(log))
	app.Use(Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})
	app.Get("/metrics", MetricsHandler())
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Invitaciones (público: el invitado todavía no tiene cuenta)
	invitationHandler := NewInvitationHandler(deps.InvitationUC)
	api.Post("/invitations/accept", invitationHandler.Accept)
	api.Get("/invitations/preview", invitationHandler.Preview)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Decisiones de acceso del propio usuario (cualquier rol, incluido el portal)
	meHandler := NewMeHandler(deps.ModuleService)
	me := protected.Group("/me")
	me.Get("/modules", meHandler.Modules)
	me.Get("/modules/:moduleId", RequireModuleParam("moduleId", deps.ModuleService), meHandler.CheckModule)

	// Administración por empresa (solo equipo; la jerarquía fina la aplican los casos de uso)
	company := protected.Group("/companies/:companyId", RequireTeam())

	accessHandler := NewModuleAccessHandler(deps.AccessUC)
	company.Get("/modules", accessHandler.Catalog)
	company.Get("/role-module-matrix", accessHandler.GetMatrix)
	company.Put("/role-module-matrix", accessHandler.ReplaceMatrix)
	company.Delete("/role-module-matrix", accessHandler.ResetMatrix)
	company.Post("/module-access/cleanup", accessHandler.Cleanup)

	userHandler := NewUserHandler(deps.UserUC)
	company.Get("/roles", userHandler.Roles)
	users := company.Group("/users")
	users.Get("/", userHandler.List)
	users.Get("/:userId", userHandler.GetByID)
	users.Patch("/:userId/role", userHandler.ChangeRole)
	users.Patch("/:userId/status", userHandler.ChangeStatus)
	users.Get("/:userId/module-overrides", accessHandler.GetOverrides)
	users.Put("/:userId/module-overrides", accessHandler.ReplaceOverrides)
	users.Delete("/:userId/module-overrides", accessHandler.ResetOverrides)
	users.Get("/:userId/modules", accessHandler.UserModules)
	users.Get("/:userId/resolved-modules", accessHandler.ResolvedModules)
	users.Post("/:userId/modules/:moduleId/toggle", accessHandler.Toggle)

	invitations := company.Group("/invitations")
	invitations.Get("/", invitationHandler.List)
	invitations.Post("/", RateLimit(deps.InviteLimiter), invitationHandler.Create)
	invitations.Post("/bulk-cancel", invitationHandler.BulkCancel)
	invitations.Delete("/:id", invitationHandler.Cancel)
}
