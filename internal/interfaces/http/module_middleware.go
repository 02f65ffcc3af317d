package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService; el uso de interfaz evita el import circular.
type moduleChecker interface {
	HasModule(ctx context.Context, companyID, userID, moduleID string) (bool, error)
}

// RequireModule devuelve un middleware Fiber que verifica si el usuario del token JWT
// ve el módulo (matriz de la empresa + overrides del usuario). Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 403 MODULE_DISABLED → el módulo no está en el conjunto resuelto del usuario.
//   - 503 MODULE_CHECK_FAILED → fallo de infraestructura al resolver.
//   - 401 si faltan user_id o company_id en el contexto.
func RequireModule(moduleID string, checker moduleChecker) fiber.Handler {
	return requireModule(func(*fiber.Ctx) string { return moduleID }, checker)
}

// RequireModuleParam igual que RequireModule pero toma el id del módulo de un parámetro de ruta.
func RequireModuleParam(param string, checker moduleChecker) fiber.Handler {
	return requireModule(func(c *fiber.Ctx) string { return c.Params(param) }, checker)
}

func requireModule(moduleOf func(*fiber.Ctx) string, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID, userID := GetCompanyID(c), GetUserID(c)
		if companyID == "" || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id o company_id no encontrados en el token",
			})
		}
		moduleID := moduleOf(c)
		if moduleID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "module_id es requerido", Field: "module_id"})
		}

		enabled, err := checker.HasModule(c.UserContext(), companyID, userID, moduleID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !enabled {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleID + "' no está habilitado para este usuario",
			})
		}
		return c.Next()
	}
}
