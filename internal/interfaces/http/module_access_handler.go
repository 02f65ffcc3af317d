package http

import (
	"github.com/gofiber/fiber/v2"

	appaccess "github.com/marianoberton/marketpaper-demo-sub001/internal/application/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
)

// ModuleAccessHandler expone catálogo, matriz rol→módulos y overrides por usuario.
type ModuleAccessHandler struct {
	uc *appaccess.UseCase
}

// NewModuleAccessHandler construye el handler inyectando el caso de uso.
func NewModuleAccessHandler(uc *appaccess.UseCase) *ModuleAccessHandler {
	return &ModuleAccessHandler{uc: uc}
}

// Catalog godoc
// @Summary      Catálogo de módulos de la empresa
// @Tags         modules
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Success      200  {array}   dto.ModuleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/modules [get]
func (h *ModuleAccessHandler) Catalog(c *fiber.Ctx) error {
	out, err := h.uc.GetCatalog(c.UserContext(), Actor(c), c.Params("companyId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetMatrix godoc
// @Summary      Matriz rol→módulos
// @Tags         modules
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.MatrixResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/role-module-matrix [get]
func (h *ModuleAccessHandler) GetMatrix(c *fiber.Ctx) error {
	out, err := h.uc.GetMatrix(c.UserContext(), Actor(c), c.Params("companyId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReplaceMatrix godoc
// @Summary      Reemplazar la matriz completa (mapa vacío = volver a Default)
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                    true  "ID de la empresa"
// @Param        body       body  dto.ReplaceMatrixRequest  true  "roleModules"
// @Success      200  {object}  dto.MatrixResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/role-module-matrix [put]
func (h *ModuleAccessHandler) ReplaceMatrix(c *fiber.Ctx) error {
	var in dto.ReplaceMatrixRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actor, companyID := Actor(c), c.Params("companyId")
	if err := h.uc.ReplaceMatrix(c.UserContext(), actor, companyID, in.RoleModules); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetMatrix(c.UserContext(), actor, companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ResetMatrix godoc
// @Summary      Volver a la matriz Default (no toca overrides)
// @Tags         modules
// @Param        companyId  path  string  true  "ID de la empresa"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/role-module-matrix [delete]
func (h *ModuleAccessHandler) ResetMatrix(c *fiber.Ctx) error {
	if err := h.uc.ResetToDefault(c.UserContext(), Actor(c), c.Params("companyId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cleanup godoc
// @Summary      Limpiar referencias a módulos que salieron del catálogo
// @Tags         modules
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CleanupResponse
// @Router       /api/companies/{companyId}/module-access/cleanup [post]
func (h *ModuleAccessHandler) Cleanup(c *fiber.Ctx) error {
	out, err := h.uc.CleanupCatalog(c.UserContext(), Actor(c), c.Params("companyId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetOverrides godoc
// @Summary      Overrides de un usuario
// @Tags         modules
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Param        userId     path  string  true  "ID del usuario"
// @Success      200  {object}  dto.OverridesResponse
// @Router       /api/companies/{companyId}/users/{userId}/module-overrides [get]
func (h *ModuleAccessHandler) GetOverrides(c *fiber.Ctx) error {
	out, err := h.uc.GetUserOverrides(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReplaceOverrides godoc
// @Summary      Reemplazar los overrides de un usuario (se descartan los redundantes)
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                       true  "ID de la empresa"
// @Param        userId     path  string                       true  "ID del usuario"
// @Param        body       body  dto.ReplaceOverridesRequest  true  "overrides"
// @Success      200  {object}  dto.OverridesResponse
// @Router       /api/companies/{companyId}/users/{userId}/module-overrides [put]
func (h *ModuleAccessHandler) ReplaceOverrides(c *fiber.Ctx) error {
	var in dto.ReplaceOverridesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ReplaceUserOverrides(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"), in.Overrides)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ResetOverrides godoc
// @Summary      Borrar todos los overrides de un usuario
// @Tags         modules
// @Param        companyId  path  string  true  "ID de la empresa"
// @Param        userId     path  string  true  "ID del usuario"
// @Success      204
// @Router       /api/companies/{companyId}/users/{userId}/module-overrides [delete]
func (h *ModuleAccessHandler) ResetOverrides(c *fiber.Ctx) error {
	if err := h.uc.ResetUserOverrides(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UserModules godoc
// @Summary      Vista del editor: cada módulo con fromRole, enabled y state
// @Tags         modules
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Param        userId     path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserModulesResponse
// @Router       /api/companies/{companyId}/users/{userId}/modules [get]
func (h *ModuleAccessHandler) UserModules(c *fiber.Ctx) error {
	out, err := h.uc.UserModuleView(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ResolvedModules godoc
// @Summary      Módulos visibles de un usuario
// @Tags         modules
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Param        userId     path  string  true  "ID del usuario"
// @Success      200  {object}  dto.ResolvedModulesResponse
// @Router       /api/companies/{companyId}/users/{userId}/resolved-modules [get]
func (h *ModuleAccessHandler) ResolvedModules(c *fiber.Ctx) error {
	out, err := h.uc.ResolveUserModules(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Toggle godoc
// @Summary      Habilitar o deshabilitar un módulo para un usuario
// @Tags         modules
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                   true  "ID de la empresa"
// @Param        userId     path  string                   true  "ID del usuario"
// @Param        moduleId   path  string                   true  "ID del módulo"
// @Param        body       body  dto.ToggleModuleRequest  true  "enabled"
// @Success      200  {object}  dto.ToggleModuleResponse
// @Router       /api/companies/{companyId}/users/{userId}/modules/{moduleId}/toggle [post]
func (h *ModuleAccessHandler) Toggle(c *fiber.Ctx) error {
	var in dto.ToggleModuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Enabled == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "enabled es requerido", Field: "enabled"})
	}
	out, err := h.uc.ToggleUserModule(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"), c.Params("moduleId"), *in.Enabled)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
