package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/usecase"
)

// MeHandler decisiones de acceso del propio llamador.
type MeHandler struct {
	modules *usecase.ModuleService
}

// NewMeHandler construye el handler.
func NewMeHandler(modules *usecase.ModuleService) *MeHandler {
	return &MeHandler{modules: modules}
}

// Modules godoc
// @Summary      Módulos visibles del llamador
// @Tags         me
// @Produce      json
// @Success      200  {object}  dto.ResolvedModulesResponse
// @Router       /api/me/modules [get]
func (h *MeHandler) Modules(c *fiber.Ctx) error {
	userID := GetUserID(c)
	ids, err := h.modules.Modules(c.UserContext(), GetCompanyID(c), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ResolvedModulesResponse{UserID: userID, Modules: ids})
}

// CheckModule responde 200 si el llamador ve el módulo; la decisión la toma RequireModuleParam.
// @Summary      Verificar acceso a un módulo
// @Tags         me
// @Produce      json
// @Param        moduleId  path  string  true  "ID del módulo"
// @Success      200
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/me/modules/{moduleId} [get]
func (h *MeHandler) CheckModule(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"module_id": c.Params("moduleId"), "enabled": true})
}
