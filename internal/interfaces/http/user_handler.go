package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/usecase"
)

// UserHandler administración de miembros según la jerarquía de roles.
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler de usuarios.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar miembros
// @Tags         users
// @Produce      json
// @Param        companyId  path   string  true   "ID de la empresa"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.UserListResponse
// @Router       /api/companies/{companyId}/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), Actor(c), c.Params("companyId"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener miembro
// @Tags         users
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Param        userId     path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/users/{userId} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeRole godoc
// @Summary      Cambiar rol
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                 true  "ID de la empresa"
// @Param        userId     path  string                 true  "ID del usuario"
// @Param        body       body  dto.ChangeRoleRequest  true  "role"
// @Success      200  {object}  dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/users/{userId}/role [patch]
func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var in dto.ChangeRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ChangeRole(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"), in.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado (active, inactive, suspended)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                   true  "ID de la empresa"
// @Param        userId     path  string                   true  "ID del usuario"
// @Param        body       body  dto.ChangeStatusRequest  true  "status"
// @Success      200  {object}  dto.UserResponse
// @Router       /api/companies/{companyId}/users/{userId}/status [patch]
func (h *UserHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ChangeStatus(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("userId"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Roles godoc
// @Summary      Roles que el llamador puede asignar, administrar e invitar
// @Tags         users
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.RolesResponse
// @Router       /api/companies/{companyId}/roles [get]
func (h *UserHandler) Roles(c *fiber.Ctx) error {
	out, err := h.uc.Roles(Actor(c), c.Params("companyId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
