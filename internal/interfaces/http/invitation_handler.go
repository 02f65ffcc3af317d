package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/dto"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/application/invitation"
)

// InvitationHandler ciclo de vida de invitaciones (equipo y portal de clientes).
type InvitationHandler struct {
	uc *invitation.UseCase
}

// NewInvitationHandler construye el handler de invitaciones.
func NewInvitationHandler(uc *invitation.UseCase) *InvitationHandler {
	return &InvitationHandler{uc: uc}
}

// List godoc
// @Summary      Listar invitaciones (estado efectivo, expired derivado)
// @Tags         invitations
// @Produce      json
// @Param        companyId  path   string  true   "ID de la empresa"
// @Param        status     query  string  false  "pending | accepted | cancelled | expired"
// @Success      200  {object}  dto.InvitationListResponse
// @Router       /api/companies/{companyId}/invitations [get]
func (h *InvitationHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), Actor(c), c.Params("companyId"), c.Query("status"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Invitar a un miembro del equipo o a un usuario del portal
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                       true  "ID de la empresa"
// @Param        body       body  dto.CreateInvitationRequest  true  "email, target_role, client_id"
// @Success      201  {object}  dto.CreateInvitationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/invitations [post]
func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvitationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), Actor(c), c.Params("companyId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Cancelar una invitación pendiente
// @Tags         invitations
// @Produce      json
// @Param        companyId  path  string  true  "ID de la empresa"
// @Param        id         path  string  true  "ID de la invitación"
// @Success      200  {object}  dto.InvitationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/companies/{companyId}/invitations/{id} [delete]
func (h *InvitationHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), Actor(c), c.Params("companyId"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// BulkCancel godoc
// @Summary      Cancelar varias invitaciones (resultado por id)
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        companyId  path  string                 true  "ID de la empresa"
// @Param        body       body  dto.BulkCancelRequest  true  "ids"
// @Success      200  {object}  dto.BulkCancelResponse
// @Router       /api/companies/{companyId}/invitations/bulk-cancel [post]
func (h *InvitationHandler) BulkCancel(c *fiber.Ctx) error {
	var in dto.BulkCancelRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.BulkCancel(c.UserContext(), Actor(c), c.Params("companyId"), in.IDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Accept godoc
// @Summary      Aceptar una invitación (público)
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AcceptInvitationRequest  true  "token, name, password"
// @Success      201  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invitations/accept [post]
func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	var in dto.AcceptInvitationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Accept(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Preview godoc
// @Summary      Datos públicos de una invitación por token
// @Tags         invitations
// @Produce      json
// @Param        token  query  string  true  "token de la invitación"
// @Success      200  {object}  dto.InvitationPreviewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invitations/preview [get]
func (h *InvitationHandler) Preview(c *fiber.Ctx) error {
	out, err := h.uc.Preview(c.UserContext(), c.Query("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
