package dto

import "time"

// CreateInvitationRequest alta de invitación. ClientID es obligatorio solo para el rol del portal.
type CreateInvitationRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	TargetRole string  `json:"target_role" validate:"required"`
	ClientID   *string `json:"client_id,omitempty"`
}

// InvitationResponse invitación con su estado efectivo (expired derivado).
type InvitationResponse struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	Email       string     `json:"email"`
	TargetRole  string     `json:"target_role"`
	Status      string     `json:"status"`
	ClientID    *string    `json:"client_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// CreateInvitationResponse incluye el token plano: se entrega una sola vez.
type CreateInvitationResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	Token      string             `json:"token"`
	AcceptURL  string             `json:"accept_url"`
}

// InvitationListResponse listado paginado.
type InvitationListResponse struct {
	Items []InvitationResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// BulkCancelRequest ids a cancelar.
type BulkCancelRequest struct {
	IDs []string `json:"ids"`
}

// BulkCancelItem resultado por id.
type BulkCancelItem struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	State   string `json:"state,omitempty"`
}

// BulkCancelResponse resumen de la cancelación masiva.
type BulkCancelResponse struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkCancelItem `json:"results"`
}

// AcceptInvitationRequest aceptación pública con el token recibido por email.
type AcceptInvitationRequest struct {
	Token    string `json:"token" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Password string `json:"password" validate:"required,min=8"`
}

// InvitationPreviewResponse lo mínimo para mostrar la pantalla de aceptación.
type InvitationPreviewResponse struct {
	Email      string    `json:"email"`
	TargetRole string    `json:"target_role"`
	CompanyID  string    `json:"company_id"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
}
