package dto

import "time"

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	ClientID  *string   `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ChangeRoleRequest cambio de rol de un miembro del equipo.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ChangeStatusRequest cambio de estado (active, inactive, suspended).
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}
