package entity

import "time"

// Estados válidos para User.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// ValidUserStatus informa si el estado es uno de los admitidos.
func ValidUserStatus(s string) bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company).
// ClientID solo está presente para usuarios del portal (Role = PortalRole).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         Role
	Status       string // active, inactive, suspended
	ClientID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor es la identidad ya autenticada que ejecuta una operación (la aporta el proveedor de identidad).
type Actor struct {
	UserID    string
	CompanyID string
	Role      Role
}
