package entity

import "strings"

// Role es el rol de un usuario dentro de su empresa.
type Role string

// Roles válidos, de mayor a menor jerarquía.
const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleViewer   Role = "viewer" // portal de clientes (solo lectura)
)

// PortalRole es el rol reservado a usuarios del portal de clientes.
// Solo se asigna vía invitación de cliente y siempre va ligado a un client_id.
const PortalRole = RoleViewer

// roleOrder es la tabla de orden total usada por la jerarquía (índice 0 = rol superior).
var roleOrder = []Role{RoleOwner, RoleAdmin, RoleManager, RoleEmployee, RoleViewer}

// Roles devuelve todos los roles en orden descendente de jerarquía.
func Roles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// ParseRole normaliza y valida un rol recibido como texto.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid informa si el rol pertenece a la tabla de orden.
func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// Rank devuelve la posición del rol en la jerarquía (0 = superior) o -1 si no existe.
func (r Role) Rank() int {
	for i, candidate := range roleOrder {
		if candidate == r {
			return i
		}
	}
	return -1
}

// IsPortal informa si el rol es el del portal de clientes.
func (r Role) IsPortal() bool { return r == PortalRole }

func (r Role) String() string { return string(r) }
