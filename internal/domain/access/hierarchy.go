// Package access contiene la lógica pura de acceso a módulos: jerarquía de roles y resolución
// de módulos visibles (servicios de dominio sin estado ni dependencias de infraestructura).
package access

import "github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"

// AssignableRoles devuelve los roles que actor puede asignar o invitar, en orden descendente.
// Es el sufijo estricto por debajo del actor; el rol superior incluye además su propio rol.
// Un rol desconocido no puede asignar nada.
func AssignableRoles(actor entity.Role) []entity.Role {
	rank := actor.Rank()
	if rank < 0 {
		return []entity.Role{}
	}
	all := entity.Roles()
	if rank == 0 {
		return all
	}
	return all[rank+1:]
}

// ManageableRoles devuelve los roles de los usuarios que actor puede administrar.
// Hoy coincide con AssignableRoles; se mantienen separadas porque son contratos distintos.
func ManageableRoles(actor entity.Role) []entity.Role {
	return AssignableRoles(actor)
}

// CanManage informa si actor puede administrar a un usuario con rol target.
func CanManage(actor, target entity.Role) bool {
	return containsRole(ManageableRoles(actor), target)
}

// CanAssign informa si actor puede asignar (o invitar con) el rol target.
func CanAssign(actor, target entity.Role) bool {
	return containsRole(AssignableRoles(actor), target)
}

// TeamInvitableRoles son los roles válidos para una invitación de equipo: asignables y no portal.
func TeamInvitableRoles(actor entity.Role) []entity.Role {
	assignable := AssignableRoles(actor)
	out := make([]entity.Role, 0, len(assignable))
	for _, r := range assignable {
		if !r.IsPortal() {
			out = append(out, r)
		}
	}
	return out
}

// ClientInvitableRoles es exactamente el rol portal, si el actor puede asignarlo.
func ClientInvitableRoles(actor entity.Role) []entity.Role {
	if CanAssign(actor, entity.PortalRole) {
		return []entity.Role{entity.PortalRole}
	}
	return []entity.Role{}
}

// AtLeast informa si actor tiene igual o mayor jerarquía que minRole.
func AtLeast(actor, minRole entity.Role) bool {
	ra, rm := actor.Rank(), minRole.Rank()
	return ra >= 0 && rm >= 0 && ra <= rm
}

func containsRole(roles []entity.Role, r entity.Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
