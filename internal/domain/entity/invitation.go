package entity

import "time"

// InvitationStatus es el estado de una invitación.
// InvitationExpired nunca se persiste: se deriva al leer (ver EffectiveStatus).
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
	InvitationExpired   InvitationStatus = "expired"
)

// Valid informa si el estado es uno de los conocidos.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationCancelled, InvitationExpired:
		return true
	}
	return false
}

// Invitation ofrece un rol (y opcionalmente un cliente) a un email.
// Solo se guarda el hash del token; el token plano se entrega una única vez al crearla.
type Invitation struct {
	ID          string
	CompanyID   string
	Email       string
	TargetRole  Role
	Status      InvitationStatus
	TokenHash   string
	ClientID    *string
	CreatedBy   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
	AcceptedBy  *string // id del usuario provisionado
	CancelledAt *time.Time
	CancelledBy *string
}

// EffectiveStatus devuelve el estado observable en now: una invitación pendiente vencida se reporta expired.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// IsClientInvitation informa si la invitación es para el portal de clientes.
func (i *Invitation) IsClientInvitation() bool {
	return i.TargetRole.IsPortal()
}
