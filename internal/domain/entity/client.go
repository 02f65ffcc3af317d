package entity

import "time"

// Client representa un cliente externo de la empresa (CRM).
// Este servicio solo lo lee para validar invitaciones al portal.
type Client struct {
	ID            string
	CompanyID     string
	Name          string
	TaxID         string // CUIT/NIT o documento
	Email         string
	PortalEnabled bool // el cliente puede tener usuarios en el portal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
