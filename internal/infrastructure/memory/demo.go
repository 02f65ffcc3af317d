package memory

import (
	"time"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// Ids fijos del dataset demo (APP_STORAGE=memory).
const (
	DemoCompanyID = "00000000-0000-4000-8000-000000000001"
	DemoOwnerID   = "00000000-0000-4000-8000-000000000002"
	DemoClientID  = "00000000-0000-4000-8000-000000000003"
)

// DemoCatalog es el catálogo que se carga en modo demo.
func DemoCatalog() []entity.Module {
	return []entity.Module{
		{ID: "crm", Name: "CRM", Category: "comercial", IsCore: true},
		{ID: "quotes", Name: "Cotizaciones", Category: "comercial"},
		{ID: "expenses", Name: "Gastos", Category: "finanzas"},
		{ID: "finance", Name: "Finanzas", Category: "finanzas"},
		{ID: "cases", Name: "Expedientes", Category: "legal"},
		{ID: "client-portal", Name: "Portal de clientes", Category: "portal"},
	}
}

// SeedDemo carga una empresa con su owner y un cliente habilitado para el portal.
// passwordHash es el bcrypt del owner (lo calcula quien llama).
func SeedDemo(s *Store, passwordHash string, now time.Time) {
	s.PutCompany(entity.Company{ID: DemoCompanyID, Name: "Demo SA", Status: "active", CreatedAt: now, UpdatedAt: now}, DemoCatalog()...)
	s.PutUser(entity.User{
		ID: DemoOwnerID, CompanyID: DemoCompanyID, Email: "owner@demo.local", PasswordHash: passwordHash,
		Name: "Owner Demo", Role: entity.RoleOwner, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	})
	s.PutClient(entity.Client{
		ID: DemoClientID, CompanyID: DemoCompanyID, Name: "Cliente Demo", Email: "cliente@demo.local",
		PortalEnabled: true, CreatedAt: now, UpdatedAt: now,
	})
}
