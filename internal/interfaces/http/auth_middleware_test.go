package http_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
	apphttp "github.com/marianoberton/marketpaper-demo-sub001/internal/interfaces/http"
	pkgjwt "github.com/marianoberton/marketpaper-demo-sub001/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "marketpaper-test"
	testTTL       = time.Hour
)

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Issue(testJWTSecret, pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: role}, testIssuer, testTTL)
	require.NoError(t, err)
	return "Bearer " + tok
}

// teamApp replica el grupo /companies/:companyId del router: auth + RequireTeam, y devuelve el actor.
func teamApp() *fiber.App {
	app := fiber.New()
	app.Get("/companies/:companyId/whoami",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireTeam(),
		func(c *fiber.Ctx) error {
			a := apphttp.Actor(c)
			return c.JSON(fiber.Map{"user_id": a.UserID, "company_id": a.CompanyID, "role": string(a.Role)})
		},
	)
	return app
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var e struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &e), body)
	return e.Code
}

func TestRequireTeam_CadaRolDelEquipoPasaYElPortalNo(t *testing.T) {
	app := teamApp()
	for _, role := range entity.Roles() {
		t.Run(string(role), func(t *testing.T) {
			status, body := get(t, app, "/companies/"+testCompanyID+"/whoami", tokenForRole(t, string(role)))
			if role.IsPortal() {
				assert.Equal(t, http.StatusForbidden, status)
				assert.Equal(t, "FORBIDDEN", errorCode(t, body))
				return
			}
			assert.Equal(t, http.StatusOK, status)
		})
	}
}

func TestRequireTeam_RolDesconocidoEsForbidden(t *testing.T) {
	status, body := get(t, teamApp(), "/companies/"+testCompanyID+"/whoami", tokenForRole(t, "superadmin"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
}

func TestRequireTeam_TokenSinRolEs401(t *testing.T) {
	status, body := get(t, teamApp(), "/companies/"+testCompanyID+"/whoami", tokenForRole(t, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", errorCode(t, body))
}

func TestActor_ClaimsDelTokenConRolNormalizado(t *testing.T) {
	status, body := get(t, teamApp(), "/companies/"+testCompanyID+"/whoami", tokenForRole(t, "Manager"))
	require.Equal(t, http.StatusOK, status, body)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, map[string]string{
		"user_id":    testUserID,
		"company_id": testCompanyID,
		"role":       string(entity.RoleManager),
	}, got)
}

func TestRequireRole_SoloLosRolesListados(t *testing.T) {
	app := fiber.New()
	app.Get("/x", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole("OWNER", "admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	cases := map[entity.Role]int{
		entity.RoleOwner:    http.StatusNoContent,
		entity.RoleAdmin:    http.StatusNoContent,
		entity.RoleManager:  http.StatusForbidden,
		entity.RoleEmployee: http.StatusForbidden,
		entity.RoleViewer:   http.StatusForbidden,
	}
	for role, want := range cases {
		status, _ := get(t, app, "/x", tokenForRole(t, string(role)))
		assert.Equal(t, want, status, "rol %s", role)
	}
}

func TestAuthMiddleware_HeaderAusenteOMalFormado(t *testing.T) {
	expired, err := pkgjwt.Issue(testJWTSecret, pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: "owner"}, testIssuer, -time.Minute)
	require.NoError(t, err)
	foreign, err := pkgjwt.Issue("otro-secret", pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: "owner"}, testIssuer, testTTL)
	require.NoError(t, err)

	cases := []struct {
		name string
		auth string
		code string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"token basura", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"vencido", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secret", "Bearer " + foreign, "INVALID_TOKEN"},
	}
	app := teamApp()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, "/companies/"+testCompanyID+"/whoami", tc.auth)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
}

func TestAuthMiddleware_EsquemaBearerSinDistinguirMayusculas(t *testing.T) {
	tok := tokenForRole(t, "employee")
	status, _ := get(t, teamApp(), "/companies/"+testCompanyID+"/whoami", "bearer "+tok[len("Bearer "):])
	assert.Equal(t, http.StatusOK, status)
}
