package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/marianoberton/marketpaper-demo-sub001/internal/interfaces/http"
)

// stubChecker responde según el mapa módulo→habilitado; err simula la DB caída.
type stubChecker struct {
	enabled map[string]bool
	err     error
	gotUser string
}

func (s *stubChecker) HasModule(_ context.Context, _, userID, moduleID string) (bool, error) {
	s.gotUser = userID
	if s.err != nil {
		return false, s.err
	}
	return s.enabled[moduleID], nil
}

func moduleApp(checker *stubChecker) *fiber.App {
	app := fiber.New()
	app.Get("/crm",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireModule("crm", checker),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	app.Get("/check/:moduleId",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireModuleParam("moduleId", checker),
		func(c *fiber.Ctx) error { return c.SendString("ok") },
	)
	return app
}

func get(t *testing.T, app *fiber.App, path, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequireModule_HabilitadoPasa(t *testing.T) {
	checker := &stubChecker{enabled: map[string]bool{"crm": true}}
	status, _ := get(t, moduleApp(checker), "/crm", tokenForRole(t, "employee"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, testUserID, checker.gotUser, "la decisión es por usuario, no solo por empresa")
}

func TestRequireModule_DeshabilitadoDevuelve403(t *testing.T) {
	status, body := get(t, moduleApp(&stubChecker{}), "/crm", tokenForRole(t, "employee"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, "MODULE_DISABLED")
}

func TestRequireModule_FalloDeInfraestructuraDevuelve503(t *testing.T) {
	status, body := get(t, moduleApp(&stubChecker{err: errors.New("timeout")}), "/crm", tokenForRole(t, "employee"))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "MODULE_CHECK_FAILED")
}

func TestRequireModuleParam_TomaElIDDeLaRuta(t *testing.T) {
	checker := &stubChecker{enabled: map[string]bool{"cases": true}}
	app := moduleApp(checker)

	status, _ := get(t, app, "/check/cases", tokenForRole(t, "viewer"))
	assert.Equal(t, http.StatusOK, status)

	status, _ = get(t, app, "/check/finance", tokenForRole(t, "viewer"))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRequireModule_SinTokenDevuelve401(t *testing.T) {
	status, _ := get(t, moduleApp(&stubChecker{}), "/crm", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
