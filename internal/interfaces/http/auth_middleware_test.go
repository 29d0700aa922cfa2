package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Produccion-api/pkg/jwt"
)

const secretoRBAC = "secreto-rbac-planta"

// appConRoles expone /op protegida por JWT y por los roles indicados; responde con el actor resuelto.
func appConRoles(roles ...string) *fiber.App {
	app := fiber.New()
	app.Post("/op",
		apphttp.AuthMiddleware(secretoRBAC),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error { return c.JSON(apphttp.GetActor(c)) },
	)
	return app
}

func firmar(t *testing.T, id pkgjwt.Identity) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secretoRBAC, id, "produccion-api", 30)
	require.NoError(t, err)
	return tok
}

func llamar(t *testing.T, app *fiber.App, authorization string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/op", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

// Matriz de las rutas de planta: quién entra y quién no.
func TestRequireRole_MatrizDePlanta(t *testing.T) {
	casos := []struct {
		ruta   string
		roles  []string
		rol    string
		estado int
	}{
		{"revisión QC", []string{entity.RoleAdmin}, entity.RoleAdmin, http.StatusOK},
		{"revisión QC", []string{entity.RoleAdmin}, entity.RoleInspector, http.StatusForbidden},
		{"envío QC", []string{entity.RoleAdmin, entity.RoleInspector}, entity.RoleInspector, http.StatusOK},
		{"envío QC", []string{entity.RoleAdmin, entity.RoleInspector}, entity.RoleStorekeeper, http.StatusForbidden},
		{"recepción OC", []string{entity.RoleAdmin, entity.RoleStorekeeper, entity.RoleInspector}, entity.RoleStorekeeper, http.StatusOK},
		{"recepción OC", []string{entity.RoleAdmin, entity.RoleStorekeeper, entity.RoleInspector}, entity.RoleVendor, http.StatusForbidden},
		{"avance de etapa", []string{entity.RoleAdmin, entity.RoleSupervisor, entity.RoleVendor}, entity.RoleVendor, http.StatusOK},
	}
	for _, c := range casos {
		t.Run(c.ruta+"/"+c.rol, func(t *testing.T) {
			tok := firmar(t, pkgjwt.Identity{UserID: "u-1", Name: "Operador", Role: c.rol})
			estado, body := llamar(t, appConRoles(c.roles...), "Bearer "+tok)
			assert.Equal(t, c.estado, estado)
			if c.estado == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body.Code)
				assert.Contains(t, body.Message, c.rol)
			}
		})
	}
}

// Cabeceras y tokens que nunca llegan al handler, con el código que ve el cliente.
func TestAuthMiddleware_CodigosDeRechazo(t *testing.T) {
	app := appConRoles(entity.RoleAdmin)
	sinRol := firmar(t, pkgjwt.Identity{UserID: "u-9", Name: "Legacy"})

	casos := map[string]struct {
		header string
		estado int
		codigo string
	}{
		"sin cabecera":   {"", http.StatusUnauthorized, "MISSING_TOKEN"},
		"esquema basic":  {"Basic dXNlcjpwYXNz", http.StatusUnauthorized, "INVALID_TOKEN"},
		"token corrupto": {"Bearer a.b.c", http.StatusUnauthorized, "INVALID_TOKEN"},
		"token sin rol":  {"Bearer " + sinRol, http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for nombre, c := range casos {
		t.Run(nombre, func(t *testing.T) {
			estado, body := llamar(t, app, c.header)
			assert.Equal(t, c.estado, estado)
			assert.Equal(t, c.codigo, body.Code)
		})
	}
}

func TestAuthMiddleware_ActorDesdeClaims(t *testing.T) {
	tok := firmar(t, pkgjwt.Identity{UserID: "u-42", Name: "Inspectora Línea 2", Role: entity.RoleInspector})

	req := httptest.NewRequest(http.MethodPost, "/op", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	resp, err := appConRoles(entity.RoleInspector).Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "el esquema no distingue mayúsculas")

	var actor entity.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&actor))
	assert.Equal(t, entity.Actor{UserID: "u-42", Name: "Inspectora Línea 2", Role: entity.RoleInspector}, actor)
}
