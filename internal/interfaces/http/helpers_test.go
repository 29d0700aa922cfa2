package http_test

import (
	"testing"

	pkgjwt "github.com/jhoicas/Produccion-api/pkg/jwt"
)

const testJWTSecret = secretoRBAC

// tokenForRole genera el header Authorization con un JWT del rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return "Bearer " + firmar(t, pkgjwt.Identity{UserID: "u-test", Name: "Operador de prueba", Role: role})
}
