package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secreto = "secreto-de-planta"

func TestGenerateParse_ConservaIdentidad(t *testing.T) {
	in := Identity{UserID: "u-7", Name: "Bodeguera Turno B", Role: "bodeguero"}
	tok, err := Generate(secreto, in, "produccion-api", 60)
	require.NoError(t, err)

	out, err := Parse(secreto, tok)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParse_RechazaTokensNoConfiables(t *testing.T) {
	casos := map[string]struct {
		id     Identity
		exp    int
		secret string
	}{
		"expirado":      {id: Identity{UserID: "u-1", Role: "admin"}, exp: -1, secret: secreto},
		"firma de otro": {id: Identity{UserID: "u-1", Role: "admin"}, exp: 60, secret: "otro-secreto"},
		"sin user_id":   {id: Identity{Role: "admin"}, exp: 60, secret: secreto},
	}
	for nombre, c := range casos {
		t.Run(nombre, func(t *testing.T) {
			tok, err := Generate(secreto, c.id, "produccion-api", c.exp)
			require.NoError(t, err)
			_, err = Parse(c.secret, tok)
			assert.Error(t, err)
		})
	}
}
