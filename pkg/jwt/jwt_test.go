package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_Cajero(t *testing.T) {
	tok, err := Generate("secreto-caja", "u-7", "cajero", "ferreteria-api", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto-caja", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-7", userID)
	assert.Equal(t, "cajero", role)
}

func TestParse_Rechaza(t *testing.T) {
	vigente, err := Generate("secreto-caja", "u-7", "admin", "ferreteria-api", 5)
	require.NoError(t, err)
	vencido, err := Generate("secreto-caja", "u-7", "admin", "ferreteria-api", -1)
	require.NoError(t, err)

	_, _, err = Parse("secreto-caja", vencido)
	assert.Error(t, err, "vencido")
	_, _, err = Parse("otro-secreto", vigente)
	assert.Error(t, err, "firma ajena")
	_, _, err = Parse("", vigente)
	assert.Error(t, err, "sin secreto")

	_, err = Generate("", "u-7", "admin", "ferreteria-api", 5)
	assert.Error(t, err)
}
