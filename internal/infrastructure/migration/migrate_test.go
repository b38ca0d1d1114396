package migration

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/ferreteria?sslmode=disable", driverURL("postgres://u:p@db:5432/ferreteria?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/ferreteria", driverURL("postgresql://u@db/ferreteria"))
	assert.Equal(t, "pgx5://ya/convertida", driverURL("pgx5://ya/convertida"))
}

func TestMigracionesEmbebidas(t *testing.T) {
	up, err := fs.Glob(files, "sql/*.up.sql")
	require.NoError(t, err)
	down, err := fs.Glob(files, "sql/*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, up)
	assert.Len(t, down, len(up), "cada migración tiene su reversa")
}
