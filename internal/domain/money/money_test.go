package money

import (
	"errors"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	rate := decimal.NewFromInt(40)

	tests := []struct {
		name     string
		amount   string
		from, to string
		want     string
	}{
		{"misma moneda", "12.5", "USD", "USD", "12.5"},
		{"dólares a bolívares", "10", "USD", "VES", "400"},
		{"bolívares a dólares", "400", "VES", "USD", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(decimal.RequireFromString(tt.amount), tt.from, tt.to, rate)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestConvert_TasaInvalida(t *testing.T) {
	_, err := Convert(decimal.NewFromInt(10), "USD", "VES", decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = Convert(decimal.NewFromInt(10), "EUR", "USD", decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestWithinTolerance(t *testing.T) {
	total := decimal.RequireFromString("30.00")
	assert.True(t, WithinTolerance(total, decimal.RequireFromString("30.01")))
	assert.True(t, WithinTolerance(total, decimal.RequireFromString("29.99")))
	assert.False(t, WithinTolerance(total, decimal.RequireFromString("29.98")))
}
