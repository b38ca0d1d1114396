package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostCalculator(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name                     string
		stock, cost, qty, unitIn string
		want                     string
	}{
		{"promedio", "10", "2", "10", "4", "3"},
		{"sin stock previo", "0", "0", "5", "7.5", "7.5"},
		{"entrada sin costo", "10", "3", "10", "0", "1.5"},
		{"fraccion", "3", "1", "1", "2", "1.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CostCalculator(d(tt.stock), d(tt.cost), d(tt.qty), d(tt.unitIn))
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}
