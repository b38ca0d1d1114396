// Package money conversión entre USD y bolívares y redondeo de montos.
package money

import (
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Tolerance diferencia máxima aceptada al cuadrar pagos contra el total (un céntimo).
var Tolerance = decimal.New(1, -2)

// Convert convierte amount de la moneda from a la moneda to.
// rate es la tasa del día en bolívares por dólar y debe ser > 0 cuando las monedas difieren.
func Convert(amount decimal.Decimal, from, to string, rate decimal.Decimal) (decimal.Decimal, error) {
	if !entity.IsSupportedCurrency(from) || !entity.IsSupportedCurrency(to) {
		return decimal.Zero, fmt.Errorf("%w: moneda no soportada %s/%s", domain.ErrInvalidInput, from, to)
	}
	if from == to {
		return amount, nil
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: tasa de cambio debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if from == entity.CurrencyUSD {
		return amount.Mul(rate), nil
	}
	return amount.DivRound(rate, 8), nil
}

// Round2 redondea a dos decimales (persistencia y comparación de montos).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// WithinTolerance indica si a y b difieren como máximo en Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
