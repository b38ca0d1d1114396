// Package inventory servicios de dominio del inventario.
package inventory

import "github.com/shopspring/decimal"

// CostCalculator costo promedio ponderado tras una entrada de mercancía:
// ((stock × costo) + (entrada × costoEntrada)) / (stock + entrada).
// Si el stock previo es negativo o cero, el costo pasa a ser el de la entrada.
func CostCalculator(stock, cost, qtyIn, unitCostIn decimal.Decimal) decimal.Decimal {
	if !stock.IsPositive() {
		return unitCostIn
	}
	total := stock.Add(qtyIn)
	if !total.IsPositive() {
		return cost
	}
	return stock.Mul(cost).Add(qtyIn.Mul(unitCostIn)).DivRound(total, 4)
}
