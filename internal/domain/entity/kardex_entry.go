package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementPurchase      = "PURCHASE"       // compra / recepción de mercancía
	MovementSale          = "SALE"           // salida por venta
	MovementReturn        = "RETURN"         // entrada por devolución de cliente
	MovementAdjustmentIn  = "ADJUSTMENT_IN"  // ajuste positivo (conteo, stock inicial)
	MovementAdjustmentOut = "ADJUSTMENT_OUT" // ajuste negativo (merma, conteo)
)

// IsInbound indica si el tipo de movimiento suma stock.
func IsInbound(movementType string) bool {
	switch movementType {
	case MovementPurchase, MovementReturn, MovementAdjustmentIn:
		return true
	}
	return false
}

// IsOutbound indica si el tipo de movimiento resta stock.
func IsOutbound(movementType string) bool {
	return movementType == MovementSale || movementType == MovementAdjustmentOut
}

// KardexEntry es una línea inmutable del kardex. Quantity lleva signo
// (positivo entrada, negativo salida) y BalanceAfter es el stock resultante.
type KardexEntry struct {
	ID           string
	ProductID    string
	MovementType string
	Quantity     decimal.Decimal
	BalanceAfter decimal.Decimal
	UnitCost     decimal.Decimal
	Description  string
	ReferenceID  string // venta, devolución o documento que originó el movimiento
	CreatedBy    string
	CreatedAt    time.Time
}
