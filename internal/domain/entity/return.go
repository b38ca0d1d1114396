package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Return devolución (parcial o total) de una venta.
// TotalRefunded está en la moneda de la venta; RefundAmount en RefundCurrency.
type Return struct {
	ID             string
	SaleID         string
	CashSessionID  string // vacío si no había caja abierta al devolver
	TotalRefunded  decimal.Decimal
	RefundAmount   decimal.Decimal
	RefundCurrency string
	ExchangeRate   decimal.Decimal
	Reason         string
	CreatedBy      string
	CreatedAt      time.Time
}

// ReturnDetail cantidad devuelta (unidades base) de una línea de venta.
type ReturnDetail struct {
	ID           string
	ReturnID     string
	SaleDetailID string
	ProductID    string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
}
