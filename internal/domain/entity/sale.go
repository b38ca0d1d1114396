package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de una venta confirmada. Inmutable salvo Paid (abonos de crédito).
type Sale struct {
	ID            string
	CashSessionID string // vacío en ventas a crédito registradas sin caja
	CustomerID    string
	UserID        string
	Currency      string          // moneda en la que se expresa TotalAmount
	ExchangeRate  decimal.Decimal // Bs por USD vigente en la venta
	Subtotal      decimal.Decimal // bruto antes de descuentos
	Discount      decimal.Decimal
	TotalAmount   decimal.Decimal
	IsCredit      bool
	Paid          bool
	CreatedAt     time.Time
}

// SaleDetail línea de venta. Quantity siempre en unidades base; UnitPrice es el precio
// neto (después de descuentos) por unidad base.
type SaleDetail struct {
	ID              string
	SaleID          string
	ProductID       string
	Quantity        decimal.Decimal
	DisplayQuantity decimal.Decimal // cantidad tal como se vendió (cajas o unidades)
	IsBox           bool
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal
}

// SalePayment un pago aplicado a la venta, en su moneda original.
type SalePayment struct {
	ID       string
	SaleID   string
	Method   string
	Amount   decimal.Decimal
	Currency string
}

// PaymentTotal total cobrado por método y moneda (proyección para el arqueo).
type PaymentTotal struct {
	Method   string
	Currency string
	Amount   decimal.Decimal
}
