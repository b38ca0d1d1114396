package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente de la ferretería. Balance es la deuda pendiente por ventas a crédito
// (en la moneda del catálogo).
type Customer struct {
	ID          string
	Name        string
	TaxID       string // cédula o RIF
	Phone       string
	Email       string
	CreditLimit decimal.Decimal // 0 = sin límite
	Balance     decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CustomerPayment abono de un cliente a su deuda.
type CustomerPayment struct {
	ID            string
	CustomerID    string
	Amount        decimal.Decimal // en Currency
	Currency      string
	ExchangeRate  decimal.Decimal
	AppliedAmount decimal.Decimal // monto descontado del balance (moneda del catálogo)
	Method        string
	CashSessionID string
	CreatedBy     string
	CreatedAt     time.Time
}
