package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	TaxID       string          `json:"tax_id" validate:"omitempty,max=20"`
	Email       string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string          `json:"phone,omitempty" validate:"omitempty,max=30"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	TaxID       string          `json:"tax_id,omitempty"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RegisterPaymentRequest abono de un cliente. ExchangeRate requerido si Currency es VES.
type RegisterPaymentRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" validate:"required,oneof=USD VES"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Method       string          `json:"method" validate:"required,max=30"`
}

// CustomerPaymentResponse abono registrado.
type CustomerPaymentResponse struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	Method        string          `json:"method"`
	CashSessionID string          `json:"cash_session_id,omitempty"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	SalesSettled  []string        `json:"sales_settled,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
