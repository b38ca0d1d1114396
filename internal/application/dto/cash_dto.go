package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenCashSessionRequest body para POST /api/cash/sessions.
type OpenCashSessionRequest struct {
	InitialCashUSD decimal.Decimal `json:"initial_cash_usd"`
	InitialCashBs  decimal.Decimal `json:"initial_cash_bs"`
}

// CashMovementRequest body para POST /api/cash/movements.
type CashMovementRequest struct {
	Type        string          `json:"type" validate:"required,oneof=DEPOSIT EXPENSE WITHDRAWAL"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" validate:"required,oneof=USD VES"`
	Description string          `json:"description" validate:"max=255"`
}

// CloseCashSessionRequest body para POST /api/cash/sessions/close.
type CloseCashSessionRequest struct {
	ReportedUSD decimal.Decimal `json:"reported_usd"`
	ReportedBs  decimal.Decimal `json:"reported_bs"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// CurrencyAmounts par de montos USD / Bs.
type CurrencyAmounts struct {
	USD decimal.Decimal `json:"usd"`
	Bs  decimal.Decimal `json:"bs"`
}

// CashSessionResponse sesión de caja.
type CashSessionResponse struct {
	ID          string          `json:"id"`
	OpenedBy    string          `json:"opened_by"`
	ClosedBy    string          `json:"closed_by,omitempty"`
	Status      string          `json:"status"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	InitialCash CurrencyAmounts `json:"initial_cash"`
	Reported    CurrencyAmounts `json:"reported"`
	Expected    CurrencyAmounts `json:"expected"`
	Difference  CurrencyAmounts `json:"difference"`
	Notes       string          `json:"notes,omitempty"`
}

// CashMovementResponse movimiento manual de caja.
type CashMovementResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	ReferenceID string          `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentTotalResponse cobrado por método y moneda.
type PaymentTotalResponse struct {
	Method   string          `json:"method"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	IsCash   bool            `json:"is_cash"`
}

// CashBalanceResponse arqueo: expected = inicial + ventas en efectivo + depósitos - gastos - retiros.
type CashBalanceResponse struct {
	SessionID     string                 `json:"session_id"`
	InitialCash   CurrencyAmounts        `json:"initial_cash"`
	SalesByMethod []PaymentTotalResponse `json:"sales_by_method"`
	CashSales     CurrencyAmounts        `json:"cash_sales"`
	Deposits      CurrencyAmounts        `json:"deposits"`
	Expenses      CurrencyAmounts        `json:"expenses"`
	Withdrawals   CurrencyAmounts        `json:"withdrawals"`
	Expected      CurrencyAmounts        `json:"expected"`
}

// ClosingReportResponse resultado del cierre de caja.
type ClosingReportResponse struct {
	Session    CashSessionResponse `json:"session"`
	Balance    CashBalanceResponse `json:"balance"`
	Reported   CurrencyAmounts     `json:"reported"`
	Difference CurrencyAmounts     `json:"difference"`
}
