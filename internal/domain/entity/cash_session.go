package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la sesión de caja.
const (
	CashSessionOpen   = "OPEN"
	CashSessionClosed = "CLOSED"
)

// Tipos de movimiento manual de caja.
const (
	CashMovementDeposit    = "DEPOSIT"
	CashMovementExpense    = "EXPENSE"
	CashMovementWithdrawal = "WITHDRAWAL"
)

// CashSession período entre la apertura y el cierre de la gaveta.
// Solo puede existir una sesión OPEN a la vez.
type CashSession struct {
	ID             string
	OpenedBy       string
	ClosedBy       string
	StartTime      time.Time
	EndTime        *time.Time
	InitialCashUSD decimal.Decimal
	InitialCashBs  decimal.Decimal
	Status         string

	FinalReportedUSD decimal.Decimal
	FinalReportedBs  decimal.Decimal
	FinalExpectedUSD decimal.Decimal
	FinalExpectedBs  decimal.Decimal
	DifferenceUSD    decimal.Decimal
	DifferenceBs     decimal.Decimal
	Notes            string
}

// IsOpen indica si la sesión sigue abierta.
func (s *CashSession) IsOpen() bool { return s.Status == CashSessionOpen }

// CashMovement entrada o salida manual de efectivo (incluye reintegros de devoluciones).
type CashMovement struct {
	ID          string
	SessionID   string
	Type        string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReferenceID string
	CreatedBy   string
	CreatedAt   time.Time
}

// MovementTotal suma de movimientos por tipo y moneda.
type MovementTotal struct {
	Type     string
	Currency string
	Amount   decimal.Decimal
}
