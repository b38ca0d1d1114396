package ports

import "github.com/shopspring/decimal"

// Metrics puerto de salida para métricas de negocio del punto de venta.
type Metrics interface {
	SaleCompleted(currency string, isCredit bool, total decimal.Decimal)
	SaleFailed(code string)
	ReturnProcessed(currency string, refund decimal.Decimal)
	StockMovement(movementType string)
	CashSessionClosed(differenceUSD, differenceBs decimal.Decimal)
}

// NopMetrics implementación vacía (tests y arranque sin Prometheus).
type NopMetrics struct{}

func (NopMetrics) SaleCompleted(string, bool, decimal.Decimal) {}
func (NopMetrics) SaleFailed(string) {}
func (NopMetrics) ReturnProcessed(string, decimal.Decimal) {}
func (NopMetrics) StockMovement(string) {}
func (NopMetrics) CashSessionClosed(decimal.Decimal, decimal.Decimal) {}
