// Package metrics exporta métricas de negocio del punto de venta a Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/ports"
)

const namespace = "ferreteria"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementa ports.Metrics con un registry propio (sin colisiones con el global).
// Seguro para uso concurrente.
type Prometheus struct {
	registry *prometheus.Registry

	salesTotal     *prometheus.CounterVec
	salesAmount    *prometheus.CounterVec
	saleFailures   *prometheus.CounterVec
	returnsTotal   *prometheus.CounterVec
	refundsAmount  *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
	cashDifference *prometheus.GaugeVec
	sessionsClosed prometheus.Counter
}

// NewPrometheus registra las métricas y los collectors de proceso y runtime.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		salesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Ventas confirmadas por moneda y modalidad.",
		}, []string{"currency", "credit"}),
		salesAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Monto vendido acumulado por moneda.",
		}, []string{"currency"}),
		saleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_failures_total",
			Help:      "Ventas rechazadas por código de error.",
		}, []string{"code"}),
		returnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "Devoluciones procesadas por moneda del reintegro.",
		}, []string{"currency"}),
		refundsAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_amount_total",
			Help:      "Monto reintegrado acumulado por moneda.",
		}, []string{"currency"}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Líneas de kardex registradas por tipo de movimiento.",
		}, []string{"type"}),
		cashDifference: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cash_last_difference",
			Help:      "Diferencia (reportado - esperado) del último arqueo por moneda.",
		}, []string{"currency"}),
		sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cash_sessions_closed_total",
			Help:      "Sesiones de caja cerradas.",
		}),
	}
	p.registry.MustRegister(
		p.salesTotal, p.salesAmount, p.saleFailures, p.returnsTotal, p.refundsAmount,
		p.stockMovements, p.cashDifference, p.sessionsClosed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry expone el registry (tests y collectors adicionales).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler endpoint HTTP en formato de exposición de Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) SaleCompleted(currency string, isCredit bool, total decimal.Decimal) {
	p.salesTotal.WithLabelValues(currency, strconv.FormatBool(isCredit)).Inc()
	p.salesAmount.WithLabelValues(currency).Add(total.InexactFloat64())
}

func (p *Prometheus) SaleFailed(code string) {
	p.saleFailures.WithLabelValues(code).Inc()
}

func (p *Prometheus) ReturnProcessed(currency string, refund decimal.Decimal) {
	p.returnsTotal.WithLabelValues(currency).Inc()
	if refund.IsPositive() {
		p.refundsAmount.WithLabelValues(currency).Add(refund.InexactFloat64())
	}
}

func (p *Prometheus) StockMovement(movementType string) {
	p.stockMovements.WithLabelValues(movementType).Inc()
}

func (p *Prometheus) CashSessionClosed(differenceUSD, differenceBs decimal.Decimal) {
	p.sessionsClosed.Inc()
	p.cashDifference.WithLabelValues("USD").Set(differenceUSD.InexactFloat64())
	p.cashDifference.WithLabelValues("VES").Set(differenceBs.InexactFloat64())
}
