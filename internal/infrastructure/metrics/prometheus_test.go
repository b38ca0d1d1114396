package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Contadores(t *testing.T) {
	p := NewPrometheus()

	p.SaleCompleted("USD", false, decimal.NewFromFloat(19.99))
	p.SaleCompleted("USD", false, decimal.NewFromInt(10))
	p.SaleCompleted("VES", true, decimal.NewFromInt(365))
	p.SaleFailed("INSUFFICIENT_STOCK")
	p.ReturnProcessed("USD", decimal.NewFromInt(6))
	p.ReturnProcessed("USD", decimal.Zero)
	p.StockMovement("SALE")
	p.CashSessionClosed(decimal.NewFromFloat(-0.5), decimal.NewFromInt(2))

	assert.Equal(t, 2.0, testutil.ToFloat64(p.salesTotal.WithLabelValues("USD", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.salesTotal.WithLabelValues("VES", "true")))
	assert.InDelta(t, 29.99, testutil.ToFloat64(p.salesAmount.WithLabelValues("USD")), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.saleFailures.WithLabelValues("INSUFFICIENT_STOCK")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.returnsTotal.WithLabelValues("USD")))
	assert.Equal(t, 6.0, testutil.ToFloat64(p.refundsAmount.WithLabelValues("USD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.stockMovements.WithLabelValues("SALE")))
	assert.Equal(t, -0.5, testutil.ToFloat64(p.cashDifference.WithLabelValues("USD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.sessionsClosed))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.StockMovement("RETURN")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ferreteria_stock_movements_total{type="RETURN"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
