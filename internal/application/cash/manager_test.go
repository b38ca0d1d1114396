package cash

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newManager() (*Manager, *memory.Store) {
	store := memory.New()
	return NewManager(store, store, []string{"cash", "PAGO_MOVIL"}, ports.NopMetrics{}, logger.Nop()), store
}

// sellInSession simula una venta ya confirmada con sus pagos.
func sellInSession(t *testing.T, store *memory.Store, sessionID string, payments ...entity.SalePayment) {
	t.Helper()
	ctx := context.Background()
	saleID := "venta-" + sessionID + "-" + payments[0].Method
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{ID: saleID, CashSessionID: sessionID, Currency: entity.CurrencyUSD}))
	for i := range payments {
		p := payments[i]
		p.SaleID = saleID
		require.NoError(t, store.Sales().CreatePayment(ctx, &p))
	}
}

func TestOpen_SegundaAperturaFalla(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()

	s, err := m.Open(ctx, "cajero-1", dto.OpenCashSessionRequest{InitialCashUSD: d("100"), InitialCashBs: d("500")})
	require.NoError(t, err)
	assert.Equal(t, entity.CashSessionOpen, s.Status)

	_, err = m.Open(ctx, "cajero-2", dto.OpenCashSessionRequest{})
	assert.True(t, errors.Is(err, domain.ErrSessionAlreadyOpen))

	_, err = m.Open(ctx, "cajero-2", dto.OpenCashSessionRequest{InitialCashUSD: d("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSinSesionAbierta(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()

	_, err := m.RecordMovement(ctx, "u", dto.CashMovementRequest{Type: entity.CashMovementExpense, Amount: d("1"), Currency: entity.CurrencyUSD})
	assert.True(t, errors.Is(err, domain.ErrNoOpenSession))
	_, err = m.Balance(ctx)
	assert.True(t, errors.Is(err, domain.ErrNoOpenSession))
	_, err = m.Close(ctx, "u", dto.CloseCashSessionRequest{})
	assert.True(t, errors.Is(err, domain.ErrNoOpenSession))
	_, err = m.Current(ctx)
	assert.True(t, errors.Is(err, domain.ErrNoOpenSession))
}

func TestRecordMovement_Validaciones(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()
	_, err := m.Open(ctx, "u", dto.OpenCashSessionRequest{})
	require.NoError(t, err)

	_, err = m.RecordMovement(ctx, "u", dto.CashMovementRequest{Type: "PROPINA", Amount: d("1"), Currency: entity.CurrencyUSD})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = m.RecordMovement(ctx, "u", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: d("0"), Currency: entity.CurrencyUSD})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = m.RecordMovement(ctx, "u", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: d("5"), Currency: "EUR"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestArqueoYCierre(t *testing.T) {
	ctx := context.Background()
	m, store := newManager()

	s, err := m.Open(ctx, "cajero-1", dto.OpenCashSessionRequest{InitialCashUSD: d("100")})
	require.NoError(t, err)

	sellInSession(t, store, s.ID, entity.SalePayment{ID: "p1", Method: entity.PaymentCash, Amount: d("30"), Currency: entity.CurrencyUSD})
	sellInSession(t, store, s.ID, entity.SalePayment{ID: "p2", Method: entity.PaymentCard, Amount: d("50"), Currency: entity.CurrencyUSD})
	_, err = m.RecordMovement(ctx, "cajero-1", dto.CashMovementRequest{Type: entity.CashMovementExpense, Amount: d("10"), Currency: entity.CurrencyUSD, Description: "Café"})
	require.NoError(t, err)

	b, err := m.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Expected.USD.Equal(d("120")), "expected %s", b.Expected.USD)
	assert.True(t, b.CashSales.USD.Equal(d("30")))
	assert.True(t, b.Expenses.USD.Equal(d("10")))
	require.Len(t, b.SalesByMethod, 2)
	assert.Equal(t, entity.PaymentCard, b.SalesByMethod[0].Method)
	assert.False(t, b.SalesByMethod[0].IsCash)

	report, err := m.Close(ctx, "cajero-1", dto.CloseCashSessionRequest{ReportedUSD: d("115"), Notes: "faltante"})
	require.NoError(t, err)
	assert.True(t, report.Difference.USD.Equal(d("-5")))
	assert.True(t, report.Difference.Bs.IsZero())
	assert.Equal(t, entity.CashSessionClosed, report.Session.Status)
	require.NotNil(t, report.Session.EndTime)

	// Cerrada la sesión se puede abrir otra
	_, err = m.Open(ctx, "cajero-2", dto.OpenCashSessionRequest{})
	require.NoError(t, err)
	sessions, err := m.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestArqueo_BolivaresYMetodosConfigurables(t *testing.T) {
	ctx := context.Background()
	m, store := newManager()

	s, err := m.Open(ctx, "u", dto.OpenCashSessionRequest{InitialCashBs: d("1000")})
	require.NoError(t, err)
	sellInSession(t, store, s.ID,
		entity.SalePayment{ID: "p1", Method: entity.PaymentMobile, Amount: d("400"), Currency: entity.CurrencyVES},
		entity.SalePayment{ID: "p2", Method: entity.PaymentCash, Amount: d("5"), Currency: entity.CurrencyUSD},
	)
	_, err = m.RecordMovement(ctx, "u", dto.CashMovementRequest{Type: entity.CashMovementWithdrawal, Amount: d("200"), Currency: entity.CurrencyVES})
	require.NoError(t, err)
	_, err = m.RecordMovement(ctx, "u", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: d("20"), Currency: entity.CurrencyUSD})
	require.NoError(t, err)

	b, err := m.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, b.Expected.Bs.Equal(d("1200")), "bs %s", b.Expected.Bs)
	assert.True(t, b.Expected.USD.Equal(d("25")), "usd %s", b.Expected.USD)

	movs, err := m.ListMovements(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}
