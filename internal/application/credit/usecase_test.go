package credit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/application/cash"
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

func setup(t *testing.T) (*UseCase, *cash.Manager, *memory.Store) {
	t.Helper()
	store := memory.New()
	m := cash.NewManager(store, store, []string{entity.PaymentCash}, ports.NopMetrics{}, logger.Nop())
	return NewUseCase(store, store, m, logger.Nop()), m, store
}

// creditSale registra una venta a crédito ya confirmada y suma su deuda al cliente.
func creditSale(t *testing.T, store *memory.Store, id, customerID, total string, at time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{
		ID:          id,
		CustomerID:  customerID,
		Currency:    entity.CurrencyUSD,
		TotalAmount: d(total),
		IsCredit:    true,
		CreatedAt:   at,
	}))
	c, err := store.Customers().GetByID(ctx, customerID)
	require.NoError(t, err)
	require.NoError(t, store.Customers().UpdateBalance(ctx, customerID, c.Balance.Add(d(total))))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := setup(t)

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: " Constructora Lara ", TaxID: "j-30111222-3", CreditLimit: d("500")})
	require.NoError(t, err)
	assert.Equal(t, "Constructora Lara", c.Name)
	assert.Equal(t, "J-30111222-3", c.TaxID)
	assert.True(t, c.Balance.IsZero())

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Otra", TaxID: "J-30111222-3"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "  "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "X", CreditLimit: d("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = uc.Get(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRegisterPayment_SaldaVentasMasAntiguas(t *testing.T) {
	ctx := context.Background()
	uc, m, store := setup(t)
	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Obra Norte"})
	require.NoError(t, err)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	creditSale(t, store, "v1", c.ID, "40", base)
	creditSale(t, store, "v2", c.ID, "60", base.Add(time.Hour))
	_, err = m.Open(ctx, "cajero", dto.OpenCashSessionRequest{})
	require.NoError(t, err)

	p, err := uc.RegisterPayment(ctx, c.ID, "cajero", dto.RegisterPaymentRequest{Amount: d("50"), Currency: entity.CurrencyUSD, Method: entity.PaymentCash})
	require.NoError(t, err)
	assert.True(t, p.BalanceAfter.Equal(d("50")))
	assert.Equal(t, []string{"v1"}, p.SalesSettled)
	assert.NotEmpty(t, p.CashSessionID)

	balance, err := m.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Deposits.USD.Equal(d("50")))

	// Abono en bolívares por transferencia: no entra a la gaveta.
	p, err = uc.RegisterPayment(ctx, c.ID, "cajero", dto.RegisterPaymentRequest{
		Amount: d("1825"), Currency: entity.CurrencyVES, ExchangeRate: d("36.50"), Method: entity.PaymentTransfer,
	})
	require.NoError(t, err)
	assert.True(t, p.AppliedAmount.Equal(d("50")))
	assert.True(t, p.BalanceAfter.IsZero())
	assert.Equal(t, []string{"v2"}, p.SalesSettled)
	assert.Empty(t, p.CashSessionID)

	unpaid, err := store.Sales().ListUnpaidCredit(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, unpaid)

	payments, err := uc.ListPayments(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRegisterPayment_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, _, store := setup(t)
	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Taller Pérez"})
	require.NoError(t, err)
	creditSale(t, store, "v1", c.ID, "20", time.Now())

	_, err = uc.RegisterPayment(ctx, c.ID, "u", dto.RegisterPaymentRequest{Amount: d("25"), Currency: entity.CurrencyUSD, Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "no se acepta abonar más de lo adeudado")
	_, err = uc.RegisterPayment(ctx, c.ID, "u", dto.RegisterPaymentRequest{Amount: d("0"), Currency: entity.CurrencyUSD, Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.RegisterPayment(ctx, c.ID, "u", dto.RegisterPaymentRequest{Amount: d("10"), Currency: entity.CurrencyVES, Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "VES sin tasa")
	_, err = uc.RegisterPayment(ctx, "no-existe", "u", dto.RegisterPaymentRequest{Amount: d("1"), Currency: entity.CurrencyUSD, Method: entity.PaymentCash})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := uc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(d("20")))
}
