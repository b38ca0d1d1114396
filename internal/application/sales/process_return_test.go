package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sell arma el carrito y confirma una venta de contado en USD pagada exacta.
func (p *pos) sell(t *testing.T, productID, qty, pay string) *dto.SaleResponse {
	t.Helper()
	p.add(t, "caja-venta", productID, qty, false)
	sale, err := p.finalize.FinalizeSale(context.Background(), "caja-venta", "cajero-1", dto.CheckoutRequest{
		Currency: entity.CurrencyUSD,
		Payments: []dto.PaymentRequest{cashUSD(pay)},
	})
	require.NoError(t, err)
	return sale
}

func TestProcessReturn_DevolucionTotalRestauraStockYCaja(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Llave inglesa", Price: d("10"), Stock: d("10")})
	p.openCash(t, "100", "0")
	sale := p.sell(t, "a", "3", "30")

	ret, err := p.returns.ProcessReturn(ctx, sale.ID, "cajero-1", dto.ProcessReturnRequest{
		Items:  []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("3")}},
		Reason: "cliente se arrepintió",
	})
	require.NoError(t, err)
	assert.True(t, ret.TotalRefunded.Equal(d("30")))
	assert.True(t, ret.RefundAmount.Equal(d("30")))
	assert.Equal(t, entity.CurrencyUSD, ret.RefundCurrency)
	assert.False(t, ret.CreditApplied)

	assert.True(t, p.stock(t, "a").Equal(d("10")))
	v, err := p.ledger.Verify(ctx, "a")
	require.NoError(t, err)
	assert.True(t, v.Consistent)

	history, err := p.ledger.History(ctx, "a", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementReturn, history.Items[0].MovementType)
	assert.Equal(t, "Devolución de venta #"+sale.ID, history.Items[0].Description)

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("100")))

	got, err := p.query.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, got.Details[0].ReturnedQty.Equal(d("3")))
}

func TestProcessReturn_Validaciones(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Llave", Price: d("10"), Stock: d("10")})
	p.product(t, entity.Product{ID: "b", Name: "Destornillador", Price: d("4"), Stock: d("10")})
	p.openCash(t, "0", "0")
	sale := p.sell(t, "a", "2", "20")

	_, err := p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "b", Quantity: d("1")}}})
	assert.True(t, errors.Is(err, domain.ErrProductNotInSale))

	_, err = p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("3")}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidReturnQuantity))

	_, err = p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("0")}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	_, err = p.returns.ProcessReturn(ctx, "no-existe", "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("1")}}})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Parcial, luego el resto: la suma nunca supera lo vendido.
	_, err = p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("1")}}})
	require.NoError(t, err)
	_, err = p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("2")}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidReturnQuantity))

	voided, err := p.returns.VoidSale(ctx, sale.ID, "u", dto.VoidSaleRequest{Reason: "error de cobro"})
	require.NoError(t, err)
	assert.True(t, voided.TotalRefunded.Equal(d("10")))
	assert.Equal(t, "Anulación de venta: error de cobro", voided.Reason)

	_, err = p.returns.VoidSale(ctx, sale.ID, "u", dto.VoidSaleRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidReturnQuantity))

	rets, err := p.returns.ListReturns(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, rets, 2)
	assert.True(t, p.stock(t, "a").Equal(d("10")))
}

func TestProcessReturn_ReintegroEnBolivares(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Pintura", Price: d("20"), Stock: d("5")})
	p.openCash(t, "0", "1000")
	sale := p.sell(t, "a", "1", "20")

	ret, err := p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{
		Items:          []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("1")}},
		RefundCurrency: entity.CurrencyVES,
		ExchangeRate:   d("40"),
	})
	require.NoError(t, err)
	assert.True(t, ret.RefundAmount.Equal(d("800")))

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("20")))
	assert.True(t, balance.Expected.Bs.Equal(d("200")))
}

func TestProcessReturn_VentaACreditoRebajaDeuda(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Cabilla", Price: d("50"), Stock: d("10")})
	require.NoError(t, p.store.Customers().Create(ctx, &entity.Customer{ID: "cli-1", Name: "Obra Norte"}))
	p.add(t, "caja-1", "a", "2", false)
	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "u", dto.CheckoutRequest{CustomerID: "cli-1", Currency: entity.CurrencyUSD, IsCredit: true})
	require.NoError(t, err)

	ret, err := p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("1")}}})
	require.NoError(t, err)
	assert.True(t, ret.CreditApplied)
	assert.Empty(t, ret.CashSessionID)

	customer, err := p.store.Customers().GetByID(ctx, "cli-1")
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(d("50")))
}

func TestProcessReturn_CreditoConAbonoReintegraElAbono(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Llave inglesa", Price: d("10"), Stock: d("10")})
	require.NoError(t, p.store.Customers().Create(ctx, &entity.Customer{ID: "cli-1", Name: "Obra Sur"}))
	p.openCash(t, "100", "0")
	p.add(t, "caja-1", "a", "3", false)

	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "u", dto.CheckoutRequest{
		CustomerID: "cli-1",
		Currency:   entity.CurrencyUSD,
		IsCredit:   true,
		Payments:   []dto.PaymentRequest{cashUSD("20")},
	})
	require.NoError(t, err)
	customer, err := p.store.Customers().GetByID(ctx, "cli-1")
	require.NoError(t, err)
	require.True(t, customer.Balance.Equal(d("10")))

	// La primera unidad devuelta cancela lo que la venta dejó a deber; no sale dinero de la caja.
	first, err := p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("1")}}})
	require.NoError(t, err)
	assert.True(t, first.CreditApplied)
	assert.True(t, first.RefundAmount.IsZero())
	assert.Empty(t, first.CashSessionID)

	customer, err = p.store.Customers().GetByID(ctx, "cli-1")
	require.NoError(t, err)
	assert.True(t, customer.Balance.IsZero())
	stored, err := p.store.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)

	// El resto corresponde al abono y se reintegra en efectivo.
	rest, err := p.returns.ProcessReturn(ctx, sale.ID, "u", dto.ProcessReturnRequest{Items: []dto.ReturnItemRequest{{ProductID: "a", Quantity: d("2")}}})
	require.NoError(t, err)
	assert.False(t, rest.CreditApplied)
	assert.True(t, rest.RefundAmount.Equal(d("20")))
	assert.NotEmpty(t, rest.CashSessionID)

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("100")))
	assert.True(t, p.stock(t, "a").Equal(d("10")))
}

func TestProcessReturn_CreditoConAbonoDevolucionTotal(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Taladro", Price: d("30"), Stock: d("2")})
	require.NoError(t, p.store.Customers().Create(ctx, &entity.Customer{ID: "cli-1", Name: "Obra Este"}))
	p.openCash(t, "100", "0")
	p.add(t, "caja-1", "a", "1", false)

	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "u", dto.CheckoutRequest{
		CustomerID: "cli-1",
		Currency:   entity.CurrencyUSD,
		IsCredit:   true,
		Payments:   []dto.PaymentRequest{cashUSD("20")},
	})
	require.NoError(t, err)

	ret, err := p.returns.VoidSale(ctx, sale.ID, "u", dto.VoidSaleRequest{})
	require.NoError(t, err)
	assert.True(t, ret.CreditApplied)
	assert.True(t, ret.TotalRefunded.Equal(d("30")))
	assert.True(t, ret.RefundAmount.Equal(d("20")))

	customer, err := p.store.Customers().GetByID(ctx, "cli-1")
	require.NoError(t, err)
	assert.True(t, customer.Balance.IsZero())

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("100")))
}
