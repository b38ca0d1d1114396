package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCart_PrecioPorVolumenYCaja(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "tornillo", SKU: "TOR-14", Name: "Tornillo 1/4", Price: d("10"), Stock: d("100"), IsBox: true, ConversionFactor: d("12")})
	require.NoError(t, p.store.PriceRules().ReplaceForProduct(ctx, "tornillo", []*entity.PriceRule{
		{ID: "r1", ProductID: "tornillo", MinQuantity: d("5"), Price: d("9")},
		{ID: "r2", ProductID: "tornillo", MinQuantity: d("10"), Price: d("8")},
	}))

	resp := p.add(t, "caja-1", "TOR-14", "3", false)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Total.Equal(d("30")))

	// Misma línea: 3 + 4 = 7 unidades activa la regla de 5.
	resp = p.add(t, "caja-1", "tornillo", "4", false)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].UnitPrice.Equal(d("9")))
	assert.True(t, resp.Total.Equal(d("63")))

	resp = p.add(t, "caja-1", "tornillo", "1", true)
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Lines[1].BaseUnits.Equal(d("12")))
	assert.True(t, resp.Lines[1].UnitPrice.Equal(d("120")))

	// 7 + 12 comprometidas: 8 cajas más superan las 100 unidades.
	_, err := p.cart.AddToCart(ctx, "caja-1", dto.AddToCartRequest{Product: "tornillo", Quantity: d("7"), IsBox: true})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	_, err = p.cart.AddToCart(ctx, "caja-1", dto.AddToCartRequest{Product: "no-existe", Quantity: d("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = p.cart.AddToCart(ctx, "caja-1", dto.AddToCartRequest{Product: "tornillo", Quantity: d("0")})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestCart_DescuentoGlobalYEdicion(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Martillo", Price: d("10"), Stock: d("10")})
	p.product(t, entity.Product{ID: "b", Name: "Alicate", Price: d("20"), Stock: d("10")})
	p.add(t, "caja-1", "a", "1", false)
	p.add(t, "caja-1", "b", "1", false)

	resp, err := p.cart.ApplyDiscount(ctx, "caja-1", dto.ApplyDiscountRequest{Value: d("10"), Type: "PERCENT"})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(d("27")))

	resp, err = p.cart.UpdateCartLine(ctx, "caja-1", 0, d("2"))
	require.NoError(t, err)
	assert.True(t, resp.Lines[0].Gross.Equal(d("20")))

	resp, err = p.cart.RemoveCartLine(ctx, "caja-1", 1)
	require.NoError(t, err)
	assert.Len(t, resp.Lines, 1)

	_, err = p.cart.RemoveCartLine(ctx, "caja-1", 5)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = p.cart.UpdateCartLine(ctx, "otra-caja", 0, d("1"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, p.cart.ClearCart(ctx, "caja-1"))
	resp, err = p.cart.GetCart(ctx, "caja-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
}

func TestFinalizeSale_Contado(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "tornillo", Name: "Tornillo", Price: d("0.50"), Stock: d("20"), IsBox: true, ConversionFactor: d("12")})
	p.openCash(t, "100", "0")
	p.add(t, "caja-1", "tornillo", "1", true)

	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
		Currency: entity.CurrencyUSD,
		Payments: []dto.PaymentRequest{cashUSD("6")},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(d("6")))
	assert.True(t, sale.Paid)
	assert.NotEmpty(t, sale.CashSessionID)
	require.Len(t, sale.Details, 1)
	assert.True(t, sale.Details[0].Quantity.Equal(d("12")))
	assert.True(t, sale.Details[0].DisplayQuantity.Equal(d("1")))

	assert.True(t, p.stock(t, "tornillo").Equal(d("8")))
	history, err := p.ledger.History(ctx, "tornillo", 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, history.Items)
	assert.Equal(t, entity.MovementSale, history.Items[0].MovementType)
	assert.Equal(t, "Venta #"+sale.ID, history.Items[0].Description)

	c, err := p.carts.Get(ctx, "caja-1")
	require.NoError(t, err)
	assert.Nil(t, c, "el carrito se limpia al confirmar")

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("106")))
}

func TestFinalizeSale_ContadoSinPagosRegistraEfectivo(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Martillo", Price: d("30"), Stock: d("5")})
	p.openCash(t, "100", "0")
	p.add(t, "caja-1", "a", "1", false)

	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{Currency: entity.CurrencyUSD})
	require.NoError(t, err)
	assert.True(t, sale.Paid)
	require.Len(t, sale.Payments, 1)
	assert.Equal(t, entity.PaymentCash, sale.Payments[0].Method)
	assert.True(t, sale.Payments[0].Amount.Equal(d("30")))
	assert.Equal(t, entity.CurrencyUSD, sale.Payments[0].Currency)

	stored, err := p.store.Sales().GetPayments(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("130")))
}

func TestFinalizeSale_DobleConfirmacionDelMismoCarrito(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Candado", Price: d("5"), Stock: d("50")})
	p.openCash(t, "0", "0")
	p.add(t, "caja-1", "a", "1", false)

	const attempts = 6
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
				Currency: entity.CurrencyUSD,
				Payments: []dto.PaymentRequest{cashUSD("5")},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	list, err := p.store.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.True(t, p.stock(t, "a").Equal(d("49")))
}

func TestFinalizeSale_PagoNoCuadraNoEscribeNada(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Martillo", Price: d("10"), Stock: d("5")})
	p.openCash(t, "0", "0")
	p.add(t, "caja-1", "a", "2", false)

	_, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
		Currency: entity.CurrencyUSD,
		Payments: []dto.PaymentRequest{cashUSD("19.98")},
	})
	assert.True(t, errors.Is(err, domain.ErrPaymentMismatch))
	assert.True(t, p.stock(t, "a").Equal(d("5")))

	c, err := p.carts.Get(ctx, "caja-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Lines, 1)

	list, err := p.store.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// Dentro de la tolerancia de un céntimo.
	_, err = p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
		Currency: entity.CurrencyUSD,
		Payments: []dto.PaymentRequest{cashUSD("19.99")},
	})
	require.NoError(t, err)
}

func TestFinalizeSale_SinCajaAbierta(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Martillo", Price: d("10"), Stock: d("5")})
	p.add(t, "caja-1", "a", "1", false)

	_, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
		Currency: entity.CurrencyUSD,
		Payments: []dto.PaymentRequest{cashUSD("10")},
	})
	assert.True(t, errors.Is(err, domain.ErrNoOpenSession))

	_, err = p.finalize.FinalizeSale(ctx, "vacio", "cajero-1", dto.CheckoutRequest{Currency: entity.CurrencyUSD})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFinalizeSale_EnBolivaresPagoMixto(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Cemento", Price: d("10"), Stock: d("5")})
	p.openCash(t, "0", "0")
	p.add(t, "caja-1", "a", "1", false)

	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
		Currency:     entity.CurrencyVES,
		ExchangeRate: d("36.50"),
		Payments: []dto.PaymentRequest{
			cashUSD("5"),
			{Method: entity.PaymentMobile, Amount: d("182.50"), Currency: entity.CurrencyVES},
		},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(d("365")))
	assert.Len(t, sale.Payments, 2)

	balance, err := p.cash.Balance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Expected.USD.Equal(d("5")))
	assert.True(t, balance.Expected.Bs.IsZero(), "PAGO_MOVIL no entra a la gaveta")
}

func TestFinalizeSale_Credito(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Cabilla", Price: d("50"), Stock: d("10")})
	require.NoError(t, p.store.Customers().Create(ctx, &entity.Customer{ID: "cli-1", Name: "Constructora Lara", CreditLimit: d("120")}))

	p.add(t, "caja-1", "a", "2", false)
	_, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{Currency: entity.CurrencyUSD, IsCredit: true})
	assert.True(t, errors.Is(err, domain.ErrMissingCustomer))

	// Sin caja abierta la venta a crédito igual se registra; abona 20 y debe 80.
	sale, err := p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{
		CustomerID: "cli-1",
		Currency:   entity.CurrencyUSD,
		IsCredit:   true,
		Payments:   []dto.PaymentRequest{cashUSD("20")},
	})
	require.NoError(t, err)
	assert.False(t, sale.Paid)
	customer, err := p.store.Customers().GetByID(ctx, "cli-1")
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(d("80")))

	p.add(t, "caja-1", "a", "1", false)
	_, err = p.finalize.FinalizeSale(ctx, "caja-1", "cajero-1", dto.CheckoutRequest{CustomerID: "cli-1", Currency: entity.CurrencyUSD, IsCredit: true})
	assert.True(t, errors.Is(err, domain.ErrCreditLimitExceeded))
	assert.True(t, p.stock(t, "a").Equal(d("8")))
}

func TestFinalizeSale_ConcurrenteNoSobrevende(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	p.product(t, entity.Product{ID: "a", Name: "Candado", Price: d("5"), Stock: d("5")})
	p.openCash(t, "0", "0")

	const buyers = 10
	for i := 0; i < buyers; i++ {
		p.add(t, fmt.Sprintf("caja-%d", i), "a", "1", false)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, out int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := p.finalize.FinalizeSale(ctx, fmt.Sprintf("caja-%d", i), "cajero", dto.CheckoutRequest{
				Currency: entity.CurrencyUSD,
				Payments: []dto.PaymentRequest{cashUSD("5")},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				out++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, out)
	assert.True(t, p.stock(t, "a").IsZero())
	v, err := p.ledger.Verify(ctx, "a")
	require.NoError(t, err)
	assert.True(t, v.Consistent)
}
