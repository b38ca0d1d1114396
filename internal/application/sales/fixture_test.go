package sales

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/application/cash"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/cache"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// pos punto de venta completo sobre el almacén en memoria.
type pos struct {
	store    *memory.Store
	carts    *cache.MemoryCartStore
	ledger   *inventory.Ledger
	cart     *CartUseCase
	finalize *FinalizeSaleUseCase
	returns  *ProcessReturnUseCase
	query    *SaleQueryUseCase
	cash     *cash.Manager
}

func newPOS() *pos {
	store := memory.New()
	carts := cache.NewMemoryCartStore(time.Hour)
	ledger := inventory.NewLedger(store)
	return &pos{
		store:    store,
		carts:    carts,
		ledger:   ledger,
		cart:     NewCartUseCase(carts, store),
		finalize: NewFinalizeSaleUseCase(store, carts, ledger, ports.NopMetrics{}, logger.Nop()),
		returns:  NewProcessReturnUseCase(store, store, ledger, ports.NopMetrics{}, logger.Nop()),
		query:    NewSaleQueryUseCase(store, nil, StoreInfo{Name: "Ferretería El Tornillo"}),
		cash:     cash.NewManager(store, store, []string{entity.PaymentCash}, ports.NopMetrics{}, logger.Nop()),
	}
}

func (p *pos) product(t *testing.T, prod entity.Product) {
	t.Helper()
	ctx := context.Background()
	prod.Active = true
	if prod.ConversionFactor.IsZero() {
		prod.ConversionFactor = decimal.NewFromInt(1)
	}
	stock := prod.Stock
	prod.Stock = decimal.Zero
	require.NoError(t, p.store.Products().Create(ctx, &prod))
	if !stock.IsPositive() {
		return
	}
	require.NoError(t, p.store.Run(ctx, func(repos repository.Store) error {
		_, err := p.ledger.Restore(ctx, repos, inventory.Movement{ProductID: prod.ID, Type: entity.MovementAdjustmentIn, Quantity: stock})
		return err
	}))
}

func (p *pos) openCash(t *testing.T, usd, bs string) {
	t.Helper()
	_, err := p.cash.Open(context.Background(), "cajero-1", dto.OpenCashSessionRequest{InitialCashUSD: d(usd), InitialCashBs: d(bs)})
	require.NoError(t, err)
}

func (p *pos) add(t *testing.T, cartID, product, qty string, isBox bool) *dto.CartResponse {
	t.Helper()
	resp, err := p.cart.AddToCart(context.Background(), cartID, dto.AddToCartRequest{Product: product, Quantity: d(qty), IsBox: isBox})
	require.NoError(t, err)
	return resp
}

func (p *pos) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	s, err := p.ledger.CurrentStock(context.Background(), productID)
	require.NoError(t, err)
	return s
}

func cashUSD(amount string) dto.PaymentRequest {
	return dto.PaymentRequest{Method: entity.PaymentCash, Amount: d(amount), Currency: entity.CurrencyUSD}
}
