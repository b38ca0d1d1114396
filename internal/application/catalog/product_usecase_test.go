package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUseCase() (*ProductUseCase, *inventory.Ledger) {
	store := memory.New()
	ledger := inventory.NewLedger(store)
	return NewProductUseCase(store, store, ledger), ledger
}

func TestCreate_StockInicialPorKardex(t *testing.T) {
	ctx := context.Background()
	uc, ledger := newUseCase()

	p, err := uc.Create(ctx, "admin", dto.CreateProductRequest{
		SKU: "CLA-2", Name: "Clavo 2\"", Price: d("0.05"), Cost: d("0.02"),
		InitialStock: d("500"), IsBox: true, ConversionFactor: d("100"), MinStock: d("100"),
	})
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.True(t, p.Stock.Equal(d("500")))
	assert.Equal(t, entity.UnitTypeUnit, p.UnitType)

	history, err := ledger.History(ctx, p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, entity.MovementAdjustmentIn, history.Items[0].MovementType)

	_, err = uc.Create(ctx, "admin", dto.CreateProductRequest{SKU: "CLA-2", Name: "Otro"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateSKU))
	_, err = uc.Create(ctx, "admin", dto.CreateProductRequest{Name: "Caja rota", IsBox: true, ConversionFactor: d("0.5")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.Create(ctx, "admin", dto.CreateProductRequest{Name: "Negativo", InitialStock: d("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))

	bySKU, err := uc.GetBySKU(ctx, "CLA-2")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySKU.ID)
}

func TestSetStock_DejaAjusteEnKardex(t *testing.T) {
	ctx := context.Background()
	uc, ledger := newUseCase()
	p, err := uc.Create(ctx, "admin", dto.CreateProductRequest{Name: "Teflón", Price: d("1"), InitialStock: d("10"), MinStock: d("5")})
	require.NoError(t, err)

	got, err := uc.SetStock(ctx, p.ID, "admin", dto.SetStockRequest{Stock: d("4")})
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(d("4")))
	assert.True(t, got.LowStock)

	got, err = uc.SetStock(ctx, p.ID, "admin", dto.SetStockRequest{Stock: d("7"), Reason: "Mercancía encontrada"})
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(d("7")))

	// Sin diferencia no escribe nada.
	_, err = uc.SetStock(ctx, p.ID, "admin", dto.SetStockRequest{Stock: d("7")})
	require.NoError(t, err)

	history, err := ledger.History(ctx, p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history.Items, 3)
	assert.Equal(t, entity.MovementAdjustmentIn, history.Items[0].MovementType)
	assert.Equal(t, "Mercancía encontrada", history.Items[0].Description)
	assert.Equal(t, entity.MovementAdjustmentOut, history.Items[1].MovementType)

	v, err := ledger.Verify(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)

	low, err := uc.ListLowStock(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, low)

	_, err = uc.SetStock(ctx, p.ID, "admin", dto.SetStockRequest{Stock: d("-1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestUpdateYReglasDePrecio(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase()
	p, err := uc.Create(ctx, "admin", dto.CreateProductRequest{Name: "Tubo PVC", Price: d("3"), InitialStock: d("30")})
	require.NoError(t, err)

	name, price := "Tubo PVC 1/2", d("3.50")
	got, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.True(t, got.Stock.Equal(d("30")), "Update no toca el stock")

	isBox := true
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{IsBox: &isBox, ConversionFactor: ptr(d("0"))})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	got, err = uc.SetPriceRules(ctx, p.ID, dto.SetPriceRulesRequest{Rules: []dto.PriceRuleRequest{
		{MinQuantity: d("10"), Price: d("3")},
		{MinQuantity: d("50"), Price: d("2.75")},
	}})
	require.NoError(t, err)
	assert.Len(t, got.PriceRules, 2)

	_, err = uc.SetPriceRules(ctx, p.ID, dto.SetPriceRulesRequest{Rules: []dto.PriceRuleRequest{
		{MinQuantity: d("10"), Price: d("3")},
		{MinQuantity: d("10"), Price: d("2")},
	}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	list, err := uc.List(ctx, "pvc", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }
