package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// salesWindow ventana usada para medir la rotación de cada producto.
const salesWindow = 90 * 24 * time.Hour

// ReplenishmentUseCase genera la lista de reposición: productos en o bajo su stock mínimo,
// priorizados por rotación reciente (salidas por venta en el kardex).
type ReplenishmentUseCase struct {
	store repository.Store
	now   func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(store repository.Store) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{store: store, now: time.Now}
}

// GenerateReplenishmentList devuelve la cantidad sugerida de compra por producto.
// IdealStock = MinStock × 1.5; para productos por caja también se sugiere el número de cajas.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, limit int) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.store.Products().ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	since := uc.now().Add(-salesWindow)
	factor := decimal.RequireFromString("1.5")
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		sold, err := uc.unitsSold(ctx, p.ID, since)
		if err != nil {
			return nil, err
		}
		ideal := p.MinStock.Mul(factor)
		qty := ideal.Sub(p.Stock)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		boxes := decimal.Zero
		if p.IsBox && p.UnitsPerBox().GreaterThan(decimal.NewFromInt(1)) {
			boxes = qty.Div(p.UnitsPerBox()).Ceil()
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			CurrentStock:       p.Stock,
			MinStock:           p.MinStock,
			IdealStock:         ideal,
			SuggestedOrderQty:  qty,
			SuggestedBoxes:     boxes,
			UnitCost:           p.Cost,
			EstimatedOrderCost: qty.Mul(p.Cost).Round(2),
			UnitsSold:          sold,
		})
	}

	// Primero mayor rotación; a igual rotación, mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.UnitsSold.Equal(b.UnitsSold) {
			return a.UnitsSold.GreaterThan(b.UnitsSold)
		}
		return a.SuggestedOrderQty.GreaterThan(b.SuggestedOrderQty)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func (uc *ReplenishmentUseCase) unitsSold(ctx context.Context, productID string, since time.Time) (decimal.Decimal, error) {
	entries, err := uc.store.Kardex().ListByProductAsc(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		if e.MovementType == entity.MovementSale && !e.CreatedAt.Before(since) {
			total = total.Add(e.Quantity.Abs())
		}
	}
	return total, nil
}
