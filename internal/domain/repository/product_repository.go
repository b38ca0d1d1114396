package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	Search string // coincide con nombre o SKU (ILIKE)
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Get* retornan (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update persiste los campos editables; no toca Stock ni Cost.
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	// DecrementStock resta qty solo si hay existencia suficiente y devuelve el stock resultante.
	// Retorna domain.ErrInsufficientStock o domain.ErrNotFound.
	DecrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error)
	// IncrementStock suma qty y devuelve el stock resultante. Retorna domain.ErrNotFound.
	IncrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// ListLowStock productos con stock <= min_stock (min_stock > 0).
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
}

// PriceRuleRepository reglas de precio por volumen.
type PriceRuleRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]*entity.PriceRule, error)
	// ReplaceForProduct sustituye todas las reglas del producto.
	ReplaceForProduct(ctx context.Context, productID string, rules []*entity.PriceRule) error
}
