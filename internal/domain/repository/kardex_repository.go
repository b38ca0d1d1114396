package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// KardexFilter filtros de consulta del kardex. ProductID vacío = todos los productos.
type KardexFilter struct {
	ProductID string
	Limit     int
	Offset    int
}

// KardexRepository persistencia append-only del kardex.
type KardexRepository interface {
	Append(ctx context.Context, entry *entity.KardexEntry) error
	// List devuelve entradas de la más reciente a la más antigua.
	List(ctx context.Context, filter KardexFilter) ([]*entity.KardexEntry, error)
	// ListByProductAsc devuelve todas las entradas del producto en orden cronológico.
	ListByProductAsc(ctx context.Context, productID string) ([]*entity.KardexEntry, error)
}
