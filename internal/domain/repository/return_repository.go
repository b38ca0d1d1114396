package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReturnRepository persistencia de devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, ret *entity.Return) error
	CreateDetail(ctx context.Context, detail *entity.ReturnDetail) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.Return, error)
	GetDetails(ctx context.Context, returnID string) ([]*entity.ReturnDetail, error)
	// ReturnedQtyBySaleDetail cantidad ya devuelta (unidades base) por línea de la venta.
	ReturnedQtyBySaleDetail(ctx context.Context, saleID string) (map[string]decimal.Decimal, error)
}
