package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// SaleFilter filtros para listar ventas.
type SaleFilter struct {
	CashSessionID string
	CustomerID    string
	Limit         int
	Offset        int
}

// SaleRepository persistencia de ventas, líneas y pagos.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateDetail(ctx context.Context, detail *entity.SaleDetail) error
	CreatePayment(ctx context.Context, payment *entity.SalePayment) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta; serializa devoluciones concurrentes sobre la misma venta.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetDetails(ctx context.Context, saleID string) ([]*entity.SaleDetail, error)
	GetPayments(ctx context.Context, saleID string) ([]*entity.SalePayment, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// PaymentTotalsBySession agrupa los pagos de las ventas de la sesión por método y moneda.
	PaymentTotalsBySession(ctx context.Context, sessionID string) ([]entity.PaymentTotal, error)
	// ListUnpaidCredit ventas a crédito pendientes del cliente, de la más antigua a la más reciente.
	ListUnpaidCredit(ctx context.Context, customerID string) ([]*entity.Sale, error)
	MarkPaid(ctx context.Context, saleID string) error
}
