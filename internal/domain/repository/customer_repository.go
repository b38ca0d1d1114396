package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerRepository define el puerto de persistencia para Customer y sus abonos.
type CustomerRepository interface {
	// Create retorna domain.ErrDuplicate si la cédula/RIF ya existe.
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error

	CreatePayment(ctx context.Context, payment *entity.CustomerPayment) error
	ListPayments(ctx context.Context, customerID string) ([]*entity.CustomerPayment, error)
}
