package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, name, COALESCE(tax_id, ''), phone, email, credit_limit, balance, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, tax_id, phone, email, credit_limit, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullable(c.TaxID), c.Phone, c.Email, c.CreditLimit, c.Balance, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

// GetForUpdate obtiene el cliente y bloquea la fila (venta a crédito o abono concurrentes).
func (r *CustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id)
}

// List lista clientes en orden de registro.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM customers
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// UpdateBalance fija la deuda del cliente.
func (r *CustomerRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE customers SET balance = $2, updated_at = now() WHERE id = $1`, id, balance)
	if err != nil {
		return fmt.Errorf("update customer balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreatePayment registra un abono del cliente.
func (r *CustomerRepo) CreatePayment(ctx context.Context, p *entity.CustomerPayment) error {
	query := `
		INSERT INTO payments (id, customer_id, amount, currency, exchange_rate, applied_amount,
			method, cash_session_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CustomerID, p.Amount, p.Currency, p.ExchangeRate, p.AppliedAmount,
		p.Method, nullable(p.CashSessionID), nullable(p.CreatedBy), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer payment: %w", err)
	}
	return nil
}

// ListPayments abonos del cliente del más reciente al más antiguo.
func (r *CustomerRepo) ListPayments(ctx context.Context, customerID string) ([]*entity.CustomerPayment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, customer_id, amount, currency, exchange_rate, applied_amount, method,
			COALESCE(cash_session_id, ''), COALESCE(created_by, ''), created_at
		FROM payments WHERE customer_id = $1 ORDER BY seq DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.CustomerPayment
	for rows.Next() {
		var p entity.CustomerPayment
		if err := rows.Scan(
			&p.ID, &p.CustomerID, &p.Amount, &p.Currency, &p.ExchangeRate, &p.AppliedAmount, &p.Method,
			&p.CashSessionID, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *CustomerRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Phone, &c.Email, &c.CreditLimit, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
