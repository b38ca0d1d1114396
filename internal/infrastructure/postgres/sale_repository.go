package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, COALESCE(cash_session_id, ''), COALESCE(customer_id, ''), user_id, currency,
	exchange_rate, subtotal, discount, total_amount, is_credit, paid, created_at`

// SaleRepo ventas, líneas y pagos sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, cash_session_id, customer_id, user_id, currency, exchange_rate,
			subtotal, discount, total_amount, is_credit, paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, nullable(s.CashSessionID), nullable(s.CustomerID), s.UserID, s.Currency, s.ExchangeRate,
		s.Subtotal, s.Discount, s.TotalAmount, s.IsCredit, s.Paid, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de la venta.
func (r *SaleRepo) CreateDetail(ctx context.Context, d *entity.SaleDetail) error {
	query := `
		INSERT INTO sale_details (id, sale_id, product_id, quantity, display_quantity, is_box, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.SaleID, d.ProductID, d.Quantity, d.DisplayQuantity, d.IsBox, d.UnitPrice, d.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale detail: %w", err)
	}
	return nil
}

// CreatePayment persiste un pago de la venta.
func (r *SaleRepo) CreatePayment(ctx context.Context, p *entity.SalePayment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_payments (id, sale_id, method, amount, currency) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.SaleID, p.Method, p.Amount, p.Currency,
	)
	if err != nil {
		return fmt.Errorf("insert sale payment: %w", err)
	}
	return nil
}

// GetByID obtiene la venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate obtiene la venta y bloquea la fila.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// GetDetails líneas de la venta en el orden en que se registraron.
func (r *SaleRepo) GetDetails(ctx context.Context, saleID string) ([]*entity.SaleDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, display_quantity, is_box, unit_price, subtotal
		FROM sale_details WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale details: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleDetail
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(
			&d.ID, &d.SaleID, &d.ProductID, &d.Quantity, &d.DisplayQuantity, &d.IsBox, &d.UnitPrice, &d.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan sale detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// GetPayments pagos de la venta.
func (r *SaleRepo) GetPayments(ctx context.Context, saleID string) ([]*entity.SalePayment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, method, amount, currency FROM sale_payments WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalePayment
	for rows.Next() {
		var p entity.SalePayment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Currency); err != nil {
			return nil, fmt.Errorf("scan sale payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// List ventas de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales
		WHERE ($1 = '' OR cash_session_id = $1) AND ($2 = '' OR customer_id = $2)
		ORDER BY seq DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, f.CashSessionID, f.CustomerID, limitOrAll(f.Limit), f.Offset)
}

// PaymentTotalsBySession suma los pagos de las ventas de la sesión por método y moneda.
func (r *SaleRepo) PaymentTotalsBySession(ctx context.Context, sessionID string) ([]entity.PaymentTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.method, p.currency, SUM(p.amount)
		FROM sale_payments p
		JOIN sales s ON s.id = p.sale_id
		WHERE s.cash_session_id = $1
		GROUP BY p.method, p.currency
		ORDER BY p.method, p.currency`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}
	defer rows.Close()
	var totals []entity.PaymentTotal
	for rows.Next() {
		var t entity.PaymentTotal
		if err := rows.Scan(&t.Method, &t.Currency, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan payment total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// ListUnpaidCredit ventas a crédito pendientes del cliente, de la más antigua a la más reciente.
func (r *SaleRepo) ListUnpaidCredit(ctx context.Context, customerID string) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales
		WHERE customer_id = $1 AND is_credit AND NOT paid
		ORDER BY seq`
	return r.list(ctx, query, customerID)
}

// MarkPaid marca la venta a crédito como saldada.
func (r *SaleRepo) MarkPaid(ctx context.Context, saleID string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET paid = true WHERE id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("mark sale paid: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.CashSessionID, &s.CustomerID, &s.UserID, &s.Currency, &s.ExchangeRate,
		&s.Subtotal, &s.Discount, &s.TotalAmount, &s.IsCredit, &s.Paid, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
