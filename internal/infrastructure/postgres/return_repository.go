package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo devoluciones sobre PostgreSQL.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste la cabecera de la devolución.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	query := `
		INSERT INTO returns (id, sale_id, cash_session_id, total_refunded, refund_amount, refund_currency,
			exchange_rate, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.SaleID, nullable(ret.CashSessionID), ret.TotalRefunded, ret.RefundAmount, ret.RefundCurrency,
		ret.ExchangeRate, ret.Reason, nullable(ret.CreatedBy), ret.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea devuelta.
func (r *ReturnRepo) CreateDetail(ctx context.Context, d *entity.ReturnDetail) error {
	query := `
		INSERT INTO return_details (id, return_id, sale_detail_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.ReturnID, d.SaleDetailID, d.ProductID, d.Quantity, d.UnitPrice, d.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert return detail: %w", err)
	}
	return nil
}

// ListBySale devoluciones de la venta en orden de registro.
func (r *ReturnRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.Return, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, COALESCE(cash_session_id, ''), total_refunded, refund_amount, refund_currency,
			exchange_rate, reason, COALESCE(created_by, ''), created_at
		FROM returns WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.Return
	for rows.Next() {
		var ret entity.Return
		if err := rows.Scan(
			&ret.ID, &ret.SaleID, &ret.CashSessionID, &ret.TotalRefunded, &ret.RefundAmount, &ret.RefundCurrency,
			&ret.ExchangeRate, &ret.Reason, &ret.CreatedBy, &ret.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, &ret)
	}
	return list, rows.Err()
}

// GetDetails líneas de una devolución.
func (r *ReturnRepo) GetDetails(ctx context.Context, returnID string) ([]*entity.ReturnDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, return_id, sale_detail_id, product_id, quantity, unit_price, subtotal
		FROM return_details WHERE return_id = $1 ORDER BY seq`, returnID)
	if err != nil {
		return nil, fmt.Errorf("get return details: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnDetail
	for rows.Next() {
		var d entity.ReturnDetail
		if err := rows.Scan(&d.ID, &d.ReturnID, &d.SaleDetailID, &d.ProductID, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan return detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// ReturnedQtyBySaleDetail unidades ya devueltas por línea de la venta.
func (r *ReturnRepo) ReturnedQtyBySaleDetail(ctx context.Context, saleID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.sale_detail_id, SUM(d.quantity)
		FROM return_details d
		JOIN returns r ON r.id = d.return_id
		WHERE r.sale_id = $1
		GROUP BY d.sale_detail_id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("returned quantities: %w", err)
	}
	defer rows.Close()
	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var (
			detailID string
			qty      decimal.Decimal
		)
		if err := rows.Scan(&detailID, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[detailID] = qty
	}
	return out, rows.Err()
}
