package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

const kardexColumns = `id, product_id, movement_type, quantity, balance_after, unit_cost, description,
	COALESCE(reference_id, ''), COALESCE(created_by, ''), created_at`

// KardexRepo kardex append-only sobre PostgreSQL. El orden lo da la columna seq.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

// Append inserta una línea del kardex.
func (r *KardexRepo) Append(ctx context.Context, e *entity.KardexEntry) error {
	query := `
		INSERT INTO kardex (id, product_id, movement_type, quantity, balance_after, unit_cost,
			description, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.MovementType, e.Quantity, e.BalanceAfter, e.UnitCost,
		e.Description, nullable(e.ReferenceID), nullable(e.CreatedBy), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert kardex entry: %w", err)
	}
	return nil
}

// List entradas de la más reciente a la más antigua, opcionalmente de un solo producto.
func (r *KardexRepo) List(ctx context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex
		WHERE ($1 = '' OR product_id = $1)
		ORDER BY seq DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, f.ProductID, limitOrAll(f.Limit), f.Offset)
}

// ListByProductAsc todas las entradas del producto en orden cronológico.
func (r *KardexRepo) ListByProductAsc(ctx context.Context, productID string) ([]*entity.KardexEntry, error) {
	query := `SELECT ` + kardexColumns + ` FROM kardex WHERE product_id = $1 ORDER BY seq`
	return r.list(ctx, query, productID)
}

func (r *KardexRepo) list(ctx context.Context, query string, args ...any) ([]*entity.KardexEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list kardex: %w", err)
	}
	defer rows.Close()
	var list []*entity.KardexEntry
	for rows.Next() {
		var e entity.KardexEntry
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.MovementType, &e.Quantity, &e.BalanceAfter, &e.UnitCost,
			&e.Description, &e.ReferenceID, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan kardex entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
