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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, COALESCE(sku, ''), name, description, price, cost, stock, is_box,
	conversion_factor, unit_type, min_stock, tier_prices, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, price, cost, stock, is_box, conversion_factor,
			unit_type, min_stock, tier_prices, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		p.ID, nullable(p.SKU), p.Name, p.Description, p.Price, p.Cost, p.Stock, p.IsBox,
		p.UnitsPerBox(), p.UnitType, p.MinStock, p.TierPrices, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if sku == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza un producto existente. No permite modificar Cost ni Stock (se manejan vía kardex).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, description = $4, price = $5, is_box = $6,
			conversion_factor = $7, unit_type = $8, min_stock = $9, tier_prices = $10, active = $11, updated_at = $12
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, nullable(p.SKU), p.Name, p.Description, p.Price, p.IsBox,
		p.UnitsPerBox(), p.UnitType, p.MinStock, p.TierPrices, p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado por el kardex en compras).
func (r *ProductRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// DecrementStock resta con un UPDATE condicional: dos ventas concurrentes del último artículo
// no pueden dejar el stock negativo porque la segunda no encuentra fila que cumpla stock >= qty.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`, id, qty).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("decrement stock: %w", err)
	}
	var (
		name    string
		current decimal.Decimal
	)
	err = r.q.QueryRow(ctx, `SELECT name, stock FROM products WHERE id = $1`, id).Scan(&name, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, domain.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("decrement stock: %w", err)
	}
	return decimal.Zero, fmt.Errorf("%w: %s necesita %s, hay %s", domain.ErrInsufficientStock, name, qty, current)
}

// IncrementStock suma qty y devuelve el stock resultante.
func (r *ProductRepo) IncrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock`, id, qty).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, domain.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("increment stock: %w", err)
	}
	return stock, nil
}

// List lista productos por nombre, con búsqueda opcional por nombre o SKU.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
		ORDER BY name, id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, f.Search, limitOrAll(f.Limit), f.Offset)
}

// ListLowStock productos con stock <= min_stock, los más críticos primero.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE active AND min_stock > 0 AND stock <= min_stock
		ORDER BY stock, name LIMIT $1`
	return r.list(ctx, query, limitOrAll(limit))
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost, &p.Stock, &p.IsBox,
		&p.ConversionFactor, &p.UnitType, &p.MinStock, &p.TierPrices, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var _ repository.PriceRuleRepository = (*PriceRuleRepo)(nil)

// PriceRuleRepo reglas de precio por volumen sobre PostgreSQL.
type PriceRuleRepo struct {
	q Querier
}

// NewPriceRuleRepository construye el adaptador.
func NewPriceRuleRepository(q Querier) *PriceRuleRepo {
	return &PriceRuleRepo{q: q}
}

// ListByProduct reglas del producto ordenadas por cantidad mínima.
func (r *PriceRuleRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.PriceRule, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, min_quantity, price FROM price_rules
		WHERE product_id = $1 ORDER BY min_quantity`, productID)
	if err != nil {
		return nil, fmt.Errorf("list price rules: %w", err)
	}
	defer rows.Close()
	var list []*entity.PriceRule
	for rows.Next() {
		var pr entity.PriceRule
		if err := rows.Scan(&pr.ID, &pr.ProductID, &pr.MinQuantity, &pr.Price); err != nil {
			return nil, fmt.Errorf("scan price rule: %w", err)
		}
		list = append(list, &pr)
	}
	return list, rows.Err()
}

// ReplaceForProduct borra las reglas actuales e inserta las nuevas en un solo batch.
func (r *PriceRuleRepo) ReplaceForProduct(ctx context.Context, productID string, rules []*entity.PriceRule) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("replace price rules: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM price_rules WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete price rules: %w", err)
	}
	for _, pr := range rules {
		_, err := r.q.Exec(ctx, `
			INSERT INTO price_rules (id, product_id, min_quantity, price) VALUES ($1, $2, $3, $4)`,
			pr.ID, productID, pr.MinQuantity, pr.Price)
		if err != nil {
			return fmt.Errorf("insert price rule: %w", err)
		}
	}
	return nil
}
