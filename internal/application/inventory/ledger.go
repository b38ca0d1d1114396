package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Movement entrada del kardex a registrar. Quantity siempre positiva y en unidades base;
// el signo lo da el tipo de movimiento.
type Movement struct {
	ProductID   string
	Type        string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal // solo PURCHASE: recalcula el costo promedio
	Description string
	ReferenceID string
	UserID      string
}

// Ledger motor del kardex: todo cambio de stock pasa por aquí y deja su línea de auditoría.
// Deduct y Restore reciben los repos de la transacción del llamador (venta, devolución, ajuste).
type Ledger struct {
	store repository.Store
	now   func() time.Time
}

// NewLedger construye el ledger. store se usa solo para consultas fuera de transacción.
func NewLedger(store repository.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Deduct descuenta stock con un UPDATE condicional (nunca queda negativo) y agrega la salida al kardex.
func (l *Ledger) Deduct(ctx context.Context, repos repository.Store, m Movement) (*entity.KardexEntry, error) {
	if !entity.IsOutbound(m.Type) {
		return nil, fmt.Errorf("%w: %s no es un movimiento de salida", domain.ErrInvalidInput, m.Type)
	}
	if !m.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, m.Quantity)
	}
	balance, err := repos.Products().DecrementStock(ctx, m.ProductID, m.Quantity)
	if err != nil {
		return nil, err
	}
	product, err := repos.Products().GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return l.append(ctx, repos, m, m.Quantity.Neg(), balance, product.Cost)
}

// Restore suma stock y agrega la entrada al kardex. Una compra con costo actualiza el promedio ponderado.
func (l *Ledger) Restore(ctx context.Context, repos repository.Store, m Movement) (*entity.KardexEntry, error) {
	if !entity.IsInbound(m.Type) {
		return nil, fmt.Errorf("%w: %s no es un movimiento de entrada", domain.ErrInvalidInput, m.Type)
	}
	if !m.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, m.Quantity)
	}
	product, err := repos.Products().GetForUpdate(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	unitCost := product.Cost
	if m.Type == entity.MovementPurchase && m.UnitCost != nil {
		unitCost = *m.UnitCost
		newCost := inventory.CostCalculator(product.Stock, product.Cost, m.Quantity, unitCost)
		if err := repos.Products().UpdateCost(ctx, m.ProductID, newCost); err != nil {
			return nil, err
		}
	}
	balance, err := repos.Products().IncrementStock(ctx, m.ProductID, m.Quantity)
	if err != nil {
		return nil, err
	}
	return l.append(ctx, repos, m, m.Quantity, balance, unitCost)
}

func (l *Ledger) append(ctx context.Context, repos repository.Store, m Movement, signed, balance, unitCost decimal.Decimal) (*entity.KardexEntry, error) {
	entry := &entity.KardexEntry{
		ID:           uuid.New().String(),
		ProductID:    m.ProductID,
		MovementType: m.Type,
		Quantity:     signed,
		BalanceAfter: balance,
		UnitCost:     unitCost,
		Description:  m.Description,
		ReferenceID:  m.ReferenceID,
		CreatedBy:    m.UserID,
		CreatedAt:    l.now(),
	}
	if err := repos.Kardex().Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CurrentStock stock actual del producto en unidades base.
func (l *Ledger) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := l.store.Products().GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.Stock, nil
}

// History kardex paginado, del movimiento más reciente al más antiguo. productID vacío = todos.
func (l *Ledger) History(ctx context.Context, productID string, limit, offset int) (*dto.KardexListResponse, error) {
	entries, err := l.store.Kardex().List(ctx, repository.KardexFilter{ProductID: productID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.KardexEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toKardexEntryResponse(e))
	}
	return &dto.KardexListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// Verify reconstruye el stock sumando el kardex y lo compara con el stock del producto.
// También exige que cada BalanceAfter coincida con el acumulado hasta esa línea.
func (l *Ledger) Verify(ctx context.Context, productID string) (*dto.KardexVerificationResponse, error) {
	p, err := l.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := l.store.Kardex().ListByProductAsc(ctx, productID)
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	consistent := true
	for _, e := range entries {
		sum = sum.Add(e.Quantity)
		if !sum.Equal(e.BalanceAfter) {
			consistent = false
		}
	}
	last := decimal.Zero
	if n := len(entries); n > 0 {
		last = entries[n-1].BalanceAfter
	}
	consistent = consistent && sum.Equal(p.Stock) && last.Equal(p.Stock) && !p.Stock.IsNegative()

	return &dto.KardexVerificationResponse{
		ProductID:   productID,
		Stock:       p.Stock,
		LedgerSum:   sum,
		LastBalance: last,
		Entries:     len(entries),
		Consistent:  consistent,
	}, nil
}

func toKardexEntryResponse(e *entity.KardexEntry) dto.KardexEntryResponse {
	return dto.KardexEntryResponse{
		ID:           e.ID,
		ProductID:    e.ProductID,
		MovementType: e.MovementType,
		Quantity:     e.Quantity,
		BalanceAfter: e.BalanceAfter,
		UnitCost:     e.UnitCost,
		Description:  e.Description,
		ReferenceID:  e.ReferenceID,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}
