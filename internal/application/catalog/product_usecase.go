// Package catalog catálogo de productos: alta, edición, conteo físico y reglas de precio por volumen.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/ports"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// ProductUseCase casos de uso del catálogo. Cost y Stock solo cambian vía kardex.
type ProductUseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	ledger   *inventory.Ledger
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner ports.TxRunner, store repository.Store, ledger *inventory.Ledger) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, store: store, ledger: ledger, now: time.Now}
}

// Create crea el producto. El stock inicial entra al kardex como ADJUSTMENT_IN.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() || in.MinStock.IsNegative() {
		return nil, fmt.Errorf("%w: precio, costo y stock mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.InitialStock.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, in.InitialStock)
	}
	factor, err := conversionFactor(in.IsBox, in.ConversionFactor)
	if err != nil {
		return nil, err
	}
	if err := validateTiers(in.TierPrices); err != nil {
		return nil, err
	}
	unitType := in.UnitType
	if unitType == "" {
		unitType = entity.UnitTypeUnit
	}

	now := uc.now()
	product := &entity.Product{
		ID:               uuid.New().String(),
		SKU:              strings.TrimSpace(in.SKU),
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Price:            in.Price,
		Cost:             in.Cost,
		Stock:            decimal.Zero,
		IsBox:            in.IsBox,
		ConversionFactor: factor,
		UnitType:         unitType,
		MinStock:         in.MinStock,
		TierPrices:       in.TierPrices,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = uc.txRunner.Run(ctx, func(repos repository.Store) error {
		if err := repos.Products().Create(ctx, product); err != nil {
			return err
		}
		if !in.InitialStock.IsPositive() {
			return nil
		}
		_, err := uc.ledger.Restore(ctx, repos, inventory.Movement{
			ProductID:   product.ID,
			Type:        entity.MovementAdjustmentIn,
			Quantity:    in.InitialStock,
			Description: "Stock inicial",
			UserID:      userID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, product.ID)
}

// GetByID producto con sus reglas de precio.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return uc.withRules(ctx, product)
}

// GetBySKU producto por código (lector de barras).
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := uc.store.Products().GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: SKU %s", domain.ErrNotFound, sku)
	}
	return uc.withRules(ctx, product)
}

// List productos por nombre, filtrando por nombre o SKU.
func (uc *ProductUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.Products().List(ctx, repository.ProductFilter{Search: search, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p, nil))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListLowStock productos en o bajo su stock mínimo.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, limit int) ([]dto.ProductResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	list, err := uc.store.Products().ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p, nil))
	}
	return out, nil
}

// Update actualiza los campos editables. No permite modificar Cost ni Stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if in.SKU != nil {
		product.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
		product.Price = *in.Price
	}
	if in.IsBox != nil {
		product.IsBox = *in.IsBox
	}
	if in.ConversionFactor != nil {
		product.ConversionFactor = *in.ConversionFactor
	}
	factor, err := conversionFactor(product.IsBox, product.ConversionFactor)
	if err != nil {
		return nil, err
	}
	product.ConversionFactor = factor
	if in.UnitType != nil {
		product.UnitType = *in.UnitType
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, fmt.Errorf("%w: stock mínimo negativo", domain.ErrInvalidInput)
		}
		product.MinStock = *in.MinStock
	}
	if in.TierPrices != nil {
		if err := validateTiers(in.TierPrices); err != nil {
			return nil, err
		}
		product.TierPrices = in.TierPrices
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = uc.now()
	if err := uc.store.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// SetStock fija el stock contado en el conteo físico. La diferencia queda en el kardex
// como ADJUSTMENT_IN o ADJUSTMENT_OUT; si no hay diferencia no se escribe nada.
func (uc *ProductUseCase) SetStock(ctx context.Context, id, userID string, in dto.SetStockRequest) (*dto.ProductResponse, error) {
	if in.Stock.IsNegative() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, in.Stock)
	}
	reason := in.Reason
	if reason == "" {
		reason = "Conteo físico"
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Store) error {
		product, err := repos.Products().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		diff := in.Stock.Sub(product.Stock)
		m := inventory.Movement{ProductID: id, Description: reason, UserID: userID}
		switch {
		case diff.IsPositive():
			m.Type, m.Quantity = entity.MovementAdjustmentIn, diff
			_, err = uc.ledger.Restore(ctx, repos, m)
		case diff.IsNegative():
			m.Type, m.Quantity = entity.MovementAdjustmentOut, diff.Neg()
			_, err = uc.ledger.Deduct(ctx, repos, m)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// SetPriceRules reemplaza las reglas de precio por volumen del producto.
func (uc *ProductUseCase) SetPriceRules(ctx context.Context, id string, in dto.SetPriceRulesRequest) (*dto.ProductResponse, error) {
	product, err := uc.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	seen := make(map[string]bool, len(in.Rules))
	rules := make([]*entity.PriceRule, 0, len(in.Rules))
	for _, r := range in.Rules {
		if !r.MinQuantity.IsPositive() || r.Price.IsNegative() {
			return nil, fmt.Errorf("%w: regla %s -> %s", domain.ErrInvalidInput, r.MinQuantity, r.Price)
		}
		key := r.MinQuantity.String()
		if seen[key] {
			return nil, fmt.Errorf("%w: cantidad mínima %s repetida", domain.ErrInvalidInput, key)
		}
		seen[key] = true
		rules = append(rules, &entity.PriceRule{
			ID:          uuid.New().String(),
			ProductID:   id,
			MinQuantity: r.MinQuantity,
			Price:       r.Price,
		})
	}
	if err := uc.store.PriceRules().ReplaceForProduct(ctx, id, rules); err != nil {
		return nil, err
	}
	return uc.withRules(ctx, product)
}

func (uc *ProductUseCase) withRules(ctx context.Context, p *entity.Product) (*dto.ProductResponse, error) {
	rules, err := uc.store.PriceRules().ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p, rules), nil
}

// conversionFactor valida el factor de caja. Un producto que no se vende por caja queda con factor 1.
func conversionFactor(isBox bool, factor decimal.Decimal) (decimal.Decimal, error) {
	if !isBox {
		if factor.IsZero() {
			return one, nil
		}
		if factor.LessThan(one) {
			return decimal.Zero, fmt.Errorf("%w: factor de conversión %s", domain.ErrInvalidInput, factor)
		}
		return factor, nil
	}
	if factor.LessThan(one) {
		return decimal.Zero, fmt.Errorf("%w: un producto por caja necesita factor de conversión >= 1", domain.ErrInvalidInput)
	}
	return factor, nil
}

func validateTiers(tiers map[string]decimal.Decimal) error {
	for name, price := range tiers {
		if strings.TrimSpace(name) == "" || price.IsNegative() {
			return fmt.Errorf("%w: nivel de precio %q", domain.ErrInvalidInput, name)
		}
	}
	return nil
}

func toProductResponse(p *entity.Product, rules []*entity.PriceRule) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Cost:             p.Cost,
		Stock:            p.Stock,
		IsBox:            p.IsBox,
		ConversionFactor: p.UnitsPerBox(),
		UnitType:         p.UnitType,
		MinStock:         p.MinStock,
		LowStock:         p.IsLowStock(),
		TierPrices:       p.TierPrices,
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	for _, r := range rules {
		out.PriceRules = append(out.PriceRules, dto.PriceRuleResponse{ID: r.ID, MinQuantity: r.MinQuantity, Price: r.Price})
	}
	return out
}
