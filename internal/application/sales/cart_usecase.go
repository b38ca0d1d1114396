package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/cart"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/pricing"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CartUseCase arma el carrito de un terminal. La verificación de stock es orientativa:
// el descuento real ocurre al finalizar la venta.
type CartUseCase struct {
	carts CartStore
	store repository.Store
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(carts CartStore, store repository.Store) *CartUseCase {
	return &CartUseCase{carts: carts, store: store}
}

// GetCart devuelve el carrito (vacío si el terminal aún no tiene uno).
func (uc *CartUseCase) GetCart(ctx context.Context, cartID string) (*dto.CartResponse, error) {
	c, err := uc.load(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// AddToCart agrega quantity del producto (por ID o SKU). Si ya hay una línea del mismo producto,
// modalidad y nivel, se suma a ella y se vuelve a resolver el precio por volumen.
func (uc *CartUseCase) AddToCart(ctx context.Context, cartID string, in dto.AddToCartRequest) (*dto.CartResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, in.Quantity)
	}
	product, err := uc.findProduct(ctx, in.Product)
	if err != nil {
		return nil, err
	}
	c, err := uc.load(ctx, cartID, false)
	if err != nil {
		return nil, err
	}

	idx := c.Find(product.ID, in.IsBox, in.Tier)
	qty := in.Quantity
	if idx >= 0 {
		qty = qty.Add(c.Lines[idx].Quantity)
	}
	line, err := uc.quoteLine(ctx, c, idx, product, qty, in.IsBox, in.Tier)
	if err != nil {
		return nil, err
	}
	if idx >= 0 {
		if err := c.Replace(idx, line); err != nil {
			return nil, err
		}
	} else {
		c.Add(line)
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// UpdateCartLine cambia la cantidad de una línea; re-resuelve el precio y revisa el stock actual.
func (uc *CartUseCase) UpdateCartLine(ctx context.Context, cartID string, idx int, quantity decimal.Decimal) (*dto.CartResponse, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, quantity)
	}
	c, err := uc.load(ctx, cartID, true)
	if err != nil {
		return nil, err
	}
	current, err := c.Line(idx)
	if err != nil {
		return nil, err
	}
	product, err := uc.store.Products().GetByID(ctx, current.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, current.ProductID)
	}
	line, err := uc.quoteLine(ctx, c, idx, product, quantity, current.IsBox, current.Tier)
	if err != nil {
		return nil, err
	}
	if err := c.Replace(idx, line); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// RemoveCartLine elimina una línea.
func (uc *CartUseCase) RemoveCartLine(ctx context.Context, cartID string, idx int) (*dto.CartResponse, error) {
	c, err := uc.load(ctx, cartID, true)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(idx); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// ApplyDiscount aplica un descuento a una línea o, con LineIndex nulo, a todo el carrito.
func (uc *CartUseCase) ApplyDiscount(ctx context.Context, cartID string, in dto.ApplyDiscountRequest) (*dto.CartResponse, error) {
	c, err := uc.load(ctx, cartID, true)
	if err != nil {
		return nil, err
	}
	idx := cart.AllLines
	if in.LineIndex != nil {
		idx = *in.LineIndex
		if idx < 0 {
			return nil, fmt.Errorf("%w: línea %d no existe", domain.ErrInvalidInput, idx)
		}
	}
	if err := c.ApplyDiscount(idx, in.Value, in.Type); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return toCartResponse(c), nil
}

// ClearCart descarta el carrito del terminal.
func (uc *CartUseCase) ClearCart(ctx context.Context, cartID string) error {
	return uc.carts.Delete(ctx, cartID)
}

func (uc *CartUseCase) load(ctx context.Context, cartID string, mustExist bool) (*cart.Cart, error) {
	if cartID == "" {
		return nil, fmt.Errorf("%w: cart id requerido", domain.ErrInvalidInput)
	}
	c, err := uc.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		if mustExist {
			return nil, fmt.Errorf("%w: carrito %s", domain.ErrNotFound, cartID)
		}
		c = cart.New(cartID)
	}
	return c, nil
}

func (uc *CartUseCase) findProduct(ctx context.Context, ref string) (*entity.Product, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	product, err := uc.store.Products().GetByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if product == nil {
		product, err = uc.store.Products().GetBySKU(ctx, ref)
		if err != nil {
			return nil, err
		}
	}
	if product == nil || !product.Active {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, ref)
	}
	return product, nil
}

// quoteLine resuelve el precio y verifica que lo ya comprometido en el carrito más la nueva
// cantidad no supere el stock actual. except es la línea que se está reemplazando (-1 si es nueva).
func (uc *CartUseCase) quoteLine(ctx context.Context, c *cart.Cart, except int, product *entity.Product, qty decimal.Decimal, isBox bool, tier string) (cart.Line, error) {
	rules, err := uc.store.PriceRules().ListByProduct(ctx, product.ID)
	if err != nil {
		return cart.Line{}, err
	}
	quote, err := pricing.Resolve(product, pricing.NewRuleSet(rules), qty, isBox, tier)
	if err != nil {
		return cart.Line{}, err
	}
	needed := c.BaseUnitsFor(product.ID, except).Add(quote.BaseUnits)
	if needed.GreaterThan(product.Stock) {
		return cart.Line{}, fmt.Errorf("%w: %s necesita %s, hay %s", domain.ErrInsufficientStock, product.Name, needed, product.Stock)
	}
	return cart.Line{
		ProductID:     product.ID,
		SKU:           product.SKU,
		Name:          product.Name,
		Quantity:      qty,
		IsBox:         isBox,
		Tier:          tier,
		UnitPrice:     quote.UnitPrice,
		BaseUnitPrice: quote.BaseUnitPrice,
		UnitsPerItem:  quote.UnitsPerItem,
		BaseUnits:     quote.BaseUnits,
	}, nil
}

func toCartResponse(c *cart.Cart) *dto.CartResponse {
	lines := make([]dto.CartLineResponse, 0, len(c.Lines))
	for i, l := range c.Lines {
		lines = append(lines, dto.CartLineResponse{
			Index:         i,
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			Name:          l.Name,
			Quantity:      l.Quantity,
			IsBox:         l.IsBox,
			Tier:          l.Tier,
			UnitPrice:     l.UnitPrice,
			BaseUnits:     l.BaseUnits,
			Gross:         l.Gross,
			DiscountType:  l.DiscountType,
			DiscountValue: l.DiscountValue,
			Discount:      l.Discount,
			Subtotal:      l.Subtotal,
		})
	}
	return &dto.CartResponse{
		ID:        c.ID,
		Lines:     lines,
		Gross:     c.Gross(),
		Discount:  c.DiscountTotal(),
		Total:     c.Total(),
		UpdatedAt: c.UpdatedAt,
	}
}
