// Package cart carrito de venta en curso de un terminal. No toca stock ni kardex:
// solo acumula líneas con precio resuelto y descuentos hasta que se finaliza la venta.
package cart

import (
	"fmt"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/money"
	"github.com/shopspring/decimal"
)

// Tipos de descuento.
const (
	DiscountPercent = "PERCENT"
	DiscountFixed   = "FIXED"
)

// AllLines índice especial para aplicar un descuento a todo el carrito.
const AllLines = -1

var hundred = decimal.NewFromInt(100)

// Line línea del carrito. Quantity es lo que pidió el cliente (cajas si IsBox);
// BaseUnits es lo que saldrá del inventario.
type Line struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku,omitempty"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	IsBox         bool            `json:"is_box"`
	Tier          string          `json:"tier,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	BaseUnitPrice decimal.Decimal `json:"base_unit_price"`
	UnitsPerItem  decimal.Decimal `json:"units_per_item"`
	BaseUnits     decimal.Decimal `json:"base_units"`
	Gross         decimal.Decimal `json:"gross"`
	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Discount      decimal.Decimal `json:"discount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Recalc recalcula bruto, descuento y subtotal. Un descuento fijo mayor al nuevo bruto se recorta.
func (l *Line) Recalc() {
	l.BaseUnits = l.Quantity.Mul(l.UnitsPerItem)
	l.Gross = money.Round2(l.UnitPrice.Mul(l.Quantity))
	switch l.DiscountType {
	case DiscountPercent:
		l.Discount = money.Round2(l.Gross.Mul(l.DiscountValue).Div(hundred))
	case DiscountFixed:
		l.Discount = decimal.Min(l.DiscountValue, l.Gross)
	default:
		l.Discount = decimal.Zero
	}
	l.Subtotal = l.Gross.Sub(l.Discount)
}

// Cart carrito de un terminal, direccionado por ID.
type Cart struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New crea un carrito vacío.
func New(id string) *Cart {
	return &Cart{ID: id, Lines: []Line{}, UpdatedAt: time.Now()}
}

func (c *Cart) checkIndex(idx int) error {
	if idx < 0 || idx >= len(c.Lines) {
		return fmt.Errorf("%w: línea %d no existe", domain.ErrInvalidInput, idx)
	}
	return nil
}

// Add agrega la línea y devuelve su índice.
func (c *Cart) Add(l Line) int {
	l.Recalc()
	c.Lines = append(c.Lines, l)
	c.touch()
	return len(c.Lines) - 1
}

// Find devuelve el índice de la línea con el mismo producto, modalidad y nivel, o -1.
func (c *Cart) Find(productID string, isBox bool, tier string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID && l.IsBox == isBox && l.Tier == tier {
			return i
		}
	}
	return -1
}

// Line devuelve una copia de la línea idx.
func (c *Cart) Line(idx int) (Line, error) {
	if err := c.checkIndex(idx); err != nil {
		return Line{}, err
	}
	return c.Lines[idx], nil
}

// Replace sustituye la línea idx conservando su descuento.
func (c *Cart) Replace(idx int, l Line) error {
	if err := c.checkIndex(idx); err != nil {
		return err
	}
	old := c.Lines[idx]
	l.DiscountType, l.DiscountValue = old.DiscountType, old.DiscountValue
	l.Recalc()
	c.Lines[idx] = l
	c.touch()
	return nil
}

// Remove elimina la línea idx.
func (c *Cart) Remove(idx int) error {
	if err := c.checkIndex(idx); err != nil {
		return err
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	c.touch()
	return nil
}

// BaseUnitsFor unidades base del producto ya comprometidas en el carrito, sin contar la línea except.
func (c *Cart) BaseUnitsFor(productID string, except int) decimal.Decimal {
	total := decimal.Zero
	for i, l := range c.Lines {
		if i != except && l.ProductID == productID {
			total = total.Add(l.BaseUnits)
		}
	}
	return total
}

// ApplyDiscount aplica un descuento a la línea idx o, con AllLines, a todo el carrito.
// PERCENT en [0,100]; FIXED en [0, bruto]. Un FIXED global se reparte proporcional al bruto
// de cada línea y el residuo de redondeo queda en la última.
func (c *Cart) ApplyDiscount(idx int, value decimal.Decimal, discountType string) error {
	if discountType != DiscountPercent && discountType != DiscountFixed {
		return fmt.Errorf("%w: tipo de descuento %q", domain.ErrInvalidInput, discountType)
	}
	if value.IsNegative() {
		return fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	if discountType == DiscountPercent && value.GreaterThan(hundred) {
		return fmt.Errorf("%w: porcentaje mayor a 100", domain.ErrInvalidInput)
	}

	if idx != AllLines {
		if err := c.checkIndex(idx); err != nil {
			return err
		}
		l := &c.Lines[idx]
		if discountType == DiscountFixed && value.GreaterThan(l.Gross) {
			return fmt.Errorf("%w: descuento %s mayor al bruto %s", domain.ErrInvalidInput, value, l.Gross)
		}
		l.DiscountType, l.DiscountValue = discountType, value
		l.Recalc()
		c.touch()
		return nil
	}

	if len(c.Lines) == 0 {
		return fmt.Errorf("%w: carrito vacío", domain.ErrInvalidInput)
	}
	if discountType == DiscountPercent {
		for i := range c.Lines {
			c.Lines[i].DiscountType, c.Lines[i].DiscountValue = DiscountPercent, value
			c.Lines[i].Recalc()
		}
		c.touch()
		return nil
	}

	gross := c.Gross()
	if value.GreaterThan(gross) {
		return fmt.Errorf("%w: descuento %s mayor al bruto %s", domain.ErrInvalidInput, value, gross)
	}
	remaining := value
	last := len(c.Lines) - 1
	for i := range c.Lines {
		l := &c.Lines[i]
		share := remaining
		if i < last {
			share = decimal.Zero
			if gross.IsPositive() {
				share = money.Round2(value.Mul(l.Gross).Div(gross))
			}
			share = decimal.Min(share, l.Gross, remaining)
		}
		remaining = remaining.Sub(share)
		l.DiscountType, l.DiscountValue = DiscountFixed, share
		l.Recalc()
	}
	c.touch()
	return nil
}

// Gross suma de brutos.
func (c *Cart) Gross() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Gross)
	}
	return total
}

// DiscountTotal suma de descuentos aplicados.
func (c *Cart) DiscountTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Discount)
	}
	return total
}

// Total suma de subtotales (neto a cobrar).
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) touch() { c.UpdatedAt = time.Now() }
