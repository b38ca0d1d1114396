package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddToCartRequest body para POST /api/carts/:cartID/lines.
// Product acepta el ID o el SKU del producto; Quantity en cajas si IsBox.
type AddToCartRequest struct {
	Product  string          `json:"product" validate:"required,max=100"`
	Quantity decimal.Decimal `json:"quantity"`
	IsBox    bool            `json:"is_box"`
	Tier     string          `json:"tier,omitempty" validate:"omitempty,max=30"`
}

// UpdateCartLineRequest body para PATCH /api/carts/:cartID/lines/:index.
type UpdateCartLineRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ApplyDiscountRequest body para POST /api/carts/:cartID/discount.
// LineIndex nulo aplica el descuento a todo el carrito.
type ApplyDiscountRequest struct {
	LineIndex *int            `json:"line_index"`
	Value     decimal.Decimal `json:"value"`
	Type      string          `json:"type" validate:"required,oneof=PERCENT FIXED"`
}

// CartLineResponse línea del carrito.
type CartLineResponse struct {
	Index         int             `json:"index"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku,omitempty"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	IsBox         bool            `json:"is_box"`
	Tier          string          `json:"tier,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	BaseUnits     decimal.Decimal `json:"base_units"`
	Gross         decimal.Decimal `json:"gross"`
	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Discount      decimal.Decimal `json:"discount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// CartResponse carrito con totales (en moneda del catálogo).
type CartResponse struct {
	ID        string             `json:"id"`
	Lines     []CartLineResponse `json:"lines"`
	Gross     decimal.Decimal    `json:"gross"`
	Discount  decimal.Decimal    `json:"discount"`
	Total     decimal.Decimal    `json:"total"`
	UpdatedAt time.Time          `json:"updated_at"`
}
