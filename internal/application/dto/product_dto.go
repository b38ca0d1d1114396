package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialStock se registra en el kardex como ADJUSTMENT_IN.
type CreateProductRequest struct {
	SKU              string                     `json:"sku" validate:"omitempty,max=100"`
	Name             string                     `json:"name" validate:"required,min=1,max=200"`
	Description      string                     `json:"description" validate:"max=1000"`
	Price            decimal.Decimal            `json:"price"`
	Cost             decimal.Decimal            `json:"cost"`
	InitialStock     decimal.Decimal            `json:"initial_stock"`
	IsBox            bool                       `json:"is_box"`
	ConversionFactor decimal.Decimal            `json:"conversion_factor"`
	UnitType         string                     `json:"unit_type" validate:"omitempty,max=30"`
	MinStock         decimal.Decimal            `json:"min_stock"`
	TierPrices       map[string]decimal.Decimal `json:"tier_prices,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Stock).
type UpdateProductRequest struct {
	SKU              *string                    `json:"sku" validate:"omitempty,max=100"`
	Name             *string                    `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string                    `json:"description"`
	Price            *decimal.Decimal           `json:"price"`
	IsBox            *bool                      `json:"is_box"`
	ConversionFactor *decimal.Decimal           `json:"conversion_factor"`
	UnitType         *string                    `json:"unit_type" validate:"omitempty,max=30"`
	MinStock         *decimal.Decimal           `json:"min_stock"`
	TierPrices       map[string]decimal.Decimal `json:"tier_prices,omitempty"`
	Active           *bool                      `json:"active"`
}

// SetStockRequest fija el stock contado físicamente; la diferencia queda en el kardex.
type SetStockRequest struct {
	Stock  decimal.Decimal `json:"stock"`
	Reason string          `json:"reason" validate:"max=255"`
}

// PriceRuleRequest regla de precio por volumen.
type PriceRuleRequest struct {
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// SetPriceRulesRequest reemplaza todas las reglas del producto.
type SetPriceRulesRequest struct {
	Rules []PriceRuleRequest `json:"rules" validate:"dive"`
}

// PriceRuleResponse regla de precio en respuestas.
type PriceRuleResponse struct {
	ID          string          `json:"id"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Price       decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string                     `json:"id"`
	SKU              string                     `json:"sku"`
	Name             string                     `json:"name"`
	Description      string                     `json:"description"`
	Price            decimal.Decimal            `json:"price"`
	Cost             decimal.Decimal            `json:"cost"`
	Stock            decimal.Decimal            `json:"stock"`
	IsBox            bool                       `json:"is_box"`
	ConversionFactor decimal.Decimal            `json:"conversion_factor"`
	UnitType         string                     `json:"unit_type"`
	MinStock         decimal.Decimal            `json:"min_stock"`
	LowStock         bool                       `json:"low_stock"`
	TierPrices       map[string]decimal.Decimal `json:"tier_prices,omitempty"`
	PriceRules       []PriceRuleResponse        `json:"price_rules,omitempty"`
	Active           bool                       `json:"active"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
