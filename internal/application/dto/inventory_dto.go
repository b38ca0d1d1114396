package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Type: PURCHASE (requiere unit_cost), ADJUSTMENT_IN o ADJUSTMENT_OUT. Quantity en unidades base.
type RegisterMovementRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Type        string           `json:"type" validate:"required,oneof=PURCHASE ADJUSTMENT_IN ADJUSTMENT_OUT"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Description string           `json:"description" validate:"max=255"`
	ReferenceID string           `json:"reference_id,omitempty" validate:"max=100"`
}

// KardexEntryResponse línea del kardex.
type KardexEntryResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Description  string          `json:"description"`
	ReferenceID  string          `json:"reference_id,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// KardexListResponse página del kardex (más reciente primero).
type KardexListResponse struct {
	Items []KardexEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// KardexVerificationResponse resultado de reconstruir el stock desde el kardex.
type KardexVerificationResponse struct {
	ProductID   string          `json:"product_id"`
	Stock       decimal.Decimal `json:"stock"`
	LedgerSum   decimal.Decimal `json:"ledger_sum"`
	LastBalance decimal.Decimal `json:"last_balance"`
	Entries     int             `json:"entries"`
	Consistent  bool            `json:"consistent"`
}

// ReplenishmentSuggestionDTO sugerencia de compra para un producto en o bajo su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`         // MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // en unidades base
	SuggestedBoxes     decimal.Decimal `json:"suggested_boxes"`     // redondeado hacia arriba si se compra por caja
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	UnitsSold          decimal.Decimal `json:"units_sold"` // salidas por venta registradas en el kardex
	Priority           int             `json:"priority"`   // 1 = más urgente
}
