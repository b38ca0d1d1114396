package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest un pago aplicado a la venta.
type PaymentRequest struct {
	Method   string          `json:"method" validate:"required,max=30"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,oneof=USD VES"`
}

// CheckoutRequest body para POST /api/carts/:cartID/checkout.
// ExchangeRate es Bs por USD; requerido si la venta o algún pago es en VES.
type CheckoutRequest struct {
	CustomerID   string           `json:"customer_id,omitempty" validate:"omitempty,max=64"`
	Currency     string           `json:"currency" validate:"required,oneof=USD VES"`
	ExchangeRate decimal.Decimal  `json:"exchange_rate"`
	IsCredit     bool             `json:"is_credit"`
	Payments     []PaymentRequest `json:"payments" validate:"dive"`
}

// SaleDetailResponse línea de venta. Quantity en unidades base.
type SaleDetailResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	DisplayQuantity decimal.Decimal `json:"display_quantity"`
	IsBox           bool            `json:"is_box"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ReturnedQty     decimal.Decimal `json:"returned_quantity"`
}

// SalePaymentResponse pago registrado.
type SalePaymentResponse struct {
	Method   string          `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// SaleResponse venta confirmada (también sirve de recibo).
type SaleResponse struct {
	ID            string                `json:"id"`
	CashSessionID string                `json:"cash_session_id,omitempty"`
	CustomerID    string                `json:"customer_id,omitempty"`
	UserID        string                `json:"user_id"`
	Currency      string                `json:"currency"`
	ExchangeRate  decimal.Decimal       `json:"exchange_rate"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	IsCredit      bool                  `json:"is_credit"`
	Paid          bool                  `json:"paid"`
	Details       []SaleDetailResponse  `json:"details"`
	Payments      []SalePaymentResponse `json:"payments"`
	CreatedAt     time.Time             `json:"created_at"`
}

// SaleListResponse lista paginada de ventas (sin detalle).
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ReturnItemRequest producto y cantidad (unidades base) a devolver.
type ReturnItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ProcessReturnRequest body para POST /api/sales/:id/returns.
// RefundCurrency vacío usa la moneda de la venta.
type ProcessReturnRequest struct {
	Items          []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason         string              `json:"reason" validate:"max=255"`
	RefundCurrency string              `json:"refund_currency,omitempty" validate:"omitempty,oneof=USD VES"`
	ExchangeRate   decimal.Decimal     `json:"exchange_rate"`
}

// VoidSaleRequest body para POST /api/sales/:id/void.
type VoidSaleRequest struct {
	Reason         string          `json:"reason" validate:"max=255"`
	RefundCurrency string          `json:"refund_currency,omitempty" validate:"omitempty,oneof=USD VES"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
}

// ReturnDetailResponse línea devuelta.
type ReturnDetailResponse struct {
	SaleDetailID string          `json:"sale_detail_id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// ReturnResponse devolución registrada.
// TotalRefunded en la moneda de la venta; RefundAmount en RefundCurrency.
type ReturnResponse struct {
	ID             string                 `json:"id"`
	SaleID         string                 `json:"sale_id"`
	CashSessionID  string                 `json:"cash_session_id,omitempty"`
	TotalRefunded  decimal.Decimal        `json:"total_refunded"`
	RefundAmount   decimal.Decimal        `json:"refund_amount"`
	RefundCurrency string                 `json:"refund_currency"`
	CreditApplied  bool                   `json:"credit_applied"`
	Reason         string                 `json:"reason,omitempty"`
	Details        []ReturnDetailResponse `json:"details"`
	CreatedAt      time.Time              `json:"created_at"`
}
