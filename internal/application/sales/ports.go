package sales

import (
	"context"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain/cart"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CartStore guarda los carritos en curso por ID de terminal. Get retorna (nil, nil) si no existe.
type CartStore interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, cartID string) error
	// Take retira el carrito y lo devuelve en un solo paso; (nil, nil) si no existe.
	Take(ctx context.Context, cartID string) (*cart.Cart, error)
}

// ReceiptLine línea del recibo con el nombre del producto ya resuelto.
type ReceiptLine struct {
	entity.SaleDetail
	ProductName string
	SKU         string
}

// StoreInfo datos de la ferretería impresos en el recibo.
type StoreInfo struct {
	Name    string
	RIF     string
	Address string
	Phone   string
}

// Receipt datos completos para imprimir una venta.
type Receipt struct {
	Store       StoreInfo
	Sale        entity.Sale
	Customer    *entity.Customer
	Lines       []ReceiptLine
	Payments    []entity.SalePayment
	Refunded    decimal.Decimal // total devuelto a la fecha, moneda de la venta
	GeneratedAt time.Time
}

// ReceiptPDFGenerator puerto de salida para la representación PDF del recibo.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt *Receipt) ([]byte, error)
}
