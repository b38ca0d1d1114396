package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SaleQueryUseCase consultas de ventas y recibo PDF.
type SaleQueryUseCase struct {
	store     repository.Store
	generator ReceiptPDFGenerator
	info      StoreInfo
}

// NewSaleQueryUseCase construye el caso de uso. generator puede ser nil si no se emiten recibos PDF.
func NewSaleQueryUseCase(store repository.Store, generator ReceiptPDFGenerator, info StoreInfo) *SaleQueryUseCase {
	return &SaleQueryUseCase{store: store, generator: generator, info: info}
}

// GetSale venta con líneas, pagos y cantidades ya devueltas por línea.
func (uc *SaleQueryUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	details, err := uc.store.Sales().GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.store.Sales().GetPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	returned, err := uc.store.Returns().ReturnedQtyBySaleDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := uc.productNames(ctx, details)
	if err != nil {
		return nil, err
	}
	pays := make([]dto.SalePaymentResponse, 0, len(payments))
	for _, p := range payments {
		pays = append(pays, dto.SalePaymentResponse{Method: p.Method, Amount: p.Amount, Currency: p.Currency})
	}
	return toSaleResponse(sale, details, pays, names, returned), nil
}

// ListSales ventas más recientes primero, filtradas por sesión de caja o cliente.
func (uc *SaleQueryUseCase) ListSales(ctx context.Context, sessionID, customerID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	list, err := uc.store.Sales().List(ctx, repository.SaleFilter{
		CashSessionID: sessionID,
		CustomerID:    customerID,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s, nil, nil, nil, nil))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// DownloadReceiptPDF arma el recibo de la venta y lo entrega como PDF.
func (uc *SaleQueryUseCase) DownloadReceiptPDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("recibo: generador PDF no configurado")
	}
	receipt, err := uc.BuildReceipt(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, receipt)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", shortID(id)), nil
}

// BuildReceipt reúne venta, cliente, líneas con nombre y lo devuelto a la fecha.
func (uc *SaleQueryUseCase) BuildReceipt(ctx context.Context, id string) (*Receipt, error) {
	sale, err := uc.store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recibo: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	receipt := &Receipt{Store: uc.info, Sale: *sale, GeneratedAt: time.Now()}

	if sale.CustomerID != "" {
		customer, err := uc.store.Customers().GetByID(ctx, sale.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("recibo: obtener cliente: %w", err)
		}
		receipt.Customer = customer
	}

	details, err := uc.store.Sales().GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recibo: obtener detalles: %w", err)
	}
	for _, d := range details {
		line := ReceiptLine{SaleDetail: *d, ProductName: "Producto " + d.ProductID}
		if p, pErr := uc.store.Products().GetByID(ctx, d.ProductID); pErr == nil && p != nil {
			line.ProductName = p.Name
			line.SKU = p.SKU
		}
		receipt.Lines = append(receipt.Lines, line)
	}

	payments, err := uc.store.Sales().GetPayments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recibo: obtener pagos: %w", err)
	}
	for _, p := range payments {
		receipt.Payments = append(receipt.Payments, *p)
	}

	returns, err := uc.store.Returns().ListBySale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recibo: obtener devoluciones: %w", err)
	}
	receipt.Refunded = decimal.Zero
	for _, r := range returns {
		receipt.Refunded = receipt.Refunded.Add(r.TotalRefunded)
	}
	return receipt, nil
}

func (uc *SaleQueryUseCase) productNames(ctx context.Context, details []*entity.SaleDetail) (map[string]string, error) {
	names := make(map[string]string, len(details))
	for _, d := range details {
		if _, ok := names[d.ProductID]; ok {
			continue
		}
		p, err := uc.store.Products().GetByID(ctx, d.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			names[d.ProductID] = p.Name
		}
	}
	return names, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
