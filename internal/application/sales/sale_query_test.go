package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceiptGenerator struct {
	got *Receipt
}

func (f *fakeReceiptGenerator) GenerateReceiptPDF(_ context.Context, r *Receipt) ([]byte, error) {
	f.got = r
	return []byte("%PDF-1.4"), nil
}

func TestSaleQuery_ListarYRecibo(t *testing.T) {
	ctx := context.Background()
	p := newPOS()
	gen := &fakeReceiptGenerator{}
	p.query = NewSaleQueryUseCase(p.store, gen, StoreInfo{Name: "Ferretería El Tornillo", RIF: "J-12345678-9"})
	p.product(t, entity.Product{ID: "a", SKU: "MART-1", Name: "Martillo", Price: d("12.50"), Stock: d("4")})
	p.openCash(t, "0", "0")
	sale := p.sell(t, "a", "2", "25")

	list, err := p.query.ListSales(ctx, sale.CashSessionID, "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 50, list.Page.Limit)

	got, err := p.query.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Martillo", got.Details[0].ProductName)
	require.Len(t, got.Payments, 1)

	pdf, filename, err := p.query.DownloadReceiptPDF(ctx, sale.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "recibo_"+sale.ID[:8]+".pdf", filename)
	require.NotNil(t, gen.got)
	assert.Equal(t, "MART-1", gen.got.Lines[0].SKU)
	assert.Equal(t, "J-12345678-9", gen.got.Store.RIF)
	assert.True(t, gen.got.Refunded.IsZero())

	_, err = p.query.GetSale(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
