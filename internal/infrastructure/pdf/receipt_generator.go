// Package pdf genera el recibo de venta en PDF.
//
// Layout de la página (media carta):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Ferretería + RIF     │  N° Recibo + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + Cédula/RIF (si aplica)                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Subtotal               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / TOTAL / Tasa / Equivalente  │
//	│  PAGOS: método y moneda                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID de la venta + leyenda                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 176, Green: 58, Blue: 20}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// printer formatea montos al estilo venezolano: 1.234,50
var printer = message.NewPrinter(language.Spanish)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ sales.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// MarotoReceiptGenerator implementa sales.ReceiptPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceiptPDF(ctx context.Context, receipt *sales.Receipt) ([]byte, error) {
	if receipt == nil {
		return nil, fmt.Errorf("pdf: recibo vacío")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Recibo de venta", true).
		WithAuthor(nonEmpty(receipt.Store.Name, "Ferretería"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(receipt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	if receipt.Customer != nil {
		m.AddRows(customerRow(receipt.Customer))
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(receipt)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(receipt)...)
	m.AddRows(paymentRows(receipt)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(receipt))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: ferretería + RIF (izq) y N° recibo + fecha (der).
func headerRow(r *sales.Receipt) core.Row {
	info := r.Store
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(info.Name, "Ferretería"), props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("RIF: "+nonEmpty(info.RIF, "—"), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%s   |   Tel: %s", nonEmpty(info.Address, "—"), nonEmpty(info.Phone, "—")), props.Text{
				Size: 7, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(saleTitle(r.Sale), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+receiptNumber(r.Sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+r.Sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente (ventas a crédito o con cliente identificado).
func customerRow(c *entity.Customer) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   C.I./RIF: %s   |   Tel: %s",
				c.Name, nonEmpty(c.TaxID, "—"), nonEmpty(c.Phone, "—"),
			), props.Text{Size: 8, Top: 6}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Cant.", 2, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea de venta.
func tableDetailRows(r *sales.Receipt) []core.Row {
	cur := r.Sale.Currency
	result := make([]core.Row, 0, len(r.Lines))
	for _, l := range r.Lines {
		desc := l.ProductName
		if l.SKU != "" {
			desc = l.SKU + " · " + desc
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(quantityLabel(l), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(desc, props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatAmount(cur, l.UnitPrice), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(formatAmount(cur, l.Subtotal), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRows: subtotal, descuento, total, tasa y equivalente en la otra moneda.
func totalsRows(r *sales.Receipt) []core.Row {
	s := r.Sale
	pair := func(label, value string, grand bool) core.Row {
		style, size, color := fontstyle.Normal, 8.0, colorGray
		if grand {
			style, size, color = fontstyle.Bold, 10.0, colorPrimary
		}
		return row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: size, Align: align.Right, Right: 2, Color: color})),
			col.New(3).Add(text.New(value, props.Text{Style: style, Size: size, Align: align.Right, Right: 1, Color: color})),
		)
	}

	rows := []core.Row{pair("Subtotal:", formatAmount(s.Currency, s.Subtotal), false)}
	if s.Discount.IsPositive() {
		rows = append(rows, pair("Descuento:", "-"+formatAmount(s.Currency, s.Discount), false))
	}
	rows = append(rows, row.New(2), pair("TOTAL:", formatAmount(s.Currency, s.TotalAmount), true))

	if s.ExchangeRate.IsPositive() {
		other := entity.CurrencyVES
		if s.Currency == entity.CurrencyVES {
			other = entity.CurrencyUSD
		}
		if eq, err := money.Convert(s.TotalAmount, s.Currency, other, s.ExchangeRate); err == nil {
			rows = append(rows,
				pair("Tasa:", "Bs. "+formatNumber(s.ExchangeRate)+" / USD", false),
				pair("Equivalente:", formatAmount(other, money.Round2(eq)), false),
			)
		}
	}
	if r.Refunded.IsPositive() {
		rows = append(rows, pair("Devuelto:", "-"+formatAmount(s.Currency, r.Refunded), false))
	}
	return rows
}

// paymentRows: un renglón por pago; las ventas a crédito muestran el abono inicial, si hubo.
func paymentRows(r *sales.Receipt) []core.Row {
	if len(r.Payments) == 0 {
		return nil
	}
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("FORMA DE PAGO", props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 2}),
	))}
	for _, p := range r.Payments {
		rows = append(rows, row.New(4).Add(
			col.New(6).Add(text.New(paymentLabel(p.Method), props.Text{Size: 7, Left: 2})),
			col.New(6).Add(text.New(formatAmount(p.Currency, p.Amount), props.Text{Size: 7, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// footerRow: QR con el ID de la venta (para devoluciones) + leyenda.
func footerRow(r *sales.Receipt) core.Row {
	legend := "Gracias por su compra.\nPresente este recibo para cambios o devoluciones."
	if r.Sale.IsCredit && !r.Sale.Paid {
		legend = "Venta a crédito pendiente de pago.\nPresente este recibo al abonar."
	}
	return row.New(30).Add(
		col.New(4).Add(code.NewQr(r.Sale.ID, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New(legend, props.Text{Size: 8, Top: 6, Left: 3, Color: colorGray}),
			text.New("Documento no fiscal", props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 20, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func saleTitle(s entity.Sale) string {
	if s.IsCredit {
		return "NOTA DE VENTA A CRÉDITO"
	}
	return "NOTA DE VENTA"
}

// receiptNumber primeros 8 caracteres del ID, en mayúsculas.
func receiptNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func quantityLabel(l sales.ReceiptLine) string {
	if l.IsBox {
		return l.DisplayQuantity.String() + " cj"
	}
	return l.Quantity.String()
}

func paymentLabel(method string) string {
	switch method {
	case entity.PaymentCash:
		return "Efectivo"
	case entity.PaymentCard:
		return "Tarjeta"
	case entity.PaymentTransfer:
		return "Transferencia"
	case entity.PaymentMobile:
		return "Pago móvil"
	case entity.PaymentZelle:
		return "Zelle"
	}
	return method
}

// formatAmount antepone el símbolo de la moneda: "$ 1.234,50" o "Bs. 45.625,00".
func formatAmount(currency string, amount decimal.Decimal) string {
	symbol := "$"
	if currency == entity.CurrencyVES {
		symbol = "Bs."
	}
	return symbol + " " + formatNumber(amount)
}

// formatNumber separadores de miles y dos decimales según la convención en español.
func formatNumber(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
