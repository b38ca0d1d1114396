package cart

import (
	"errors"
	"testing"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(productID, price, qty string) Line {
	return Line{
		ProductID:     productID,
		Name:          productID,
		Quantity:      d(qty),
		UnitPrice:     d(price),
		BaseUnitPrice: d(price),
		UnitsPerItem:  decimal.NewFromInt(1),
	}
}

func TestCart_AddYTotal(t *testing.T) {
	c := New("caja-1")
	c.Add(line("martillo", "15", "2"))
	c.Add(line("clavos", "0.10", "100"))

	assert.True(t, c.Total().Equal(d("40")))
	assert.True(t, c.Gross().Equal(d("40")))
	assert.True(t, c.DiscountTotal().IsZero())
	assert.Equal(t, 0, c.Find("martillo", false, ""))
	assert.Equal(t, -1, c.Find("martillo", true, ""))
}

func TestCart_DescuentoPorLinea(t *testing.T) {
	c := New("caja-1")
	c.Add(line("martillo", "15", "2"))

	require.NoError(t, c.ApplyDiscount(0, d("10"), DiscountPercent))
	assert.True(t, c.Lines[0].Subtotal.Equal(d("27")))

	require.NoError(t, c.ApplyDiscount(0, d("5"), DiscountFixed))
	assert.True(t, c.Lines[0].Subtotal.Equal(d("25")))

	err := c.ApplyDiscount(0, d("31"), DiscountFixed)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	err = c.ApplyDiscount(0, d("101"), DiscountPercent)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	err = c.ApplyDiscount(3, d("1"), DiscountPercent)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCart_DescuentoFijoGlobalProporcional(t *testing.T) {
	c := New("caja-1")
	c.Add(line("a", "10", "1"))
	c.Add(line("b", "10", "1"))
	c.Add(line("c", "10", "1"))

	require.NoError(t, c.ApplyDiscount(AllLines, d("10"), DiscountFixed))

	assert.True(t, c.Lines[0].Discount.Equal(d("3.33")))
	assert.True(t, c.Lines[1].Discount.Equal(d("3.33")))
	assert.True(t, c.Lines[2].Discount.Equal(d("3.34")))
	assert.True(t, c.Total().Equal(d("20")))
}

func TestCart_DescuentoPorcentualGlobal(t *testing.T) {
	c := New("caja-1")
	c.Add(line("a", "20", "1"))
	c.Add(line("b", "30", "1"))

	require.NoError(t, c.ApplyDiscount(AllLines, d("10"), DiscountPercent))
	assert.True(t, c.Total().Equal(d("45")))
}

func TestCart_ReplaceConservaDescuento(t *testing.T) {
	c := New("caja-1")
	c.Add(line("a", "10", "2"))
	require.NoError(t, c.ApplyDiscount(0, d("50"), DiscountPercent))

	require.NoError(t, c.Replace(0, line("a", "9", "4")))
	assert.True(t, c.Lines[0].Gross.Equal(d("36")))
	assert.True(t, c.Lines[0].Subtotal.Equal(d("18")))
}

func TestCart_FijoSeRecortaAlReducirCantidad(t *testing.T) {
	c := New("caja-1")
	c.Add(line("a", "10", "3"))
	require.NoError(t, c.ApplyDiscount(0, d("25"), DiscountFixed))

	require.NoError(t, c.Replace(0, line("a", "10", "2")))
	assert.True(t, c.Lines[0].Subtotal.IsZero())
}

func TestCart_BaseUnitsFor(t *testing.T) {
	c := New("caja-1")
	box := line("tornillo", "120", "1")
	box.IsBox = true
	box.UnitsPerItem = d("12")
	c.Add(box)
	c.Add(line("tornillo", "10", "3"))

	assert.True(t, c.BaseUnitsFor("tornillo", -1).Equal(d("15")))
	assert.True(t, c.BaseUnitsFor("tornillo", 0).Equal(d("3")))
	assert.True(t, c.BaseUnitsFor("otro", -1).IsZero())
}

func TestCart_Remove(t *testing.T) {
	c := New("caja-1")
	c.Add(line("a", "1", "1"))
	c.Add(line("b", "1", "1"))
	require.NoError(t, c.Remove(0))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "b", c.Lines[0].ProductID)
	assert.Error(t, c.Remove(5))
}
