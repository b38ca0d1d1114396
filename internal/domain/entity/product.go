package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida frecuentes en ferretería (texto libre, estas son las sugeridas).
const (
	UnitTypeUnit  = "UNIDAD"
	UnitTypeMeter = "METRO"
	UnitTypeKilo  = "KILO"
	UnitTypeLiter = "LITRO"
)

// Product representa un artículo del catálogo.
// Stock se expresa siempre en unidades base y solo cambia a través del kardex
// (ventas, devoluciones, compras y ajustes); Cost es promedio ponderado.
type Product struct {
	ID               string
	SKU              string // código de la ferretería, opcional pero único
	Name             string
	Description      string
	Price            decimal.Decimal // precio de venta por unidad base (moneda del catálogo)
	Cost             decimal.Decimal // costo promedio ponderado por unidad base
	Stock            decimal.Decimal // unidades base, nunca negativo
	IsBox            bool            // se puede vender por caja/bulto
	ConversionFactor decimal.Decimal // unidades base por caja (>= 1)
	UnitType         string
	MinStock         decimal.Decimal
	// TierPrices precio base alternativo por nivel de precio (ej. "MAYOR", "ESPECIAL").
	// Un precio 0 o ausente cae al Price normal.
	TierPrices map[string]decimal.Decimal
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UnitsPerBox devuelve el factor de conversión, 1 si no está definido.
func (p *Product) UnitsPerBox() decimal.Decimal {
	if p.ConversionFactor.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.ConversionFactor
}

// IsLowStock indica si el stock está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.MinStock.GreaterThan(decimal.Zero) && p.Stock.LessThanOrEqual(p.MinStock)
}

// Clone devuelve una copia profunda (TierPrices incluido).
func (p Product) Clone() Product {
	if p.TierPrices != nil {
		tiers := make(map[string]decimal.Decimal, len(p.TierPrices))
		for k, v := range p.TierPrices {
			tiers[k] = v
		}
		p.TierPrices = tiers
	}
	return p
}
