// Package pricing resuelve el precio efectivo de una línea: nivel de precio, precio por volumen
// y conversión caja/unidad.
package pricing

import (
	"fmt"
	"sort"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RuleSet reglas de un producto ordenadas por MinQuantity ascendente.
type RuleSet []entity.PriceRule

// NewRuleSet copia y ordena las reglas. Con umbrales repetidos gana la última recibida.
func NewRuleSet(rules []*entity.PriceRule) RuleSet {
	rs := make(RuleSet, 0, len(rules))
	for _, r := range rules {
		if r != nil {
			rs = append(rs, *r)
		}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].MinQuantity.LessThan(rs[j].MinQuantity)
	})
	return rs
}

// Match devuelve la regla con el mayor MinQuantity <= qty.
func (rs RuleSet) Match(qty decimal.Decimal) (entity.PriceRule, bool) {
	i := sort.Search(len(rs), func(i int) bool {
		return rs[i].MinQuantity.GreaterThan(qty)
	})
	if i == 0 {
		return entity.PriceRule{}, false
	}
	return rs[i-1], true
}

// Quote resultado de resolver el precio de una línea.
type Quote struct {
	UnitPrice     decimal.Decimal // precio por unidad solicitada (por caja si IsBox)
	BaseUnitPrice decimal.Decimal // precio por unidad base
	UnitsPerItem  decimal.Decimal // unidades base por unidad solicitada
	BaseUnits     decimal.Decimal // quantity × UnitsPerItem
	Rule          *entity.PriceRule
}

// Resolve calcula el precio de quantity unidades (o cajas si isBox) del producto.
// Orden: precio del nivel (si existe y > 0) o precio normal; luego la regla por volumen
// que aplique a quantity; por último el factor de la caja.
func Resolve(product *entity.Product, rules RuleSet, quantity decimal.Decimal, isBox bool, tier string) (Quote, error) {
	if !quantity.IsPositive() {
		return Quote{}, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, quantity)
	}
	if isBox && !product.IsBox {
		return Quote{}, fmt.Errorf("%w: %s", domain.ErrNotSellableByBox, product.Name)
	}

	factor := decimal.NewFromInt(1)
	if isBox {
		if product.ConversionFactor.LessThan(factor) {
			panic(fmt.Sprintf("pricing: producto %s con factor de conversión %s", product.ID, product.ConversionFactor))
		}
		factor = product.ConversionFactor
	}

	base := product.Price
	if tier != "" {
		if p, ok := product.TierPrices[tier]; ok && p.IsPositive() {
			base = p
		}
	}

	q := Quote{UnitsPerItem: factor, BaseUnits: quantity.Mul(factor)}
	if rule, ok := rules.Match(quantity); ok {
		base = rule.Price
		q.Rule = &rule
	}
	q.BaseUnitPrice = base
	q.UnitPrice = base.Mul(factor)
	return q, nil
}
