package entity

import "github.com/shopspring/decimal"

// PriceRule precio por volumen: a partir de MinQuantity unidades, Price reemplaza al precio base.
// Price se expresa por unidad base.
type PriceRule struct {
	ID          string
	ProductID   string
	MinQuantity decimal.Decimal
	Price       decimal.Decimal
}
