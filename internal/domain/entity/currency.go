package entity

// Monedas manejadas por la caja.
const (
	CurrencyUSD = "USD"
	CurrencyVES = "VES" // bolívares
)

// Métodos de pago conocidos. Cuáles cuentan como efectivo en la gaveta se configura (POS_CASH_METHODS).
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentMobile   = "PAGO_MOVIL"
	PaymentZelle    = "ZELLE"
)

// IsSupportedCurrency indica si la moneda es USD o VES.
func IsSupportedCurrency(c string) bool {
	return c == CurrencyUSD || c == CurrencyVES
}
