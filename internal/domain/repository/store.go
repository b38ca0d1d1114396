package repository

// Store agrupa los repositorios que comparten una misma conexión o transacción.
// Las implementaciones atadas a una transacción se obtienen vía ports.TxRunner.
type Store interface {
	Products() ProductRepository
	PriceRules() PriceRuleRepository
	Kardex() KardexRepository
	Sales() SaleRepository
	CashSessions() CashSessionRepository
	Returns() ReturnRepository
	Customers() CustomerRepository
	Users() UserRepository
}
