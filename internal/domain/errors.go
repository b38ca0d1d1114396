package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Son tipos de error, no excepciones: cada operación los retorna y el llamador compara con errors.Is.
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrInvalidQuantity       = errors.New("cantidad inválida")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrNotSellableByBox      = errors.New("el producto no se vende por caja")
	ErrNoOpenSession         = errors.New("no hay una sesión de caja abierta")
	ErrSessionAlreadyOpen    = errors.New("ya existe una sesión de caja abierta")
	ErrPaymentMismatch       = errors.New("los pagos no cuadran con el total de la venta")
	ErrMissingCustomer       = errors.New("la venta a crédito requiere un cliente")
	ErrCreditLimitExceeded   = errors.New("la venta excede el límite de crédito del cliente")
	ErrProductNotInSale      = errors.New("el producto no pertenece a la venta")
	ErrInvalidReturnQuantity = errors.New("la cantidad a devolver excede la vendida")
	ErrDuplicateSKU          = errors.New("el SKU ya está registrado")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrEmailAlreadyExists    = errors.New("el email ya está registrado")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
)

// codes asocia cada error de dominio con su código estable (el que ven la API y los logs).
var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "NOT_FOUND"},
	{ErrInvalidInput, "VALIDATION"},
	{ErrInvalidQuantity, "INVALID_QUANTITY"},
	{ErrInsufficientStock, "INSUFFICIENT_STOCK"},
	{ErrNotSellableByBox, "NOT_SELLABLE_BY_BOX"},
	{ErrNoOpenSession, "NO_OPEN_SESSION"},
	{ErrSessionAlreadyOpen, "SESSION_ALREADY_OPEN"},
	{ErrPaymentMismatch, "PAYMENT_MISMATCH"},
	{ErrMissingCustomer, "MISSING_CUSTOMER"},
	{ErrCreditLimitExceeded, "CREDIT_LIMIT_EXCEEDED"},
	{ErrProductNotInSale, "PRODUCT_NOT_IN_SALE"},
	{ErrInvalidReturnQuantity, "INVALID_RETURN_QUANTITY"},
	{ErrDuplicateSKU, "DUPLICATE_SKU"},
	{ErrDuplicate, "DUPLICATE"},
	{ErrEmailAlreadyExists, "EMAIL_EXISTS"},
	{ErrUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, "FORBIDDEN"},
}

// CodeInternal código para errores que no son de dominio (fallos de infraestructura).
const CodeInternal = "INTERNAL"

// Code devuelve el código del primer error de dominio encontrado en la cadena de err.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsDomain indica si err es (o envuelve) un error de dominio.
func IsDomain(err error) bool {
	return err != nil && Code(err) != CodeInternal
}
