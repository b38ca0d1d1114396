package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
)

// CartHandler carrito por terminal y cierre de la venta.
type CartHandler struct {
	carts    *sales.CartUseCase
	finalize *sales.FinalizeSaleUseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(carts *sales.CartUseCase, finalize *sales.FinalizeSaleUseCase) *CartHandler {
	return &CartHandler{carts: carts, finalize: finalize}
}

// Get carrito actual del terminal (vacío si no existe).
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.carts.GetCart(c.UserContext(), c.Params("cartID"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddLine godoc
// @Summary      Agregar producto al carrito
// @Tags         carts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        cartID  path  string                true  "ID del carrito (terminal)"
// @Param        body    body  dto.AddToCartRequest  true  "Producto (ID o SKU), cantidad, caja"
// @Success      200     {object}  dto.CartResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/carts/{cartID}/lines [post]
func (h *CartHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddToCartRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.carts.AddToCart(c.UserContext(), c.Params("cartID"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateLine cambia la cantidad de una línea y vuelve a resolver su precio.
func (h *CartHandler) UpdateLine(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "INVALID_INDEX", "index debe ser numérico")
	}
	var in dto.UpdateCartLineRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.carts.UpdateCartLine(c.UserContext(), c.Params("cartID"), idx, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RemoveLine quita una línea del carrito.
func (h *CartHandler) RemoveLine(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "INVALID_INDEX", "index debe ser numérico")
	}
	out, err := h.carts.RemoveCartLine(c.UserContext(), c.Params("cartID"), idx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ApplyDiscount descuento por línea (line_index) o a todo el carrito.
func (h *CartHandler) ApplyDiscount(c *fiber.Ctx) error {
	var in dto.ApplyDiscountRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.carts.ApplyDiscount(c.UserContext(), c.Params("cartID"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Clear descarta el carrito.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.carts.ClearCart(c.UserContext(), c.Params("cartID")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar la venta del carrito
// @Description  Descuenta stock, escribe el kardex y registra los pagos en una sola transacción.
// @Tags         carts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        cartID  path  string               true  "ID del carrito (terminal)"
// @Param        body    body  dto.CheckoutRequest  true  "Moneda, tasa, pagos o crédito"
// @Success      201     {object}  dto.SaleResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/carts/{cartID}/checkout [post]
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.finalize.FinalizeSale(c.UserContext(), c.Params("cartID"), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
