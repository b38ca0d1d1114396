package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ferreteria-api/internal/application/cash"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
)

// CashHandler sesiones de caja, movimientos y arqueo.
type CashHandler struct {
	m *cash.Manager
}

// NewCashHandler construye el handler.
func NewCashHandler(m *cash.Manager) *CashHandler {
	return &CashHandler{m: m}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenCashSessionRequest  true  "Fondo inicial USD / Bs"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions [post]
func (h *CashHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashSessionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.m.Open(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Current sesión abierta.
func (h *CashHandler) Current(c *fiber.Ctx) error {
	out, err := h.m.Current(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get sesión por ID.
func (h *CashHandler) Get(c *fiber.Ctx) error {
	out, err := h.m.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List historial de sesiones.
func (h *CashHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	out, err := h.m.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RecordMovement godoc
// @Summary      Registrar depósito, gasto o retiro
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CashMovementRequest  true  "Tipo, monto y moneda"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/movements [post]
func (h *CashHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.m.RecordMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements movimientos de una sesión.
func (h *CashHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.m.ListMovements(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance arqueo parcial de la sesión abierta.
func (h *CashHandler) Balance(c *fiber.Ctx) error {
	out, err := h.m.Balance(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseCashSessionRequest  true  "Efectivo contado USD / Bs"
// @Success      200   {object}  dto.ClosingReportResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cash/sessions/close [post]
func (h *CashHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCashSessionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.m.Close(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
