package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

// statusByCode código estable de dominio → status HTTP. Lo que no está aquí es 500.
var statusByCode = map[string]int{
	"NOT_FOUND":               fiber.StatusNotFound,
	"VALIDATION":              fiber.StatusBadRequest,
	"INVALID_QUANTITY":        fiber.StatusBadRequest,
	"NOT_SELLABLE_BY_BOX":     fiber.StatusBadRequest,
	"PAYMENT_MISMATCH":        fiber.StatusBadRequest,
	"MISSING_CUSTOMER":        fiber.StatusBadRequest,
	"PRODUCT_NOT_IN_SALE":     fiber.StatusBadRequest,
	"INVALID_RETURN_QUANTITY": fiber.StatusBadRequest,
	"INSUFFICIENT_STOCK":      fiber.StatusConflict,
	"NO_OPEN_SESSION":         fiber.StatusConflict,
	"SESSION_ALREADY_OPEN":    fiber.StatusConflict,
	"CREDIT_LIMIT_EXCEEDED":   fiber.StatusConflict,
	"DUPLICATE_SKU":           fiber.StatusConflict,
	"DUPLICATE":               fiber.StatusConflict,
	"EMAIL_EXISTS":            fiber.StatusConflict,
	"UNAUTHORIZED":            fiber.StatusUnauthorized,
	"FORBIDDEN":               fiber.StatusForbidden,
}

// StatusFor status HTTP para el error (por su código de dominio).
func StatusFor(err error) int {
	if s, ok := statusByCode[domain.Code(err)]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// writeError responde con dto.ErrorResponse. Los errores internos no exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status := StatusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler manejador global de Fiber: errores de Fiber conservan su status, el resto
// se traduce por código de dominio y los 500 se registran.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		if StatusFor(err) == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		}
		return writeError(c, err)
	}
}

// validationMessage primer campo inválido en formato legible.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fe.Field() + ": " + fe.Tag() + "=" + fe.Param()
		}
		return fe.Field() + ": " + fe.Tag()
	}
	return err.Error()
}
