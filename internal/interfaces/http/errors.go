package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/application/dto"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/credit"
)

// LocalErrorCode guarda el código de error de la respuesta para el middleware de métricas.
const LocalErrorCode = "error_code"

// requestError error de la capa HTTP (cuerpo ilegible, validación de DTO).
type requestError struct {
	status  int
	code    string
	message string
	details interface{}
}

func (e *requestError) Error() string { return e.message }

var errInvalidBody = &requestError{status: fiber.StatusBadRequest, code: "INVALID_BODY", message: "cuerpo inválido"}

// errorStatus traduce un error de dominio a status y código HTTP.
func errorStatus(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.code
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrHistoryLocked):
		return fiber.StatusConflict, "HISTORY_LOCKED"
	case errors.Is(err, domain.ErrCreditBlocked):
		return fiber.StatusUnprocessableEntity, "CREDIT_BLOCKED"
	case errors.Is(err, domain.ErrExceedsBalance):
		return fiber.StatusUnprocessableEntity, "EXCEEDS_BALANCE"
	case errors.Is(err, domain.ErrInvalidPurpose):
		return fiber.StatusUnprocessableEntity, "INVALID_PURPOSE"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// respondError escribe el cuerpo de error. Los rechazos de stock y de crédito llevan el detalle
// que necesita el punto de venta para decidir (disponible, notas vencidas).
func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	c.Locals(LocalErrorCode, code)
	body := dto.ErrorResponse{Code: code, Message: err.Error()}

	var (
		reqErr   *requestError
		valErr   *domain.ValidationError
		stockErr *domain.InsufficientStockError
		blocked  *credit.BlockedError
	)
	switch {
	case errors.As(err, &reqErr):
		body.Message = reqErr.message
		body.Details = reqErr.details
	case errors.As(err, &valErr):
		if valErr.Field != "" {
			body.Details = map[string]string{valErr.Field: valErr.Reason}
		}
	case errors.As(err, &stockErr):
		body.Details = fiber.Map{
			"branch_id":  stockErr.BranchID,
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		}
	case errors.As(err, &blocked):
		body.Details = dto.NewDecisionResponse(blocked.Decision)
	}
	if status == fiber.StatusInternalServerError {
		body.Message = "error interno"
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler manejador de Fiber para errores que no escribió un handler (rutas inexistentes, panics recuperados).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		c.Locals(LocalErrorCode, "HTTP_ERROR")
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
	}
	return respondError(c, err)
}
