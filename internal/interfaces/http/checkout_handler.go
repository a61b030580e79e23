package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/application/checkout"
	"github.com/jhoicas/branch-ledger/internal/application/dto"
	"github.com/jhoicas/branch-ledger/internal/domain/credit"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/metrics"
)

// CheckoutHandler venta del punto de venta, de contado o a crédito (protegido).
type CheckoutHandler struct {
	uc      *checkout.CheckoutUseCase
	metrics *metrics.Metrics
}

// NewCheckoutHandler construye el handler.
func NewCheckoutHandler(uc *checkout.CheckoutUseCase, m *metrics.Metrics) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, metrics: m}
}

// Checkout godoc
// @Summary      Registrar venta
// @Description  CASH descuenta stock. CREDIT además evalúa al cliente y crea la nota en la misma
//
//	transacción; si el crédito no procede responde 422 CREDIT_BLOCKED con la evaluación en details.
//	CASH con customer_id también evalúa y responde 422 si el cliente bloqueado no admite contado.
//
// @Tags         checkout
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Venta"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/checkout [post]
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	in.BranchID = branchOr(c, in.BranchID)
	res, err := h.uc.Checkout(c.UserContext(), in.Input(GetUserID(c)))
	if err != nil {
		var blocked *credit.BlockedError
		if errors.As(err, &blocked) {
			h.metrics.CreditDecision(false, blocked.Decision.Reason)
		}
		return respondError(c, err)
	}
	if res.Decision != nil {
		h.metrics.CreditDecision(res.Decision.Allowed, res.Decision.Reason)
	}
	h.metrics.TransactionPosted(res.Transaction.Type)
	return c.Status(fiber.StatusCreated).JSON(dto.NewCheckoutResponse(res))
}
