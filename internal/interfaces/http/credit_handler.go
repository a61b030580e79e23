package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/application/credit"
	"github.com/jhoicas/branch-ledger/internal/application/dto"
	"github.com/jhoicas/branch-ledger/internal/application/retry"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/metrics"
)

// CreditHandler maneja clientes de crédito, notas y abonos (protegido).
type CreditHandler struct {
	uc      *credit.RiskUseCase
	retry   retry.Policy
	metrics *metrics.Metrics
}

// NewCreditHandler construye el handler.
func NewCreditHandler(uc *credit.RiskUseCase, policy retry.Policy, m *metrics.Metrics) *CreditHandler {
	return &CreditHandler{uc: uc, retry: policy, metrics: m}
}

// CreateCustomer godoc
// @Summary      Registrar cliente de crédito
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CustomerRequest  true  "Cliente"
// @Success      201   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/credit/customers [post]
func (h *CreditHandler) CreateCustomer(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	in.BranchID = branchOr(c, in.BranchID)
	cust, err := h.uc.CreateCustomer(c.UserContext(), in.Input())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCustomerResponse(cust))
}

// GetCustomer godoc
// @Summary      Obtener cliente de crédito
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id} [get]
func (h *CreditHandler) GetCustomer(c *fiber.Ctx) error {
	cust, err := h.uc.GetCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewCustomerResponse(cust))
}

// UpdateCustomer godoc
// @Summary      Modificar cliente de crédito
// @Description  Límite, días, política, contado y estado. La sucursal no cambia.
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del cliente"
// @Param        body  body  dto.CustomerRequest  true  "Cliente"
// @Success      200   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id} [put]
func (h *CreditHandler) UpdateCustomer(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	var cust *entity.CreditCustomer
	ctx := c.UserContext()
	err := h.retry.Do(ctx, func() error {
		var err error
		cust, err = h.uc.UpdateCustomer(ctx, c.Params("id"), in.Input())
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewCustomerResponse(cust))
}

// ListCustomers godoc
// @Summary      Clientes de crédito de una sucursal
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        branchId  path  string  true  "Sucursal"
// @Success      200  {array}  dto.CustomerResponse
// @Router       /api/branches/{branchId}/credit/customers [get]
func (h *CreditHandler) ListCustomers(c *fiber.Ctx) error {
	list, err := h.uc.ListCustomersByBranch(c.UserContext(), c.Params("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, cust := range list {
		out = append(out, dto.NewCustomerResponse(cust))
	}
	return c.JSON(out)
}

// Evaluate godoc
// @Summary      Evaluar venta a crédito
// @Description  No escribe nada. Un bloqueo se informa con allowed=false y su razón (VENCIDAS, LIMITE).
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del cliente"
// @Param        body  body  dto.EvaluateRequest  true  "sale_total"
// @Success      200   {object}  dto.DecisionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/credit/customers/{id}/evaluate [post]
func (h *CreditHandler) Evaluate(c *fiber.Ctx) error {
	var in dto.EvaluateRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	d, err := h.uc.Evaluate(c.UserContext(), c.Params("id"), in.SaleTotal)
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.CreditDecision(d.Allowed, d.Reason)
	return c.JSON(dto.NewDecisionResponse(*d))
}

// OpenNotes godoc
// @Summary      Notas abiertas del cliente
// @Description  Ordenadas por vencimiento.
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {array}  dto.CreditNoteResponse
// @Router       /api/credit/customers/{id}/notes [get]
func (h *CreditHandler) OpenNotes(c *fiber.Ctx) error {
	notes, err := h.uc.GetOpenNotes(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewCreditNoteList(notes))
}

// CreateNote godoc
// @Summary      Crear nota de crédito
// @Description  Cuenta por cobrar de una venta ya registrada. credit_days vacío usa los días del cliente.
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateNoteRequest  true  "Nota"
// @Success      201   {object}  dto.CreditNoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/credit/notes [post]
func (h *CreditHandler) CreateNote(c *fiber.Ctx) error {
	var in dto.CreateNoteRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	note := credit.CreateNoteInput{
		CustomerID:             in.CustomerID,
		Total:                  in.Total,
		CreditDays:             in.CreditDays,
		InventoryTransactionID: in.InventoryTransactionID,
		ActorID:                GetUserID(c),
	}
	var out *entity.CreditNote
	ctx := c.UserContext()
	err := h.retry.Do(ctx, func() error {
		var err error
		out, err = h.uc.CreateCreditNote(ctx, note)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCreditNoteResponse(out))
}

// ApplyPayments godoc
// @Summary      Aplicar abonos
// @Description  Cada abono se confirma por separado; los rechazados se informan en failed sin revertir los aplicados.
// @Tags         credit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PaymentsRequest  true  "Lote de abonos"
// @Success      200   {object}  dto.PaymentBatchResponse
// @Success      207   {object}  dto.PaymentBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/credit/payments [post]
func (h *CreditHandler) ApplyPayments(c *fiber.Ctx) error {
	var in dto.PaymentsRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	res, err := h.uc.ApplyPayments(c.UserContext(), GetUserID(c), in.Inputs())
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.PaymentsProcessed(len(res.Applied), len(res.Failed))

	out := dto.PaymentBatchResponse{
		Applied: make([]dto.PaymentResponse, 0, len(res.Applied)),
		Failed:  make([]dto.PaymentFailureResponse, 0, len(res.Failed)),
	}
	for _, p := range res.Applied {
		out.Applied = append(out.Applied, dto.NewPaymentResponse(p))
	}
	for _, f := range res.Failed {
		_, code := errorStatus(f.Err)
		out.Failed = append(out.Failed, dto.PaymentFailureResponse{
			Index:   f.Index,
			NoteID:  f.NoteID,
			Code:    code,
			Message: f.Err.Error(),
		})
	}
	status := fiber.StatusOK
	if len(out.Failed) > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(out)
}

// ListPayments godoc
// @Summary      Abonos de una nota
// @Tags         credit
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la nota"
// @Success      200  {array}   dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/credit/notes/{id}/payments [get]
func (h *CreditHandler) ListPayments(c *fiber.Ctx) error {
	list, err := h.uc.ListPayments(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewPaymentResponse(p))
	}
	return c.JSON(out)
}
