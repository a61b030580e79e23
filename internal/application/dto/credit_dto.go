package dto

import (
	"time"

	"github.com/jhoicas/branch-ledger/internal/application/credit"
	creditrules "github.com/jhoicas/branch-ledger/internal/domain/credit"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerRequest alta de cliente de crédito.
type CustomerRequest struct {
	BranchID          string          `json:"branch_id"`
	Name              string          `json:"name" validate:"required,max=200"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	DefaultCreditDays int             `json:"default_credit_days" validate:"min=0"`
	Policy            string          `json:"policy" validate:"required,oneof=BLOQUEO_TOTAL BLOQUEO_PARCIAL"`
	AllowCashOnBlock  bool            `json:"allow_cash_on_block"`
	IsActive          *bool           `json:"is_active,omitempty"`
}

// Input convierte el request.
func (r CustomerRequest) Input() credit.CustomerInput {
	return credit.CustomerInput{
		BranchID:          r.BranchID,
		Name:              r.Name,
		CreditLimit:       r.CreditLimit,
		DefaultCreditDays: r.DefaultCreditDays,
		Policy:            r.Policy,
		AllowCashOnBlock:  r.AllowCashOnBlock,
		IsActive:          r.IsActive,
	}
}

// CustomerResponse salida de un cliente de crédito.
type CustomerResponse struct {
	ID                string          `json:"id"`
	BranchID          string          `json:"branch_id"`
	Name              string          `json:"name"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	DefaultCreditDays int             `json:"default_credit_days"`
	Policy            string          `json:"policy"`
	AllowCashOnBlock  bool            `json:"allow_cash_on_block"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// EvaluateRequest total de la venta a evaluar.
type EvaluateRequest struct {
	SaleTotal decimal.Decimal `json:"sale_total"`
}

// DecisionResponse resultado de la evaluación. Limit, Balance y Available siempre presentes.
type DecisionResponse struct {
	Allowed         bool                 `json:"allowed"`
	Reason          string               `json:"reason,omitempty"`
	Limit           decimal.Decimal      `json:"limit"`
	Balance         decimal.Decimal      `json:"balance"`
	Available       decimal.Decimal      `json:"available"`
	SaleTotal       decimal.Decimal      `json:"sale_total"`
	CashAllowed     bool                 `json:"cash_allowed"`
	CanPayToUnblock bool                 `json:"can_pay_to_unblock"`
	OverdueNotes    []CreditNoteResponse `json:"overdue_notes"`
}

// CreateNoteRequest body para POST /api/credit/notes.
type CreateNoteRequest struct {
	CustomerID             string          `json:"customer_id" validate:"required"`
	Total                  decimal.Decimal `json:"total"`
	CreditDays             *int            `json:"credit_days,omitempty" validate:"omitempty,min=0"`
	InventoryTransactionID string          `json:"inventory_transaction_id" validate:"required"`
}

// CreditNoteResponse cuenta por cobrar.
type CreditNoteResponse struct {
	ID                     string          `json:"id"`
	CustomerID             string          `json:"customer_id"`
	BranchID               string          `json:"branch_id"`
	Folio                  string          `json:"folio"`
	IssueDate              time.Time       `json:"issue_date"`
	DueDate                time.Time       `json:"due_date"`
	Total                  decimal.Decimal `json:"total"`
	Balance                decimal.Decimal `json:"balance"`
	InventoryTransactionID string          `json:"inventory_transaction_id,omitempty"`
	CreatedBy              string          `json:"created_by"`
}

// PaymentRequest abono a una nota.
type PaymentRequest struct {
	NoteID string          `json:"note_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required,max=50"`
	Notes  string          `json:"notes,omitempty"`
}

// PaymentsRequest lote de abonos. Cada abono se confirma por separado.
type PaymentsRequest struct {
	Payments []PaymentRequest `json:"payments" validate:"required,min=1,dive"`
}

// Inputs convierte el lote.
func (r PaymentsRequest) Inputs() []credit.PaymentInput {
	out := make([]credit.PaymentInput, 0, len(r.Payments))
	for _, p := range r.Payments {
		out = append(out, credit.PaymentInput{NoteID: p.NoteID, Amount: p.Amount, Method: p.Method, Notes: p.Notes})
	}
	return out
}

// PaymentResponse abono registrado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	NoteID    string          `json:"note_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentFailureResponse abono rechazado dentro del lote.
type PaymentFailureResponse struct {
	Index   int    `json:"index"`
	NoteID  string `json:"note_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaymentBatchResponse resultado del lote.
type PaymentBatchResponse struct {
	Applied []PaymentResponse        `json:"applied"`
	Failed  []PaymentFailureResponse `json:"failed"`
}

// NewCustomerResponse mapea la entidad.
func NewCustomerResponse(c *entity.CreditCustomer) CustomerResponse {
	return CustomerResponse{
		ID:                c.ID,
		BranchID:          c.BranchID,
		Name:              c.Name,
		CreditLimit:       c.CreditLimit,
		DefaultCreditDays: c.DefaultCreditDays,
		Policy:            c.Policy,
		AllowCashOnBlock:  c.AllowCashOnBlock,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// NewCreditNoteResponse mapea la entidad.
func NewCreditNoteResponse(n *entity.CreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:                     n.ID,
		CustomerID:             n.CustomerID,
		BranchID:               n.BranchID,
		Folio:                  n.Folio,
		IssueDate:              n.IssueDate,
		DueDate:                n.DueDate,
		Total:                  n.Total,
		Balance:                n.Balance,
		InventoryTransactionID: n.InventoryTransactionID,
		CreatedBy:              n.CreatedBy,
	}
}

// NewCreditNoteList mapea una lista de notas.
func NewCreditNoteList(notes []*entity.CreditNote) []CreditNoteResponse {
	out := make([]CreditNoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewCreditNoteResponse(n))
	}
	return out
}

// NewDecisionResponse mapea la decisión de crédito.
func NewDecisionResponse(d creditrules.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed:         d.Allowed,
		Reason:          d.Reason,
		Limit:           d.Limit,
		Balance:         d.Balance,
		Available:       d.Available,
		SaleTotal:       d.SaleTotal,
		CashAllowed:     d.CashAllowed,
		CanPayToUnblock: d.CanPayToUnblock,
		OverdueNotes:    NewCreditNoteList(d.OverdueNotes),
	}
}

// NewPaymentResponse mapea la entidad.
func NewPaymentResponse(p *entity.CreditPayment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		NoteID:    p.NoteID,
		Amount:    p.Amount,
		Method:    p.Method,
		Notes:     p.Notes,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}
