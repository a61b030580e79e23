package dto

import "github.com/jhoicas/branch-ledger/internal/application/checkout"

// CheckoutRequest body para POST /api/checkout.
type CheckoutRequest struct {
	BranchID     string                   `json:"branch_id"`
	PaymentType  string                   `json:"payment_type" validate:"required,oneof=CASH CREDIT"`
	CustomerID   string                   `json:"customer_id,omitempty" validate:"required_if=PaymentType CREDIT"`
	CustomerName string                   `json:"customer_name,omitempty"`
	CreditDays   *int                     `json:"credit_days,omitempty" validate:"omitempty,min=0"`
	PriceTier    string                   `json:"price_tier,omitempty" validate:"omitempty,oneof=RETAIL WHOLESALE"`
	Reference    string                   `json:"reference,omitempty" validate:"max=100"`
	Notes        string                   `json:"notes,omitempty"`
	Items        []TransactionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// Input convierte el request; actorID sale del token.
func (r CheckoutRequest) Input(actorID string) checkout.Input {
	return checkout.Input{
		BranchID:     r.BranchID,
		ActorID:      actorID,
		PaymentType:  r.PaymentType,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		CreditDays:   r.CreditDays,
		PriceTier:    r.PriceTier,
		Reference:    r.Reference,
		Notes:        r.Notes,
		Items:        itemInputs(r.Items),
	}
}

// CheckoutResponse venta registrada; note y decision solo a crédito.
type CheckoutResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Note        *CreditNoteResponse `json:"note,omitempty"`
	Decision    *DecisionResponse   `json:"decision,omitempty"`
}

// NewCheckoutResponse mapea el resultado.
func NewCheckoutResponse(res *checkout.Result) CheckoutResponse {
	out := CheckoutResponse{Transaction: NewTransactionResponse(res.Transaction)}
	if res.Note != nil {
		n := NewCreditNoteResponse(res.Note)
		out.Note = &n
	}
	if res.Decision != nil {
		d := NewDecisionResponse(*res.Decision)
		out.Decision = &d
	}
	return out
}
