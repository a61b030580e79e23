package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Políticas de crédito ante notas vencidas.
const (
	CreditPolicyTotal   = "BLOQUEO_TOTAL"   // bloquea venta a crédito
	CreditPolicyPartial = "BLOQUEO_PARCIAL" // bloquea, pero se puede abonar a las vencidas y reevaluar
)

// ValidCreditPolicy valida la política.
func ValidCreditPolicy(p string) bool {
	return p == CreditPolicyTotal || p == CreditPolicyPartial
}

// CreditCustomer cliente con línea de crédito en una sucursal.
// AllowCashOnBlock permite cobrar de contado cuando el crédito queda bloqueado.
type CreditCustomer struct {
	ID                string
	BranchID          string
	Name              string
	CreditLimit       decimal.Decimal
	DefaultCreditDays int
	Policy            string
	AllowCashOnBlock  bool
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreditNote cuenta por cobrar generada por una venta a crédito.
// Balance = Total - suma de abonos; nunca negativo.
type CreditNote struct {
	ID                     string
	CustomerID             string
	BranchID               string
	Folio                  string
	IssueDate              time.Time
	DueDate                time.Time
	Total                  decimal.Decimal
	Balance                decimal.Decimal
	InventoryTransactionID string
	CreatedBy              string
	CreatedAt              time.Time
}

// IsOpen nota con saldo pendiente.
func (n *CreditNote) IsOpen() bool { return n.Balance.IsPositive() }

// IsOverdue nota abierta con vencimiento anterior a now.
func (n *CreditNote) IsOverdue(now time.Time) bool {
	return n.IsOpen() && n.DueDate.Before(now)
}

// CreditPayment abono aplicado a una nota.
type CreditPayment struct {
	ID        string
	NoteID    string
	Amount    decimal.Decimal
	Method    string // efectivo, transferencia, ...
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}
