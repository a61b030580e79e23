package credit

import (
	"fmt"
	"time"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Razones de bloqueo de una venta a crédito.
const (
	ReasonOverdue = "VENCIDAS"
	ReasonLimit   = "LIMITE"
)

// Decision resultado de evaluar una venta a crédito.
// Limit, Balance y Available se informan siempre, aun cuando hay vencidas.
type Decision struct {
	Allowed         bool
	Reason          string
	OverdueNotes    []*entity.CreditNote
	Limit           decimal.Decimal
	Balance         decimal.Decimal
	Available       decimal.Decimal
	SaleTotal       decimal.Decimal
	CashAllowed     bool // el cliente puede pagar de contado aunque el crédito esté bloqueado
	CanPayToUnblock bool // BLOQUEO_PARCIAL: abonar a las vencidas y reevaluar
}

// Evaluate decide si saleTotal puede registrarse como cuenta por cobrar.
// Función pura de (cliente, notas, total, now): no consulta reloj ni almacenamiento.
//
//  1. Notas abiertas (balance > 0) y vencidas (dueDate < now).
//  2. Con vencidas: bloqueo VENCIDAS sin importar el límite.
//  3. Sin vencidas: available = límite - Σ balances; saleTotal > available => LIMITE.
func Evaluate(customer *entity.CreditCustomer, notes []*entity.CreditNote, saleTotal decimal.Decimal, now time.Time) Decision {
	d := Decision{
		Limit:     customer.CreditLimit,
		Balance:   decimal.Zero,
		SaleTotal: saleTotal,
	}
	for _, n := range notes {
		if n.CustomerID != customer.ID || !n.IsOpen() {
			continue
		}
		d.Balance = d.Balance.Add(n.Balance)
		if n.IsOverdue(now) {
			d.OverdueNotes = append(d.OverdueNotes, n)
		}
	}
	d.Available = d.Limit.Sub(d.Balance)

	switch {
	case len(d.OverdueNotes) > 0:
		d.Reason = ReasonOverdue
		d.CanPayToUnblock = customer.Policy == entity.CreditPolicyPartial
	case saleTotal.GreaterThan(d.Available):
		d.Reason = ReasonLimit
	default:
		d.Allowed = true
		return d
	}
	d.CashAllowed = customer.AllowCashOnBlock
	return d
}

// BlockedError error devuelto cuando una venta a crédito no procede.
type BlockedError struct {
	Decision Decision
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s (disponible=%s, total=%s)",
		domain.ErrCreditBlocked, e.Decision.Reason, e.Decision.Available, e.Decision.SaleTotal)
}

func (e *BlockedError) Is(target error) bool { return target == domain.ErrCreditBlocked }
