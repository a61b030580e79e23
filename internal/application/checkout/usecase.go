package checkout

import (
	"context"

	"github.com/jhoicas/branch-ledger/internal/application/credit"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/application/retry"
	"github.com/jhoicas/branch-ledger/internal/domain"
	creditrules "github.com/jhoicas/branch-ledger/internal/domain/credit"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
)

// Formas de pago del punto de venta.
const (
	PaymentCash   = "CASH"
	PaymentCredit = "CREDIT"
)

// Input venta del punto de venta.
type Input struct {
	BranchID     string
	ActorID      string
	PaymentType  string
	CustomerID   string // requerido en CREDIT; opcional en CASH
	CustomerName string
	CreditDays   *int
	PriceTier    string
	Reference    string
	Notes        string
	Items        []inventory.ItemInput
}

// Result venta registrada. Note solo en CREDIT; Decision cuando hay cliente.
type Result struct {
	Transaction *entity.InventoryTransaction
	Note        *entity.CreditNote
	Decision    *creditrules.Decision
}

// CheckoutUseCase registra la venta y, si es a crédito, evalúa al cliente y crea la nota
// en la misma transacción que descuenta el stock.
type CheckoutUseCase struct {
	txRunner repository.TxRunner
	ledger   *inventory.LedgerUseCase
	risk     *credit.RiskUseCase
	retry    retry.Policy
}

// NewCheckoutUseCase construye el caso de uso. policy acota los reintentos ante domain.ErrConflict.
func NewCheckoutUseCase(txRunner repository.TxRunner, ledger *inventory.LedgerUseCase, risk *credit.RiskUseCase, policy retry.Policy) *CheckoutUseCase {
	return &CheckoutUseCase{txRunner: txRunner, ledger: ledger, risk: risk, retry: policy}
}

// Checkout ejecuta la venta. Con cliente bloquea su fila y lo evalúa: en CREDIT una evaluación
// no aprobada devuelve *credit.BlockedError sin escribir nada; en CASH solo si además el cliente
// no admite contado bajo bloqueo.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in Input) (*Result, error) {
	switch in.PaymentType {
	case PaymentCash:
	case PaymentCredit:
		if in.CustomerID == "" {
			return nil, domain.Invalid("customer_id", "requerido en ventas a crédito")
		}
	default:
		return nil, domain.Invalid("payment_type", "CASH o CREDIT")
	}

	var res *Result
	err := uc.retry.Do(ctx, func() error {
		res = nil
		return uc.txRunner.Run(ctx, func(r repository.Repos) error {
			out, err := uc.run(ctx, r, in)
			if err != nil {
				return err
			}
			res = out
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *CheckoutUseCase) run(ctx context.Context, r repository.Repos, in Input) (*Result, error) {
	post := inventory.PostInput{
		Type:         entity.TransactionTypeSale,
		BranchID:     in.BranchID,
		ActorID:      in.ActorID,
		Reference:    in.Reference,
		Notes:        in.Notes,
		CustomerName: in.CustomerName,
		PriceTier:    in.PriceTier,
		Items:        in.Items,
	}

	if in.PaymentType == PaymentCash && in.CustomerID == "" {
		txn, err := uc.ledger.PostTransactionInTx(ctx, r, post)
		if err != nil {
			return nil, err
		}
		return &Result{Transaction: txn}, nil
	}

	customer, err := uc.lockCustomer(ctx, r, in.CustomerID, in.BranchID)
	if err != nil {
		return nil, err
	}
	if post.CustomerName == "" {
		post.CustomerName = customer.Name
	}

	txn, err := uc.ledger.Prepare(ctx, r, post)
	if err != nil {
		return nil, err
	}
	decision, err := uc.risk.EvaluateInTx(ctx, r, customer, txn.Total())
	if err != nil {
		return nil, err
	}

	if in.PaymentType == PaymentCash {
		// contado con cliente bloqueado: solo si su política admite contado
		if !decision.Allowed && !decision.CashAllowed {
			return nil, &creditrules.BlockedError{Decision: *decision}
		}
		if err := uc.ledger.Apply(ctx, r, txn); err != nil {
			return nil, err
		}
		return &Result{Transaction: txn, Decision: decision}, nil
	}

	if !decision.Allowed {
		return nil, &creditrules.BlockedError{Decision: *decision}
	}
	if err := uc.ledger.Apply(ctx, r, txn); err != nil {
		return nil, err
	}
	note, err := uc.risk.CreateCreditNoteInTx(ctx, r, customer, credit.CreateNoteInput{
		CustomerID:             customer.ID,
		Total:                  txn.Total(),
		CreditDays:             in.CreditDays,
		InventoryTransactionID: txn.ID,
		ActorID:                in.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Transaction: txn, Note: note, Decision: decision}, nil
}

// lockCustomer bloquea la fila del cliente; serializa sus ventas concurrentes.
func (uc *CheckoutUseCase) lockCustomer(ctx context.Context, r repository.Repos, customerID, branchID string) (*entity.CreditCustomer, error) {
	customer, err := r.Customers.GetForUpdate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.BranchID != branchID {
		return nil, domain.Invalid("customer_id", "el cliente es de otra sucursal")
	}
	return customer, nil
}
