package credit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/credit"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// RiskUseCase motor de riesgo de crédito: clientes, notas (cuentas por cobrar) y abonos.
type RiskUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	now      func() time.Time
}

// NewRiskUseCase construye el caso de uso.
func NewRiskUseCase(txRunner repository.TxRunner, repos repository.Repos) *RiskUseCase {
	return &RiskUseCase{txRunner: txRunner, repos: repos, now: time.Now}
}

// WithClock reemplaza el reloj usado para vencimientos (tests).
func (uc *RiskUseCase) WithClock(now func() time.Time) *RiskUseCase {
	uc.now = now
	return uc
}

// Now hora del motor de crédito.
func (uc *RiskUseCase) Now() time.Time { return uc.now() }

// CustomerInput alta o modificación de cliente de crédito. IsActive nil conserva el valor (alta: true).
type CustomerInput struct {
	BranchID          string
	Name              string
	CreditLimit       decimal.Decimal
	DefaultCreditDays int
	Policy            string
	AllowCashOnBlock  bool
	IsActive          *bool
}

// PaymentInput abono a una nota.
type PaymentInput struct {
	NoteID string
	Amount decimal.Decimal
	Method string
	Notes  string
}

// PaymentFailure abono rechazado dentro de un lote.
type PaymentFailure struct {
	Index  int
	NoteID string
	Err    error
}

// PaymentBatchResult resultado de ApplyPayments. Los abonos aplicados quedan confirmados
// aunque otros del mismo lote fallen.
type PaymentBatchResult struct {
	Applied []*entity.CreditPayment
	Failed  []PaymentFailure
}

// CreateNoteInput alta de una nota. CreditDays nil usa los días por defecto del cliente.
type CreateNoteInput struct {
	CustomerID             string
	Total                  decimal.Decimal
	CreditDays             *int
	InventoryTransactionID string
	ActorID                string
}

// CreateCustomer registra un cliente de crédito.
func (uc *RiskUseCase) CreateCustomer(ctx context.Context, in CustomerInput) (*entity.CreditCustomer, error) {
	if in.BranchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	now := uc.now()
	c := &entity.CreditCustomer{
		ID:                uuid.New().String(),
		BranchID:          in.BranchID,
		Name:              strings.TrimSpace(in.Name),
		CreditLimit:       in.CreditLimit,
		DefaultCreditDays: in.DefaultCreditDays,
		Policy:            in.Policy,
		AllowCashOnBlock:  in.AllowCashOnBlock,
		IsActive:          in.IsActive == nil || *in.IsActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repos.Customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCustomer modifica límite, días, política, contado y estado. La sucursal no cambia.
func (uc *RiskUseCase) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*entity.CreditCustomer, error) {
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	var out *entity.CreditCustomer
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		c, err := r.Customers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		c.Name = strings.TrimSpace(in.Name)
		c.CreditLimit = in.CreditLimit
		c.DefaultCreditDays = in.DefaultCreditDays
		c.Policy = in.Policy
		c.AllowCashOnBlock = in.AllowCashOnBlock
		if in.IsActive != nil {
			c.IsActive = *in.IsActive
		}
		c.UpdatedAt = uc.now()
		if err := r.Customers.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCustomer obtiene un cliente por ID.
func (uc *RiskUseCase) GetCustomer(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	c, err := uc.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// ListCustomersByBranch clientes de crédito de la sucursal.
func (uc *RiskUseCase) ListCustomersByBranch(ctx context.Context, branchID string) ([]*entity.CreditCustomer, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	return uc.repos.Customers.ListByBranch(ctx, branchID)
}

// Evaluate decide si el cliente puede llevarse saleTotal a crédito.
func (uc *RiskUseCase) Evaluate(ctx context.Context, customerID string, saleTotal decimal.Decimal) (*credit.Decision, error) {
	c, err := uc.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return uc.EvaluateInTx(ctx, uc.repos, c, saleTotal)
}

// EvaluateInTx evalúa con los repositorios del caller; customer ya cargado (y bloqueado si aplica).
func (uc *RiskUseCase) EvaluateInTx(ctx context.Context, r repository.Repos, customer *entity.CreditCustomer, saleTotal decimal.Decimal) (*credit.Decision, error) {
	if !saleTotal.IsPositive() {
		return nil, domain.Invalid("sale_total", "debe ser mayor que cero")
	}
	if !customer.IsActive {
		return nil, domain.Invalid("customer_id", "cliente inactivo")
	}
	notes, err := r.Notes.ListOpenByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	d := credit.Evaluate(customer, notes, saleTotal, uc.now())
	return &d, nil
}

// GetOpenNotes notas con saldo del cliente, por vencimiento.
func (uc *RiskUseCase) GetOpenNotes(ctx context.Context, customerID string) ([]*entity.CreditNote, error) {
	if _, err := uc.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return uc.repos.Notes.ListOpenByCustomer(ctx, customerID)
}

// ListPayments abonos de una nota.
func (uc *RiskUseCase) ListPayments(ctx context.Context, noteID string) ([]*entity.CreditPayment, error) {
	n, err := uc.repos.Notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrNotFound
	}
	return uc.repos.Payments.ListByNote(ctx, noteID)
}

// ApplyPayments aplica cada abono en su propia transacción. Un abono nunca deja el saldo en negativo.
func (uc *RiskUseCase) ApplyPayments(ctx context.Context, actorID string, payments []PaymentInput) (*PaymentBatchResult, error) {
	if actorID == "" {
		return nil, domain.Invalid("actor_id", "requerido")
	}
	if len(payments) == 0 {
		return nil, domain.Invalid("payments", "al menos un abono")
	}
	res := &PaymentBatchResult{}
	for i, p := range payments {
		payment, err := uc.applyPayment(ctx, actorID, i, p)
		if err != nil {
			res.Failed = append(res.Failed, PaymentFailure{Index: i, NoteID: p.NoteID, Err: err})
			continue
		}
		res.Applied = append(res.Applied, payment)
	}
	return res, nil
}

func (uc *RiskUseCase) applyPayment(ctx context.Context, actorID string, i int, p PaymentInput) (*entity.CreditPayment, error) {
	field := fmt.Sprintf("payments[%d]", i)
	if p.NoteID == "" {
		return nil, domain.Invalid(field+".note_id", "requerido")
	}
	if !p.Amount.IsPositive() {
		return nil, domain.Invalid(field+".amount", "debe ser mayor que cero")
	}
	if strings.TrimSpace(p.Method) == "" {
		return nil, domain.Invalid(field+".method", "requerido")
	}
	payment := &entity.CreditPayment{
		ID:        uuid.New().String(),
		NoteID:    p.NoteID,
		Amount:    p.Amount,
		Method:    strings.TrimSpace(p.Method),
		Notes:     p.Notes,
		CreatedBy: actorID,
		CreatedAt: uc.now(),
	}
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		note, err := r.Notes.GetByID(ctx, p.NoteID)
		if err != nil {
			return err
		}
		if note == nil {
			return domain.ErrNotFound
		}
		ok, err := r.Notes.DecrementBalance(ctx, note.ID, p.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: nota %s saldo=%s abono=%s", domain.ErrExceedsBalance, note.Folio, note.Balance, p.Amount)
		}
		return r.Payments.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateCreditNote registra una cuenta por cobrar sobre una venta ya posteada.
func (uc *RiskUseCase) CreateCreditNote(ctx context.Context, in CreateNoteInput) (*entity.CreditNote, error) {
	var out *entity.CreditNote
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		customer, err := r.Customers.GetForUpdate(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrNotFound
		}
		n, err := uc.CreateCreditNoteInTx(ctx, r, customer, in)
		if err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCreditNoteInTx igual que CreateCreditNote con los repositorios y el cliente del caller.
func (uc *RiskUseCase) CreateCreditNoteInTx(ctx context.Context, r repository.Repos, customer *entity.CreditCustomer, in CreateNoteInput) (*entity.CreditNote, error) {
	if in.ActorID == "" {
		return nil, domain.Invalid("actor_id", "requerido")
	}
	if !in.Total.IsPositive() {
		return nil, domain.Invalid("total", "debe ser mayor que cero")
	}
	if in.InventoryTransactionID == "" {
		return nil, domain.Invalid("inventory_transaction_id", "requerido")
	}
	if !customer.IsActive {
		return nil, domain.Invalid("customer_id", "cliente inactivo")
	}
	days := customer.DefaultCreditDays
	if in.CreditDays != nil {
		days = *in.CreditDays
	}
	if days < 0 {
		return nil, domain.Invalid("credit_days", "no puede ser negativo")
	}
	txn, err := r.Transactions.GetByID(ctx, in.InventoryTransactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.Invalid("inventory_transaction_id", "documento desconocido")
	}
	if txn.Type != entity.TransactionTypeSale {
		return nil, domain.Invalid("inventory_transaction_id", "debe ser una venta")
	}
	if txn.BranchID != customer.BranchID {
		return nil, domain.Invalid("inventory_transaction_id", "la venta es de otra sucursal")
	}

	now := uc.now()
	id := uuid.New().String()
	note := &entity.CreditNote{
		ID:                     id,
		CustomerID:             customer.ID,
		BranchID:               customer.BranchID,
		Folio:                  "NC-" + now.Format("20060102") + "-" + strings.ToUpper(id[:8]),
		IssueDate:              now,
		DueDate:                now.AddDate(0, 0, days),
		Total:                  in.Total,
		Balance:                in.Total,
		InventoryTransactionID: txn.ID,
		CreatedBy:              in.ActorID,
		CreatedAt:              now,
	}
	if err := r.Notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func validateCustomer(in CustomerInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "requerido")
	}
	if in.CreditLimit.IsNegative() {
		return domain.Invalid("credit_limit", "no puede ser negativo")
	}
	if in.DefaultCreditDays < 0 {
		return domain.Invalid("default_credit_days", "no puede ser negativo")
	}
	if !entity.ValidCreditPolicy(in.Policy) {
		return domain.Invalid("policy", "BLOQUEO_TOTAL o BLOQUEO_PARCIAL")
	}
	return nil
}
