package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.CreditCustomerRepository = (*CreditCustomerRepo)(nil)
	_ repository.CreditNoteRepository     = (*CreditNoteRepo)(nil)
	_ repository.CreditPaymentRepository  = (*CreditPaymentRepo)(nil)
)

const customerColumns = `id, branch_id, name, credit_limit, default_credit_days, policy,
		allow_cash_on_block, is_active, created_at, updated_at`

// CreditCustomerRepo clientes de crédito (usable con pool o tx).
type CreditCustomerRepo struct {
	q Querier
}

// NewCreditCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditCustomerRepository(q Querier) *CreditCustomerRepo {
	return &CreditCustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CreditCustomerRepo) Create(ctx context.Context, c *entity.CreditCustomer) error {
	query := `
		INSERT INTO credit_customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.BranchID, c.Name, c.CreditLimit, c.DefaultCreditDays, c.Policy,
		c.AllowCashOnBlock, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CreditCustomerRepo) GetByID(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM credit_customers WHERE id = $1`, id)
}

// GetForUpdate obtiene el cliente y bloquea su fila hasta el fin de la transacción.
func (r *CreditCustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.CreditCustomer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM credit_customers WHERE id = $1 FOR UPDATE`, id)
}

func (r *CreditCustomerRepo) getOne(ctx context.Context, query, id string) (*entity.CreditCustomer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit customer: %w", err)
	}
	return c, nil
}

// ListByBranch clientes de la sucursal por nombre.
func (r *CreditCustomerRepo) ListByBranch(ctx context.Context, branchID string) ([]*entity.CreditCustomer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM credit_customers WHERE branch_id = $1 ORDER BY name, id`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list credit customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditCustomer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza las condiciones de crédito del cliente.
func (r *CreditCustomerRepo) Update(ctx context.Context, c *entity.CreditCustomer) error {
	query := `
		UPDATE credit_customers SET name = $2, credit_limit = $3, default_credit_days = $4, policy = $5,
			allow_cash_on_block = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, c.ID, c.Name, c.CreditLimit, c.DefaultCreditDays, c.Policy,
		c.AllowCashOnBlock, c.IsActive, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update credit customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.CreditCustomer, error) {
	var c entity.CreditCustomer
	err := row.Scan(&c.ID, &c.BranchID, &c.Name, &c.CreditLimit, &c.DefaultCreditDays, &c.Policy,
		&c.AllowCashOnBlock, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const noteColumns = `id, customer_id, branch_id, folio, issue_date, due_date, total, balance,
		inventory_transaction_id, created_by, created_at`

// CreditNoteRepo notas de crédito (usable con pool o tx).
type CreditNoteRepo struct {
	q Querier
}

// NewCreditNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditNoteRepository(q Querier) *CreditNoteRepo {
	return &CreditNoteRepo{q: q}
}

// Create persiste la nota. Folio repetido => domain.ErrDuplicate.
func (r *CreditNoteRepo) Create(ctx context.Context, n *entity.CreditNote) error {
	query := `
		INSERT INTO credit_notes (` + noteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.CustomerID, n.BranchID, n.Folio, n.IssueDate, n.DueDate, n.Total, n.Balance,
		nullIfEmpty(n.InventoryTransactionID), n.CreatedBy, n.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert credit note: %w", err)
	}
	return nil
}

// GetByID obtiene una nota por ID.
func (r *CreditNoteRepo) GetByID(ctx context.Context, id string) (*entity.CreditNote, error) {
	n, err := scanNote(r.q.QueryRow(ctx, `SELECT `+noteColumns+` FROM credit_notes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credit note: %w", err)
	}
	return n, nil
}

// ListOpenByCustomer notas con saldo del cliente, por vencimiento.
func (r *CreditNoteRepo) ListOpenByCustomer(ctx context.Context, customerID string) ([]*entity.CreditNote, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+noteColumns+` FROM credit_notes
		WHERE customer_id = $1 AND balance > 0
		ORDER BY due_date, folio`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list open notes: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit note: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// DecrementBalance resta amount solo si el saldo alcanza. false si no se aplicó.
func (r *CreditNoteRepo) DecrementBalance(ctx context.Context, noteID string, amount decimal.Decimal) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE credit_notes SET balance = balance - $2
		WHERE id = $1 AND balance >= $2`, noteID, amount)
	if err != nil {
		return false, fmt.Errorf("decrement note balance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountOpenByBranch notas con saldo en la sucursal.
func (r *CreditNoteRepo) CountOpenByBranch(ctx context.Context, branchID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM credit_notes WHERE branch_id = $1 AND balance > 0`, branchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open notes: %w", err)
	}
	return n, nil
}

func scanNote(row pgx.Row) (*entity.CreditNote, error) {
	var n entity.CreditNote
	var txID *string
	err := row.Scan(&n.ID, &n.CustomerID, &n.BranchID, &n.Folio, &n.IssueDate, &n.DueDate, &n.Total, &n.Balance,
		&txID, &n.CreatedBy, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.InventoryTransactionID = derefString(txID)
	return &n, nil
}

// CreditPaymentRepo abonos (usable con pool o tx).
type CreditPaymentRepo struct {
	q Querier
}

// NewCreditPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCreditPaymentRepository(q Querier) *CreditPaymentRepo {
	return &CreditPaymentRepo{q: q}
}

// Create persiste el abono.
func (r *CreditPaymentRepo) Create(ctx context.Context, p *entity.CreditPayment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO credit_payments (id, note_id, amount, method, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.NoteID, p.Amount, p.Method, p.Notes, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert credit payment: %w", err)
	}
	return nil
}

// ListByNote abonos de la nota en orden de registro.
func (r *CreditPaymentRepo) ListByNote(ctx context.Context, noteID string) ([]*entity.CreditPayment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, note_id, amount, method, notes, created_by, created_at
		FROM credit_payments WHERE note_id = $1 ORDER BY created_at, id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("list credit payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.CreditPayment
	for rows.Next() {
		var p entity.CreditPayment
		if err := rows.Scan(&p.ID, &p.NoteID, &p.Amount, &p.Method, &p.Notes, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
