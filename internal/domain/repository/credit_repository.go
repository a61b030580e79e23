package repository

import (
	"context"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreditCustomerRepository define el puerto de persistencia de clientes de crédito.
type CreditCustomerRepository interface {
	Create(ctx context.Context, customer *entity.CreditCustomer) error
	GetByID(ctx context.Context, id string) (*entity.CreditCustomer, error)
	// GetForUpdate bloquea la fila del cliente para serializar ventas a crédito concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.CreditCustomer, error)
	ListByBranch(ctx context.Context, branchID string) ([]*entity.CreditCustomer, error)
	Update(ctx context.Context, customer *entity.CreditCustomer) error
}

// CreditNoteRepository define el puerto de notas de crédito.
type CreditNoteRepository interface {
	Create(ctx context.Context, note *entity.CreditNote) error
	GetByID(ctx context.Context, id string) (*entity.CreditNote, error)
	// ListOpenByCustomer notas con balance > 0 ordenadas por vencimiento.
	ListOpenByCustomer(ctx context.Context, customerID string) ([]*entity.CreditNote, error)
	// DecrementBalance resta amount solo si balance >= amount; false si no se aplicó.
	DecrementBalance(ctx context.Context, noteID string, amount decimal.Decimal) (bool, error)
	CountOpenByBranch(ctx context.Context, branchID string) (int, error)
}

// CreditPaymentRepository define el puerto de abonos.
type CreditPaymentRepository interface {
	Create(ctx context.Context, payment *entity.CreditPayment) error
	ListByNote(ctx context.Context, noteID string) ([]*entity.CreditPayment, error)
}
