package repository

import (
	"context"
	"time"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerMovement efecto de una línea sobre el saldo de (sucursal, producto), en unidad base y con signo.
type LedgerMovement struct {
	TransactionID string
	CreatedAt     time.Time
	BranchID      string
	ProductID     string
	DeltaBase     decimal.Decimal
}

// InventoryTransactionRepository define el puerto del libro de inventario (solo inserción).
type InventoryTransactionRepository interface {
	Create(ctx context.Context, tx *entity.InventoryTransaction) error
	CreateItem(ctx context.Context, item *entity.InventoryTransactionItem) error
	// GetByID devuelve la cabecera con sus líneas.
	GetByID(ctx context.Context, id string) (*entity.InventoryTransaction, error)
	ListByBranch(ctx context.Context, branchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error)
	CountItemsByProduct(ctx context.Context, productID string) (int, error)
	// ListMovements devuelve en orden cronológico todos los efectos que tocan saldos de la sucursal.
	ListMovements(ctx context.Context, branchID string) ([]LedgerMovement, error)
	CountCrossBranchTransfers(ctx context.Context, branchID string) (int, error)
	// DeleteByBranch purga líneas y cabeceras de la sucursal; devuelve cabeceras borradas.
	DeleteByBranch(ctx context.Context, branchID string) (int64, error)
}
