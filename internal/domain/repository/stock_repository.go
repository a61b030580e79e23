package repository

import (
	"context"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository define el puerto para el saldo por (sucursal, producto) en unidad base.
// Es la única vía de escritura de stock_balances; se usa dentro de transacciones.
type StockRepository interface {
	// Get devuelve el saldo; si no hay fila, saldo cero.
	Get(ctx context.Context, branchID, productID string) (*entity.StockBalance, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, branchID, productID string) (*entity.StockBalance, error)
	// Increment suma delta (> 0) creando la fila si no existe.
	Increment(ctx context.Context, branchID, productID string, delta decimal.Decimal) error
	// Decrement resta delta (> 0) solo si el saldo alcanza; false si no se aplicó.
	Decrement(ctx context.Context, branchID, productID string, delta decimal.Decimal) (bool, error)
	ListByBranch(ctx context.Context, branchID string) ([]*entity.StockBalance, error)
	DeleteByBranch(ctx context.Context, branchID string) error
}
