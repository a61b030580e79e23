package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el saldo de un producto en una sucursal; cero si aún no hay fila.
func (r *StockRepo) Get(ctx context.Context, branchID, productID string) (*entity.StockBalance, error) {
	query := `
		SELECT branch_id, product_id, qty_base, updated_at
		FROM stock_balances WHERE branch_id = $1 AND product_id = $2`
	return r.get(ctx, query, branchID, productID)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, branchID, productID string) (*entity.StockBalance, error) {
	query := `
		SELECT branch_id, product_id, qty_base, updated_at
		FROM stock_balances WHERE branch_id = $1 AND product_id = $2
		FOR UPDATE`
	return r.get(ctx, query, branchID, productID)
}

func (r *StockRepo) get(ctx context.Context, query, branchID, productID string) (*entity.StockBalance, error) {
	var s entity.StockBalance
	err := r.q.QueryRow(ctx, query, branchID, productID).Scan(&s.BranchID, &s.ProductID, &s.QtyBase, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{BranchID: branchID, ProductID: productID, QtyBase: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Increment suma delta creando la fila si no existe.
func (r *StockRepo) Increment(ctx context.Context, branchID, productID string, delta decimal.Decimal) error {
	query := `
		INSERT INTO stock_balances (branch_id, product_id, qty_base, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (branch_id, product_id)
		DO UPDATE SET qty_base = stock_balances.qty_base + EXCLUDED.qty_base, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, branchID, productID, delta); err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return nil
}

// Decrement resta delta solo si el saldo alcanza. false si no se aplicó (saldo insuficiente o sin fila).
func (r *StockRepo) Decrement(ctx context.Context, branchID, productID string, delta decimal.Decimal) (bool, error) {
	query := `
		UPDATE stock_balances SET qty_base = qty_base - $3, updated_at = now()
		WHERE branch_id = $1 AND product_id = $2 AND qty_base >= $3`
	tag, err := r.q.Exec(ctx, query, branchID, productID, delta)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByBranch saldos de la sucursal.
func (r *StockRepo) ListByBranch(ctx context.Context, branchID string) ([]*entity.StockBalance, error) {
	query := `
		SELECT branch_id, product_id, qty_base, updated_at
		FROM stock_balances WHERE branch_id = $1 ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		var s entity.StockBalance
		if err := rows.Scan(&s.BranchID, &s.ProductID, &s.QtyBase, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// DeleteByBranch elimina los saldos de la sucursal.
func (r *StockRepo) DeleteByBranch(ctx context.Context, branchID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_balances WHERE branch_id = $1`, branchID); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}
