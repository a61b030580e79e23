package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

const transactionColumns = `id, type, branch_id, destination_branch_id, created_by, created_at,
		reference, notes, supplier_id, customer_name`

// InventoryTransactionRepo libro de inventario sobre PostgreSQL (usable con pool o tx).
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

// Create persiste la cabecera (las líneas van con CreateItem).
func (r *InventoryTransactionRepo) Create(ctx context.Context, tx *entity.InventoryTransaction) error {
	query := `
		INSERT INTO inventory_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, tx.Type, tx.BranchID, tx.DestinationBranchID, tx.CreatedBy, tx.CreatedAt,
		tx.Reference, tx.Notes, tx.SupplierID, tx.CustomerName,
	)
	if err != nil {
		return fmt.Errorf("create inventory transaction: %w", err)
	}
	return nil
}

// CreateItem persiste una línea.
func (r *InventoryTransactionRepo) CreateItem(ctx context.Context, it *entity.InventoryTransactionItem) error {
	query := `
		INSERT INTO inventory_transaction_items (id, transaction_id, product_id, product_uom_id, qty, factor_used, qty_base, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.TransactionID, it.ProductID, it.ProductUomID, it.Qty, it.FactorUsed, it.QtyBase, it.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("create inventory transaction item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera con sus líneas.
func (r *InventoryTransactionRepo) GetByID(ctx context.Context, id string) (*entity.InventoryTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions WHERE id = $1`
	tx, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory transaction: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, product_id, product_uom_id, qty, factor_used, qty_base, unit_price
		FROM inventory_transaction_items WHERE transaction_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.InventoryTransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.ProductUomID,
			&it.Qty, &it.FactorUsed, &it.QtyBase, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		tx.Items = append(tx.Items, &it)
	}
	return tx, rows.Err()
}

// ListByBranch cabeceras donde la sucursal es origen o destino, más recientes primero.
func (r *InventoryTransactionRepo) ListByBranch(ctx context.Context, branchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM inventory_transactions
		WHERE (branch_id = $1 OR destination_branch_id = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY seq DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, branchID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()
	list := []*entity.InventoryTransaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

// CountItemsByProduct cuántas líneas del libro referencian el producto.
func (r *InventoryTransactionRepo) CountItemsByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_transaction_items WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// ListMovements efectos con signo sobre los saldos de la sucursal, en orden de registro.
// Un TRANSFER entre dos sucursales aparece como salida en el origen y entrada en el destino.
func (r *InventoryTransactionRepo) ListMovements(ctx context.Context, branchID string) ([]repository.LedgerMovement, error) {
	query := `
		SELECT t.id, t.created_at, t.branch_id, i.product_id,
		       CASE WHEN t.type IN ('SALE', 'TRANSFER') THEN -i.qty_base ELSE i.qty_base END, t.seq, i.seq
		FROM inventory_transactions t
		JOIN inventory_transaction_items i ON i.transaction_id = t.id
		WHERE t.branch_id = $1
		UNION ALL
		SELECT t.id, t.created_at, t.destination_branch_id, i.product_id, i.qty_base, t.seq, i.seq
		FROM inventory_transactions t
		JOIN inventory_transaction_items i ON i.transaction_id = t.id
		WHERE t.type = 'TRANSFER' AND t.destination_branch_id = $1
		ORDER BY 6, 7`
	rows, err := r.q.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []repository.LedgerMovement
	for rows.Next() {
		var m repository.LedgerMovement
		var txSeq, itemSeq int64
		if err := rows.Scan(&m.TransactionID, &m.CreatedAt, &m.BranchID, &m.ProductID, &m.DeltaBase, &txSeq, &itemSeq); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountCrossBranchTransfers traslados donde la sucursal es origen o destino.
func (r *InventoryTransactionRepo) CountCrossBranchTransfers(ctx context.Context, branchID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM inventory_transactions
		WHERE type = 'TRANSFER' AND (branch_id = $1 OR destination_branch_id = $1)`, branchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transfers: %w", err)
	}
	return n, nil
}

// DeleteByBranch purga el historial de la sucursal (las líneas caen por cascada).
func (r *InventoryTransactionRepo) DeleteByBranch(ctx context.Context, branchID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_transactions WHERE branch_id = $1`, branchID)
	if err != nil {
		return 0, fmt.Errorf("delete inventory transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanTransaction(row pgx.Row) (*entity.InventoryTransaction, error) {
	var t entity.InventoryTransaction
	err := row.Scan(&t.ID, &t.Type, &t.BranchID, &t.DestinationBranchID, &t.CreatedBy, &t.CreatedAt,
		&t.Reference, &t.Notes, &t.SupplierID, &t.CustomerName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
