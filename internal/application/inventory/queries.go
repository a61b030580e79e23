package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/inventory"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockLine saldo de un producto en la sucursal.
type StockLine struct {
	Product  *entity.Product // nil si el producto ya no existe en catálogo
	Balance  *entity.StockBalance
	BelowMin bool
}

// GetStockBalance saldo actual en unidad base; cero si el producto nunca se movió.
func (uc *LedgerUseCase) GetStockBalance(ctx context.Context, branchID, productID string) (*entity.StockBalance, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	return uc.repos.Stock.Get(ctx, branchID, productID)
}

// ListStockByBranch productos activos de la sucursal con su saldo, más los saldos recibidos
// por traslado de productos de otras sucursales.
func (uc *LedgerUseCase) ListStockByBranch(ctx context.Context, branchID string) ([]StockLine, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	products, err := uc.repos.Products.ListByBranch(ctx, branchID, false)
	if err != nil {
		return nil, err
	}
	balances, err := uc.repos.Stock.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string]*entity.StockBalance, len(balances))
	for _, b := range balances {
		byProduct[b.ProductID] = b
	}

	out := make([]StockLine, 0, len(products))
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		seen[p.ID] = true
		bal := byProduct[p.ID]
		if bal == nil {
			bal = &entity.StockBalance{BranchID: branchID, ProductID: p.ID, QtyBase: decimal.Zero}
		}
		out = append(out, StockLine{Product: p, Balance: bal, BelowMin: bal.QtyBase.LessThan(p.MinStock)})
	}
	for _, b := range balances {
		if seen[b.ProductID] {
			continue
		}
		p, err := uc.repos.Products.GetByID(ctx, b.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, StockLine{Product: p, Balance: b})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Balance.ProductID < out[j].Balance.ProductID })
	return out, nil
}

// GetTransaction devuelve el documento con sus líneas.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*entity.InventoryTransaction, error) {
	txn, err := uc.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

// ListTransactions lista documentos de la sucursal (más recientes primero). from/to opcionales.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, branchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.Invalid("to", "anterior a from")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repos.Transactions.ListByBranch(ctx, branchID, from, to, limit, offset)
}

// VerifyLedger reproduce el historial de la sucursal y lo compara contra los saldos guardados.
// Lista vacía = libro consistente.
func (uc *LedgerUseCase) VerifyLedger(ctx context.Context, branchID string) ([]inventory.Discrepancy, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	var out []inventory.Discrepancy
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		movements, err := r.Transactions.ListMovements(ctx, branchID)
		if err != nil {
			return err
		}
		balances, err := r.Stock.ListByBranch(ctx, branchID)
		if err != nil {
			return err
		}
		m := make(map[inventory.Key]decimal.Decimal, len(balances))
		for _, b := range balances {
			m[inventory.Key{BranchID: b.BranchID, ProductID: b.ProductID}] = b.QtyBase
		}
		out = inventory.Replay(branchID, movements, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClearHistory purga documentos y saldos de la sucursal en una transacción.
// Se niega con domain.ErrHistoryLocked si hay notas de crédito abiertas o traslados que
// involucren otra sucursal.
func (uc *LedgerUseCase) ClearHistory(ctx context.Context, actorID, branchID string) (int64, error) {
	if actorID == "" {
		return 0, domain.Invalid("actor_id", "requerido")
	}
	if branchID == "" {
		return 0, domain.Invalid("branch_id", "requerido")
	}
	var deleted int64
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		open, err := r.Notes.CountOpenByBranch(ctx, branchID)
		if err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: %d notas de crédito con saldo en la sucursal", domain.ErrHistoryLocked, open)
		}
		transfers, err := r.Transactions.CountCrossBranchTransfers(ctx, branchID)
		if err != nil {
			return err
		}
		if transfers > 0 {
			return fmt.Errorf("%w: %d traslados con otra sucursal", domain.ErrHistoryLocked, transfers)
		}
		n, err := r.Transactions.DeleteByBranch(ctx, branchID)
		if err != nil {
			return err
		}
		if err := r.Stock.DeleteByBranch(ctx, branchID); err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
