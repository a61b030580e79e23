package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/inventory"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type stockRepo struct{ v view }

func (r *stockRepo) Get(_ context.Context, branchID, productID string) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.v.with(func(st *state) error {
		if b, ok := st.balances[balanceKey{branchID, productID}]; ok {
			c := *b
			out = &c
			return nil
		}
		out = &entity.StockBalance{BranchID: branchID, ProductID: productID, QtyBase: decimal.Zero}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a Get: la transacción ya tiene el almacén en exclusiva.
func (r *stockRepo) GetForUpdate(ctx context.Context, branchID, productID string) (*entity.StockBalance, error) {
	return r.Get(ctx, branchID, productID)
}

func (r *stockRepo) Increment(_ context.Context, branchID, productID string, delta decimal.Decimal) error {
	return r.v.with(func(st *state) error {
		k := balanceKey{branchID, productID}
		qty := decimal.Zero
		if b, ok := st.balances[k]; ok {
			qty = b.QtyBase
		}
		st.balances[k] = &entity.StockBalance{BranchID: branchID, ProductID: productID, QtyBase: qty.Add(delta), UpdatedAt: time.Now()}
		return nil
	})
}

func (r *stockRepo) Decrement(_ context.Context, branchID, productID string, delta decimal.Decimal) (bool, error) {
	applied := false
	err := r.v.with(func(st *state) error {
		k := balanceKey{branchID, productID}
		b, ok := st.balances[k]
		if !ok || b.QtyBase.LessThan(delta) {
			return nil
		}
		st.balances[k] = &entity.StockBalance{BranchID: branchID, ProductID: productID, QtyBase: b.QtyBase.Sub(delta), UpdatedAt: time.Now()}
		applied = true
		return nil
	})
	return applied, err
}

func (r *stockRepo) ListByBranch(_ context.Context, branchID string) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	err := r.v.with(func(st *state) error {
		for k, b := range st.balances {
			if k.branchID == branchID {
				c := *b
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}

func (r *stockRepo) DeleteByBranch(_ context.Context, branchID string) error {
	return r.v.with(func(st *state) error {
		for k := range st.balances {
			if k.branchID == branchID {
				delete(st.balances, k)
			}
		}
		return nil
	})
}

type transactionRepo struct{ v view }

func (r *transactionRepo) Create(_ context.Context, tx *entity.InventoryTransaction) error {
	return r.v.with(func(st *state) error {
		c := *tx
		c.Items = nil
		st.transactions[tx.ID] = &c
		st.txOrder = append(st.txOrder, tx.ID)
		return nil
	})
}

func (r *transactionRepo) CreateItem(_ context.Context, item *entity.InventoryTransactionItem) error {
	return r.v.with(func(st *state) error {
		c := *item
		st.items[item.TransactionID] = append(st.items[item.TransactionID], &c)
		return nil
	})
}

func (r *transactionRepo) GetByID(_ context.Context, id string) (*entity.InventoryTransaction, error) {
	var out *entity.InventoryTransaction
	err := r.v.with(func(st *state) error {
		tx, ok := st.transactions[id]
		if !ok {
			return nil
		}
		c := *tx
		for _, it := range st.items[id] {
			ic := *it
			c.Items = append(c.Items, &ic)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *transactionRepo) ListByBranch(_ context.Context, branchID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error) {
	var all []*entity.InventoryTransaction
	err := r.v.with(func(st *state) error {
		for i := len(st.txOrder) - 1; i >= 0; i-- {
			tx := st.transactions[st.txOrder[i]]
			if tx.BranchID != branchID && tx.DestinationBranchID != branchID {
				continue
			}
			if from != nil && tx.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && tx.CreatedAt.After(*to) {
				continue
			}
			c := *tx
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []*entity.InventoryTransaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *transactionRepo) CountItemsByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	err := r.v.with(func(st *state) error {
		for _, items := range st.items {
			for _, it := range items {
				if it.ProductID == productID {
					n++
				}
			}
		}
		return nil
	})
	return n, err
}

func (r *transactionRepo) ListMovements(_ context.Context, branchID string) ([]repository.LedgerMovement, error) {
	var out []repository.LedgerMovement
	err := r.v.with(func(st *state) error {
		for _, id := range st.txOrder {
			tx := st.transactions[id]
			if tx.BranchID != branchID && tx.DestinationBranchID != branchID {
				continue
			}
			sign := decimal.NewFromInt(inventory.SourceSign(tx.Type))
			for _, it := range st.items[id] {
				if tx.BranchID == branchID {
					out = append(out, repository.LedgerMovement{
						TransactionID: tx.ID, CreatedAt: tx.CreatedAt,
						BranchID: branchID, ProductID: it.ProductID, DeltaBase: it.QtyBase.Mul(sign),
					})
				}
				if tx.Type == entity.TransactionTypeTransfer && tx.DestinationBranchID == branchID {
					out = append(out, repository.LedgerMovement{
						TransactionID: tx.ID, CreatedAt: tx.CreatedAt,
						BranchID: branchID, ProductID: it.ProductID, DeltaBase: it.QtyBase,
					})
				}
			}
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) CountCrossBranchTransfers(_ context.Context, branchID string) (int, error) {
	n := 0
	err := r.v.with(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.Type == entity.TransactionTypeTransfer && (tx.BranchID == branchID || tx.DestinationBranchID == branchID) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *transactionRepo) DeleteByBranch(_ context.Context, branchID string) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		kept := st.txOrder[:0:0]
		for _, id := range st.txOrder {
			if st.transactions[id].BranchID == branchID {
				delete(st.transactions, id)
				delete(st.items, id)
				n++
				continue
			}
			kept = append(kept, id)
		}
		st.txOrder = kept
		for _, note := range st.notes {
			if _, ok := st.transactions[note.InventoryTransactionID]; !ok && note.InventoryTransactionID != "" {
				c := *note
				c.InventoryTransactionID = ""
				st.notes[note.ID] = &c
			}
		}
		return nil
	})
	return n, err
}
