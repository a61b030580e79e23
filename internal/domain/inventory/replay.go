package inventory

import (
	"sort"

	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Tipos de discrepancia detectados al reproducir el libro.
const (
	DiscrepancyNegative = "NEGATIVE_RUNNING_BALANCE"
	DiscrepancyMismatch = "BALANCE_MISMATCH"
)

// Discrepancy diferencia entre el libro y el saldo materializado.
type Discrepancy struct {
	Kind          string
	BranchID      string
	ProductID     string
	TransactionID string          // movimiento que dejó el saldo negativo (NEGATIVE_RUNNING_BALANCE)
	Expected      decimal.Decimal // suma del libro
	Actual        decimal.Decimal // saldo guardado
}

// Replay reproduce los movimientos en orden y los compara contra los saldos guardados.
// movements debe venir en orden cronológico con las líneas de cada transacción contiguas.
// El saldo corrido se valida al cerrar cada transacción, no línea por línea.
// Solo se evalúan claves de branchID.
func Replay(branchID string, movements []repository.LedgerMovement, balances map[Key]decimal.Decimal) []Discrepancy {
	running := map[Key]decimal.Decimal{}
	var out []Discrepancy
	flagged := map[Key]bool{}
	var touched []Key
	check := func(txID string) {
		for _, k := range touched {
			if running[k].IsNegative() && !flagged[k] {
				flagged[k] = true
				out = append(out, Discrepancy{
					Kind:          DiscrepancyNegative,
					BranchID:      k.BranchID,
					ProductID:     k.ProductID,
					TransactionID: txID,
					Expected:      running[k],
					Actual:        balances[k],
				})
			}
		}
		touched = touched[:0]
	}
	current := ""
	for _, m := range movements {
		if m.BranchID != branchID {
			continue
		}
		if m.TransactionID != current {
			check(current)
			current = m.TransactionID
		}
		k := Key{BranchID: m.BranchID, ProductID: m.ProductID}
		running[k] = running[k].Add(m.DeltaBase)
		touched = append(touched, k)
	}
	check(current)
	seen := map[Key]bool{}
	for k, sum := range running {
		seen[k] = true
		if !sum.Equal(balances[k]) {
			out = append(out, Discrepancy{Kind: DiscrepancyMismatch, BranchID: k.BranchID, ProductID: k.ProductID, Expected: sum, Actual: balances[k]})
		}
	}
	for k, bal := range balances {
		if k.BranchID != branchID || seen[k] {
			continue
		}
		if !bal.IsZero() {
			out = append(out, Discrepancy{Kind: DiscrepancyMismatch, BranchID: k.BranchID, ProductID: k.ProductID, Expected: decimal.Zero, Actual: bal})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
