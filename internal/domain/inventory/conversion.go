package inventory

import (
	"sort"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ToBase convierte una cantidad expresada en una unidad del producto a unidad base.
func ToBase(qty, factorToBase decimal.Decimal) decimal.Decimal {
	return qty.Mul(factorToBase)
}

// IsWhole indica si la cantidad no tiene parte fraccionaria.
func IsWhole(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}

// Key identifica un saldo de stock.
type Key struct {
	BranchID  string
	ProductID string
}

// Deltas acumula cambios en unidad base por (sucursal, producto).
type Deltas map[Key]decimal.Decimal

// Add suma delta a la clave.
func (d Deltas) Add(branchID, productID string, delta decimal.Decimal) {
	k := Key{BranchID: branchID, ProductID: productID}
	d[k] = d[k].Add(delta)
}

// SortedKeys devuelve las claves en orden estable (sucursal, producto).
// Bloquear filas siempre en este orden evita interbloqueos entre transacciones.
func (d Deltas) SortedKeys() []Key {
	keys := make([]Key, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].BranchID != keys[j].BranchID {
			return keys[i].BranchID < keys[j].BranchID
		}
		return keys[i].ProductID < keys[j].ProductID
	})
	return keys
}

// SourceSign signo con el que una línea afecta la sucursal origen.
// ADJUST conserva el signo de la cantidad (+1).
func SourceSign(txType string) int64 {
	switch txType {
	case entity.TransactionTypeSale, entity.TransactionTypeTransfer:
		return -1
	}
	return 1
}

// BuildDeltas calcula el efecto neto de las líneas sobre los saldos.
// TRANSFER resta en la sucursal origen y suma en destBranchID.
func BuildDeltas(txType, branchID, destBranchID string, items []*entity.InventoryTransactionItem) Deltas {
	d := Deltas{}
	sign := decimal.NewFromInt(SourceSign(txType))
	for _, it := range items {
		d.Add(branchID, it.ProductID, it.QtyBase.Mul(sign))
		if txType == entity.TransactionTypeTransfer {
			d.Add(destBranchID, it.ProductID, it.QtyBase)
		}
	}
	return d
}
