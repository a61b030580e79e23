package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de inventario.
const (
	TransactionTypePurchase = "PURCHASE" // entrada por compra
	TransactionTypeSale     = "SALE"     // salida por venta
	TransactionTypeAdjust   = "ADJUST"   // ajuste (cantidad con signo)
	TransactionTypeTransfer = "TRANSFER" // traslado a DestinationBranchID
)

// ValidTransactionType valida el tipo.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypePurchase, TransactionTypeSale, TransactionTypeAdjust, TransactionTypeTransfer:
		return true
	}
	return false
}

// InventoryTransaction cabecera inmutable del libro de inventario.
type InventoryTransaction struct {
	ID                  string
	Type                string
	BranchID            string
	DestinationBranchID string // solo TRANSFER
	CreatedBy           string
	CreatedAt           time.Time
	Reference           string
	Notes               string
	SupplierID          string // PURCHASE
	CustomerName        string // SALE
	Items               []*InventoryTransactionItem
}

// InventoryTransactionItem línea inmutable. FactorUsed es copia del factor vigente al registrar.
type InventoryTransactionItem struct {
	ID            string
	TransactionID string
	ProductID     string
	ProductUomID  string
	Qty           decimal.Decimal
	FactorUsed    decimal.Decimal
	QtyBase       decimal.Decimal // Qty * FactorUsed
	UnitPrice     decimal.Decimal
}

// Total suma de Qty * UnitPrice de las líneas.
func (t *InventoryTransaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.Qty.Mul(it.UnitPrice))
	}
	return total
}
