package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance saldo de un producto en una sucursal, siempre en unidad base (>= 0).
// Se crea con el primer movimiento.
type StockBalance struct {
	BranchID  string
	ProductID string
	QtyBase   decimal.Decimal
	UpdatedAt time.Time
}
