package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Niveles de precio del producto.
const (
	PriceTierRetail    = "RETAIL"
	PriceTierWholesale = "WHOLESALE"
)

// Product producto de una sucursal. El stock siempre se cuenta en BaseUomID.
// Los precios están expresados por unidad base.
// DefaultSaleUomID / DefaultPurchaseUomID apuntan a un ProductUom del mismo producto (nil = sin default).
type Product struct {
	ID                   string
	BranchID             string
	SKU                  string
	Barcode              string // único por sucursal
	Name                 string
	BaseUomID            string
	IsDivisible          bool // admite cantidades fraccionarias
	PurchasePrice        decimal.Decimal
	WholesalePrice       decimal.Decimal
	RetailPrice          decimal.Decimal
	MinStock             decimal.Decimal
	IsActive             bool
	DefaultSaleUomID     *string
	DefaultPurchaseUomID *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// UnitPrice precio por unidad base según el nivel indicado.
func (p *Product) UnitPrice(tier string) decimal.Decimal {
	if tier == PriceTierWholesale {
		return p.WholesalePrice
	}
	return p.RetailPrice
}
