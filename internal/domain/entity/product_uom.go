package entity

import "github.com/shopspring/decimal"

// Propósitos de una unidad de producto.
const (
	UomPurposePurchase = "PURCHASE"
	UomPurposeSale     = "SALE"
	UomPurposeBoth     = "BOTH"
)

// ProductUom relaciona un producto con una unidad y su factor a unidad base.
// La unidad base del producto también existe como ProductUom (IsBase, factor 1, BOTH).
type ProductUom struct {
	ID           string
	ProductID    string
	UomID        string
	FactorToBase decimal.Decimal // > 0
	Purpose      string
	IsBase       bool
}

// Allows indica si la unidad sirve para el propósito PURCHASE o SALE.
func (pu *ProductUom) Allows(purpose string) bool {
	return pu.Purpose == UomPurposeBoth || pu.Purpose == purpose
}

// ValidPurpose valida el valor del propósito.
func ValidPurpose(p string) bool {
	return p == UomPurposePurchase || p == UomPurposeSale || p == UomPurposeBoth
}
