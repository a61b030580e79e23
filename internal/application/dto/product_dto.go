package dto

import (
	"time"

	"github.com/jhoicas/branch-ledger/internal/application/catalog"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateUomRequest entrada para registrar una unidad de medida.
type CreateUomRequest struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"required,max=100"`
}

// UomResponse salida de una unidad de medida.
type UomResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateProductRequest entrada para crear un producto. Los precios son por unidad base.
type CreateProductRequest struct {
	BranchID       string          `json:"branch_id"`
	SKU            string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode        string          `json:"barcode" validate:"max=64"`
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	BaseUomID      string          `json:"base_uom_id" validate:"required"`
	IsDivisible    bool            `json:"is_divisible"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	MinStock       decimal.Decimal `json:"min_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                   string          `json:"id"`
	BranchID             string          `json:"branch_id"`
	SKU                  string          `json:"sku"`
	Barcode              string          `json:"barcode,omitempty"`
	Name                 string          `json:"name"`
	BaseUomID            string          `json:"base_uom_id"`
	IsDivisible          bool            `json:"is_divisible"`
	PurchasePrice        decimal.Decimal `json:"purchase_price"`
	WholesalePrice       decimal.Decimal `json:"wholesale_price"`
	RetailPrice          decimal.Decimal `json:"retail_price"`
	MinStock             decimal.Decimal `json:"min_stock"`
	IsActive             bool            `json:"is_active"`
	DefaultSaleUomID     *string         `json:"default_sale_uom_id"`
	DefaultPurchaseUomID *string         `json:"default_purchase_uom_id"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos de una sucursal.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// AddProductUomRequest asocia una unidad adicional al producto.
type AddProductUomRequest struct {
	UomID        string          `json:"uom_id" validate:"required"`
	FactorToBase decimal.Decimal `json:"factor_to_base"`
	Purpose      string          `json:"purpose" validate:"required,oneof=PURCHASE SALE BOTH"`
}

// UpdateFactorRequest nuevo factor; solo afecta movimientos futuros.
type UpdateFactorRequest struct {
	FactorToBase decimal.Decimal `json:"factor_to_base"`
}

// SetDefaultUomRequest unidad por defecto para venta o compra.
type SetDefaultUomRequest struct {
	ProductUomID string `json:"product_uom_id" validate:"required"`
}

// ProductUomResponse unidad del producto.
type ProductUomResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	UomID             string          `json:"uom_id"`
	UomCode           string          `json:"uom_code,omitempty"`
	FactorToBase      decimal.Decimal `json:"factor_to_base"`
	Purpose           string          `json:"purpose"`
	IsBase            bool            `json:"is_base"`
	IsDefaultSale     bool            `json:"is_default_sale"`
	IsDefaultPurchase bool            `json:"is_default_purchase"`
}

// NewUomResponse mapea la entidad.
func NewUomResponse(u *entity.Uom) UomResponse {
	return UomResponse{ID: u.ID, Code: u.Code, Name: u.Name}
}

// NewProductResponse mapea la entidad.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:                   p.ID,
		BranchID:             p.BranchID,
		SKU:                  p.SKU,
		Barcode:              p.Barcode,
		Name:                 p.Name,
		BaseUomID:            p.BaseUomID,
		IsDivisible:          p.IsDivisible,
		PurchasePrice:        p.PurchasePrice,
		WholesalePrice:       p.WholesalePrice,
		RetailPrice:          p.RetailPrice,
		MinStock:             p.MinStock,
		IsActive:             p.IsActive,
		DefaultSaleUomID:     p.DefaultSaleUomID,
		DefaultPurchaseUomID: p.DefaultPurchaseUomID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// NewProductUomResponse mapea una unidad sin marcas de default.
func NewProductUomResponse(pu *entity.ProductUom) ProductUomResponse {
	return ProductUomResponse{
		ID:           pu.ID,
		ProductID:    pu.ProductID,
		UomID:        pu.UomID,
		FactorToBase: pu.FactorToBase,
		Purpose:      pu.Purpose,
		IsBase:       pu.IsBase,
	}
}

// NewProductUomViewResponse mapea la vista con código de unidad y defaults.
func NewProductUomViewResponse(v catalog.ProductUomView) ProductUomResponse {
	out := NewProductUomResponse(&v.ProductUom)
	out.UomCode = v.UomCode
	out.IsDefaultSale = v.IsDefaultSale
	out.IsDefaultPurchase = v.IsDefaultPurchase
	return out
}
