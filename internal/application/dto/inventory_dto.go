package dto

import (
	"time"

	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TransactionItemRequest línea de un documento. qty está en la unidad product_uom_id.
type TransactionItemRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	ProductUomID string           `json:"product_uom_id" validate:"required"`
	Qty          decimal.Decimal  `json:"qty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

// PostTransactionRequest body para POST /api/inventory/transactions.
type PostTransactionRequest struct {
	Type                string                   `json:"type" validate:"required,oneof=PURCHASE SALE ADJUST TRANSFER"`
	BranchID            string                   `json:"branch_id"`
	DestinationBranchID string                   `json:"destination_branch_id,omitempty" validate:"required_if=Type TRANSFER"`
	Reference           string                   `json:"reference,omitempty" validate:"max=100"`
	Notes               string                   `json:"notes,omitempty"`
	SupplierID          string                   `json:"supplier_id,omitempty"`
	CustomerName        string                   `json:"customer_name,omitempty"`
	PriceTier           string                   `json:"price_tier,omitempty" validate:"omitempty,oneof=RETAIL WHOLESALE"`
	Items               []TransactionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransactionItemResponse línea registrada con el factor vigente al momento del registro.
type TransactionItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductUomID string          `json:"product_uom_id"`
	Qty          decimal.Decimal `json:"qty"`
	FactorUsed   decimal.Decimal `json:"factor_used"`
	QtyBase      decimal.Decimal `json:"qty_base"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// TransactionResponse documento del libro de inventario.
type TransactionResponse struct {
	ID                  string                    `json:"id"`
	Type                string                    `json:"type"`
	BranchID            string                    `json:"branch_id"`
	DestinationBranchID string                    `json:"destination_branch_id,omitempty"`
	CreatedBy           string                    `json:"created_by"`
	CreatedAt           time.Time                 `json:"created_at"`
	Reference           string                    `json:"reference,omitempty"`
	Notes               string                    `json:"notes,omitempty"`
	SupplierID          string                    `json:"supplier_id,omitempty"`
	CustomerName        string                    `json:"customer_name,omitempty"`
	Total               decimal.Decimal           `json:"total"`
	Items               []TransactionItemResponse `json:"items"`
}

// TransactionListResponse página de documentos.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockBalanceResponse saldo en unidad base.
type StockBalanceResponse struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	QtyBase   decimal.Decimal `json:"qty_base"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockLineResponse saldo de la sucursal con la marca de bajo mínimo.
type StockLineResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku,omitempty"`
	Name      string          `json:"name,omitempty"`
	QtyBase   decimal.Decimal `json:"qty_base"`
	MinStock  decimal.Decimal `json:"min_stock"`
	BelowMin  bool            `json:"below_min"`
}

// RecipeLineRequest componente de una receta por unidad producida.
type RecipeLineRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	ProductUomID string          `json:"product_uom_id" validate:"required"`
	QtyPerUnit   decimal.Decimal `json:"qty_per_unit"`
}

// ConsumeRecipeRequest body para POST /api/inventory/recipes/consume.
type ConsumeRecipeRequest struct {
	BranchID     string              `json:"branch_id"`
	Reference    string              `json:"reference,omitempty" validate:"max=100"`
	Notes        string              `json:"notes,omitempty"`
	CustomerName string              `json:"customer_name,omitempty"`
	Units        decimal.Decimal     `json:"units"`
	Recipe       []RecipeLineRequest `json:"recipe" validate:"required,min=1,dive"`
}

// ReplenishmentSuggestionDTO producto por debajo del mínimo con la compra sugerida.
type ReplenishmentSuggestionDTO struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	MinStock         decimal.Decimal `json:"min_stock"`
	IdealStock       decimal.Decimal `json:"ideal_stock"`        // MinStock * 1.5
	SuggestedQtyBase decimal.Decimal `json:"suggested_qty_base"` // IdealStock - CurrentStock
	PurchaseUomID    string          `json:"purchase_uom_id,omitempty"`
	SuggestedQty     decimal.Decimal `json:"suggested_qty"` // en la unidad de compra
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	Priority         int             `json:"priority"` // 1 = más urgente
}

// ItemInputs convierte las líneas del request a la entrada del libro.
func (r PostTransactionRequest) ItemInputs() []inventory.ItemInput {
	return itemInputs(r.Items)
}

func itemInputs(items []TransactionItemRequest) []inventory.ItemInput {
	out := make([]inventory.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.ItemInput{
			ProductID:    it.ProductID,
			ProductUomID: it.ProductUomID,
			Qty:          it.Qty,
			UnitPrice:    it.UnitPrice,
		})
	}
	return out
}

// RecipeLines convierte la receta del request.
func (r ConsumeRecipeRequest) RecipeLines() []inventory.RecipeLine {
	out := make([]inventory.RecipeLine, 0, len(r.Recipe))
	for _, l := range r.Recipe {
		out = append(out, inventory.RecipeLine{ProductID: l.ProductID, ProductUomID: l.ProductUomID, QtyPerUnit: l.QtyPerUnit})
	}
	return out
}

// NewTransactionResponse mapea la entidad.
func NewTransactionResponse(t *entity.InventoryTransaction) TransactionResponse {
	out := TransactionResponse{
		ID:                  t.ID,
		Type:                t.Type,
		BranchID:            t.BranchID,
		DestinationBranchID: t.DestinationBranchID,
		CreatedBy:           t.CreatedBy,
		CreatedAt:           t.CreatedAt,
		Reference:           t.Reference,
		Notes:               t.Notes,
		SupplierID:          t.SupplierID,
		CustomerName:        t.CustomerName,
		Total:               t.Total(),
		Items:               make([]TransactionItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, TransactionItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductUomID: it.ProductUomID,
			Qty:          it.Qty,
			FactorUsed:   it.FactorUsed,
			QtyBase:      it.QtyBase,
			UnitPrice:    it.UnitPrice,
		})
	}
	return out
}

// NewStockBalanceResponse mapea la entidad.
func NewStockBalanceResponse(b *entity.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{BranchID: b.BranchID, ProductID: b.ProductID, QtyBase: b.QtyBase, UpdatedAt: b.UpdatedAt}
}

// NewStockLineResponse mapea una línea de saldo; el producto puede faltar en catálogo.
func NewStockLineResponse(l inventory.StockLine) StockLineResponse {
	out := StockLineResponse{ProductID: l.Balance.ProductID, QtyBase: l.Balance.QtyBase, BelowMin: l.BelowMin}
	if l.Product != nil {
		out.SKU = l.Product.SKU
		out.Name = l.Product.Name
		out.MinStock = l.Product.MinStock
	}
	return out
}

// NewReplenishmentSuggestionDTO mapea una sugerencia.
func NewReplenishmentSuggestionDTO(s inventory.ReplenishmentSuggestion) ReplenishmentSuggestionDTO {
	return ReplenishmentSuggestionDTO{
		ProductID:        s.ProductID,
		SKU:              s.SKU,
		ProductName:      s.ProductName,
		CurrentStock:     s.CurrentStock,
		MinStock:         s.MinStock,
		IdealStock:       s.IdealStock,
		SuggestedQtyBase: s.SuggestedQtyBase,
		PurchaseUomID:    s.PurchaseUomID,
		SuggestedQty:     s.SuggestedQty,
		EstimatedCost:    s.EstimatedCost,
		Priority:         s.Priority,
	}
}
