package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentSuggestion producto bajo mínimo con la cantidad sugerida de compra.
// SuggestedQty está en la unidad de compra por defecto (PurchaseUomID) si existe; si no, en unidad base.
type ReplenishmentSuggestion struct {
	ProductID        string
	SKU              string
	ProductName      string
	CurrentStock     decimal.Decimal
	MinStock         decimal.Decimal
	IdealStock       decimal.Decimal // MinStock * 1.5
	SuggestedQtyBase decimal.Decimal
	PurchaseUomID    string
	SuggestedQty     decimal.Decimal
	EstimatedCost    decimal.Decimal
	Priority         int // 1 = más urgente
}

// ReplenishmentUseCase genera la lista de reposición de una sucursal a partir de los saldos y MinStock.
type ReplenishmentUseCase struct {
	repos repository.Repos
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(repos repository.Repos) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{repos: repos}
}

// GenerateReplenishmentList devuelve los productos activos por debajo de MinStock, ordenados por
// déficit relativo (el más vacío primero).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, branchID string) ([]ReplenishmentSuggestion, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	products, err := uc.repos.Products.ListByBranch(ctx, branchID, false)
	if err != nil {
		return nil, err
	}
	ratio := decimal.NewFromFloat(1.5)

	out := make([]ReplenishmentSuggestion, 0)
	for _, p := range products {
		if !p.MinStock.IsPositive() {
			continue
		}
		bal, err := uc.repos.Stock.Get(ctx, branchID, p.ID)
		if err != nil {
			return nil, err
		}
		if !bal.QtyBase.LessThan(p.MinStock) {
			continue
		}
		ideal := p.MinStock.Mul(ratio)
		qtyBase := ideal.Sub(bal.QtyBase)
		s := ReplenishmentSuggestion{
			ProductID:        p.ID,
			SKU:              p.SKU,
			ProductName:      p.Name,
			CurrentStock:     bal.QtyBase,
			MinStock:         p.MinStock,
			IdealStock:       ideal,
			SuggestedQtyBase: qtyBase,
			SuggestedQty:     qtyBase,
			EstimatedCost:    qtyBase.Mul(p.PurchasePrice),
		}
		pu, err := uc.purchaseUom(ctx, p)
		if err != nil {
			return nil, err
		}
		if pu != nil && !pu.IsBase {
			s.PurchaseUomID = pu.ID
			// se redondea hacia arriba a unidades completas de compra
			s.SuggestedQty = qtyBase.Div(pu.FactorToBase).Ceil()
			s.EstimatedCost = s.SuggestedQty.Mul(pu.FactorToBase).Mul(p.PurchasePrice)
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a := out[i].CurrentStock.Div(out[i].MinStock)
		b := out[j].CurrentStock.Div(out[j].MinStock)
		if !a.Equal(b) {
			return a.LessThan(b)
		}
		return out[i].SKU < out[j].SKU
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

func (uc *ReplenishmentUseCase) purchaseUom(ctx context.Context, p *entity.Product) (*entity.ProductUom, error) {
	if p.DefaultPurchaseUomID == nil {
		return nil, nil
	}
	pu, err := uc.repos.ProductUoms.GetByID(ctx, *p.DefaultPurchaseUomID)
	if err != nil {
		return nil, err
	}
	if pu == nil || pu.ProductID != p.ID {
		return nil, nil
	}
	return pu, nil
}
