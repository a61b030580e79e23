package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RecipeLine consumo de un insumo por unidad producida (ej. kg de cemento por m3 de concreto).
type RecipeLine struct {
	ProductID    string
	ProductUomID string
	QtyPerUnit   decimal.Decimal
}

// ExpandRecipe multiplica la receta por units y devuelve las líneas a postear.
func ExpandRecipe(lines []RecipeLine, units decimal.Decimal) ([]ItemInput, error) {
	if !units.IsPositive() {
		return nil, domain.Invalid("units", "debe ser mayor que cero")
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("recipe", "al menos un insumo")
	}
	items := make([]ItemInput, 0, len(lines))
	for i, l := range lines {
		if !l.QtyPerUnit.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("recipe[%d].qty_per_unit", i), "debe ser mayor que cero")
		}
		items = append(items, ItemInput{
			ProductID:    l.ProductID,
			ProductUomID: l.ProductUomID,
			Qty:          l.QtyPerUnit.Mul(units),
		})
	}
	return items, nil
}

// ConsumeRecipeInput consumo de insumos por producción.
type ConsumeRecipeInput struct {
	BranchID     string
	ActorID      string
	Reference    string
	Notes        string
	CustomerName string
	Units        decimal.Decimal
	Recipe       []RecipeLine
}

// ConsumeRecipe postea una SALE con los insumos de la receta escalados a Units.
func (uc *LedgerUseCase) ConsumeRecipe(ctx context.Context, in ConsumeRecipeInput) (*entity.InventoryTransaction, error) {
	items, err := ExpandRecipe(in.Recipe, in.Units)
	if err != nil {
		return nil, err
	}
	return uc.PostTransaction(ctx, PostInput{
		Type:         entity.TransactionTypeSale,
		BranchID:     in.BranchID,
		ActorID:      in.ActorID,
		Reference:    in.Reference,
		Notes:        in.Notes,
		CustomerName: in.CustomerName,
		Items:        items,
	})
}
