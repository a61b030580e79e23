package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
)

func TestExpandRecipe(t *testing.T) {
	lines := []inventory.RecipeLine{
		{ProductID: "cemento", ProductUomID: "kg", QtyPerUnit: dec("350")},
		{ProductID: "arena", ProductUomID: "kg", QtyPerUnit: dec("0.75")},
	}

	items, err := inventory.ExpandRecipe(lines, dec("2"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Qty.Equal(dec("700")))
	assert.True(t, items[1].Qty.Equal(dec("1.5")))
	assert.Nil(t, items[0].UnitPrice)

	_, err = inventory.ExpandRecipe(lines, dec("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.ExpandRecipe(nil, dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.ExpandRecipe([]inventory.RecipeLine{{ProductID: "x", ProductUomID: "y", QtyPerUnit: dec("-1")}}, dec("1"))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "recipe[0].qty_per_unit", ve.Field)
}

func TestConsumeRecipe(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "4")

	txn, err := f.ledger.ConsumeRecipe(f.ctx, inventory.ConsumeRecipeInput{
		BranchID:  branchA,
		ActorID:   actor,
		Reference: "OP-7",
		Units:     dec("3"),
		Recipe:    []inventory.RecipeLine{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, QtyPerUnit: dec("50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionTypeSale, txn.Type)
	assert.Equal(t, "OP-7", txn.Reference)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("50")))

	_, err = f.ledger.ConsumeRecipe(f.ctx, inventory.ConsumeRecipeInput{
		BranchID: branchA,
		ActorID:  actor,
		Units:    dec("2"),
		Recipe:   []inventory.RecipeLine{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, QtyPerUnit: dec("50")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("50")))
}
