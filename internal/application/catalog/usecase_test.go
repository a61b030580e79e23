package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-ledger/internal/application/catalog"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/memory"
)

const (
	branch = "suc-centro"
	actor  = "00000000-0000-0000-0000-000000000001"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (context.Context, *memory.Store, *catalog.ProductUseCase, *entity.Uom, *entity.Uom) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	uc := catalog.NewProductUseCase(store, store.Repos())
	kg, err := uc.CreateUom(ctx, "kg", "Kilogramo")
	require.NoError(t, err)
	bag, err := uc.CreateUom(ctx, "bulto", "Bulto")
	require.NoError(t, err)
	return ctx, store, uc, kg, bag
}

func TestCreateUom(t *testing.T) {
	ctx, _, uc, _, _ := setup(t)

	_, err := uc.CreateUom(ctx, " kg ", "Otro kilo")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateUom(ctx, "", "Sin código")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.ListUoms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bulto", list[0].Code)
	assert.Equal(t, "kg", list[1].Code)
}

func TestCreateProduct_CreaUnidadBase(t *testing.T) {
	ctx, _, uc, kg, _ := setup(t)

	p, err := uc.CreateProduct(ctx, catalog.CreateProductInput{
		BranchID: branch, SKU: " CEM-01 ", Barcode: "7701", Name: "Cemento gris", BaseUomID: kg.ID,
		IsDivisible: true, RetailPrice: dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CEM-01", p.SKU)
	assert.True(t, p.IsActive)

	units, err := uc.ListProductUoms(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].IsBase)
	assert.Equal(t, "kg", units[0].UomCode)
	assert.Equal(t, entity.UomPurposeBoth, units[0].Purpose)
	assert.True(t, units[0].FactorToBase.Equal(decimal.NewFromInt(1)))
}

func TestCreateProduct_Validaciones(t *testing.T) {
	ctx, _, uc, kg, _ := setup(t)

	cases := map[string]struct {
		in    catalog.CreateProductInput
		field string
	}{
		"sin sucursal":     {catalog.CreateProductInput{SKU: "A", Name: "A", BaseUomID: kg.ID}, "branch_id"},
		"sin sku":          {catalog.CreateProductInput{BranchID: branch, Name: "A", BaseUomID: kg.ID}, "sku"},
		"sin unidad base":  {catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A"}, "base_uom_id"},
		"unidad inventada": {catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A", BaseUomID: "no-existe"}, "base_uom_id"},
		"precio negativo":  {catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A", BaseUomID: kg.ID, RetailPrice: dec("-1")}, "retail_price"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.CreateProduct(ctx, tc.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestCreateProduct_CodigoDeBarrasUnicoPorSucursal(t *testing.T) {
	ctx, _, uc, kg, _ := setup(t)
	in := catalog.CreateProductInput{BranchID: branch, SKU: "A", Barcode: "7701", Name: "A", BaseUomID: kg.ID}
	_, err := uc.CreateProduct(ctx, in)
	require.NoError(t, err)

	_, err = uc.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	in.BranchID = "suc-norte"
	_, err = uc.CreateProduct(ctx, in)
	assert.NoError(t, err, "otra sucursal puede repetir el código")

	found, err := uc.FindProductByBarcode(ctx, branch, " 7701 ")
	require.NoError(t, err)
	assert.Equal(t, branch, found.BranchID)

	_, err = uc.FindProductByBarcode(ctx, branch, "0000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddProductUom(t *testing.T) {
	ctx, _, uc, kg, bag := setup(t)
	p, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A", BaseUomID: kg.ID})
	require.NoError(t, err)

	_, err = uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: p.ID, UomID: bag.ID, FactorToBase: dec("0"), Purpose: entity.UomPurposeBoth})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: p.ID, UomID: bag.ID, FactorToBase: dec("50"), Purpose: "GIFT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: "no-existe", UomID: bag.ID, FactorToBase: dec("50"), Purpose: entity.UomPurposeBoth})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: p.ID, UomID: kg.ID, FactorToBase: dec("1"), Purpose: entity.UomPurposeBoth})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "la unidad base ya está asociada")

	pu, err := uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: p.ID, UomID: bag.ID, FactorToBase: dec("50"), Purpose: entity.UomPurposePurchase})
	require.NoError(t, err)
	assert.False(t, pu.IsBase)

	factor, err := uc.ResolveUom(ctx, p.ID, pu.ID)
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("50")))
}

func TestUpdateProductUomFactor(t *testing.T) {
	ctx, _, uc, kg, bag := setup(t)
	p, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A", BaseUomID: kg.ID})
	require.NoError(t, err)
	pu, err := uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: p.ID, UomID: bag.ID, FactorToBase: dec("50"), Purpose: entity.UomPurposeBoth})
	require.NoError(t, err)

	require.NoError(t, uc.UpdateProductUomFactor(ctx, p.ID, pu.ID, dec("42.5")))
	factor, err := uc.ResolveUom(ctx, p.ID, pu.ID)
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("42.5")))

	units, err := uc.ListProductUoms(ctx, p.ID)
	require.NoError(t, err)
	var base string
	for _, u := range units {
		if u.IsBase {
			base = u.ID
		}
	}
	err = uc.UpdateProductUomFactor(ctx, p.ID, base, dec("2"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la base queda en 1")

	err = uc.UpdateProductUomFactor(ctx, p.ID, pu.ID, dec("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveUom_UnidadAjena(t *testing.T) {
	ctx, _, uc, kg, _ := setup(t)
	a, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A", BaseUomID: kg.ID})
	require.NoError(t, err)
	b, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "B", Name: "B", BaseUomID: kg.ID})
	require.NoError(t, err)
	unitsB, err := uc.ListProductUoms(ctx, b.ID)
	require.NoError(t, err)

	_, err = uc.ResolveUom(ctx, a.ID, unitsB[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.ResolveUom(ctx, a.ID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDefaultUoms(t *testing.T) {
	ctx, _, uc, kg, bag := setup(t)
	p, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "A", BaseUomID: kg.ID})
	require.NoError(t, err)
	purchase, err := uc.AddProductUom(ctx, catalog.AddUomInput{ProductID: p.ID, UomID: bag.ID, FactorToBase: dec("50"), Purpose: entity.UomPurposePurchase})
	require.NoError(t, err)

	sale, err := uc.DefaultSaleUom(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, sale, "única candidata de venta")
	assert.True(t, sale.IsBase)

	none, err := uc.DefaultPurchaseUom(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, none, "dos candidatas de compra sin default")

	err = uc.SetDefaultSaleUom(ctx, actor, p.ID, purchase.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidPurpose)

	err = uc.SetDefaultPurchaseUom(ctx, "", p.ID, purchase.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = uc.SetDefaultPurchaseUom(ctx, actor, p.ID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, uc.SetDefaultPurchaseUom(ctx, actor, p.ID, purchase.ID))
	got, err := uc.DefaultPurchaseUom(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, purchase.ID, got.ID)

	units, err := uc.ListProductUoms(ctx, p.ID)
	require.NoError(t, err)
	for _, u := range units {
		assert.Equal(t, u.ID == purchase.ID, u.IsDefaultPurchase)
		assert.False(t, u.IsDefaultSale)
	}
}

func TestDeleteProduct(t *testing.T) {
	ctx, store, uc, kg, _ := setup(t)
	ledger := inventory.NewLedgerUseCase(store, store.Repos())

	unused, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "A", Name: "Arena", BaseUomID: kg.ID})
	require.NoError(t, err)
	used, err := uc.CreateProduct(ctx, catalog.CreateProductInput{BranchID: branch, SKU: "B", Name: "Bloque", BaseUomID: kg.ID})
	require.NoError(t, err)
	units, err := uc.ListProductUoms(ctx, used.ID)
	require.NoError(t, err)
	_, err = ledger.PostTransaction(ctx, inventory.PostInput{
		Type: entity.TransactionTypePurchase, BranchID: branch, ActorID: actor,
		Items: []inventory.ItemInput{{ProductID: used.ID, ProductUomID: units[0].ID, Qty: dec("3")}},
	})
	require.NoError(t, err)

	hard, err := uc.DeleteProduct(ctx, unused.ID)
	require.NoError(t, err)
	assert.True(t, hard)
	_, err = uc.GetProduct(ctx, unused.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	hard, err = uc.DeleteProduct(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, hard, "con historial se desactiva")
	p, err := uc.GetProduct(ctx, used.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActive)

	active, err := uc.ListProductsByBranch(ctx, branch, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := uc.ListProductsByBranch(ctx, branch, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = uc.DeleteProduct(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
