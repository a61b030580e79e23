package inventory_test

import (
	"context"
	"errors"
	"sync"
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
	branchA = "suc-centro"
	branchB = "suc-norte"
	actor   = "00000000-0000-0000-0000-000000000001"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// fixture cemento contado en kg, con bulto de 50 kg solo para compra.
type fixture struct {
	ctx     context.Context
	store   *memory.Store
	catalog *catalog.ProductUseCase
	ledger  *inventory.LedgerUseCase
	kg      *entity.Uom
	bag     *entity.Uom
	cement  *entity.Product
	kgUnit  string // ProductUom base
	bagUnit string // ProductUom bulto
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		ctx:     context.Background(),
		store:   store,
		catalog: catalog.NewProductUseCase(store, store.Repos()),
		ledger:  inventory.NewLedgerUseCase(store, store.Repos()),
	}
	var err error
	f.kg, err = f.catalog.CreateUom(f.ctx, "kg", "Kilogramo")
	require.NoError(t, err)
	f.bag, err = f.catalog.CreateUom(f.ctx, "bulto", "Bulto")
	require.NoError(t, err)

	f.cement = f.createProduct(t, branchA, "CEM-01", true)
	f.kgUnit = f.baseUnit(t, f.cement.ID)
	bag, err := f.catalog.AddProductUom(f.ctx, catalog.AddUomInput{
		ProductID:    f.cement.ID,
		UomID:        f.bag.ID,
		FactorToBase: dec("50"),
		Purpose:      entity.UomPurposePurchase,
	})
	require.NoError(t, err)
	f.bagUnit = bag.ID
	return f
}

func (f *fixture) createProduct(t *testing.T, branchID, sku string, divisible bool) *entity.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(f.ctx, catalog.CreateProductInput{
		BranchID:       branchID,
		SKU:            sku,
		Name:           "Producto " + sku,
		BaseUomID:      f.kg.ID,
		IsDivisible:    divisible,
		PurchasePrice:  dec("1"),
		WholesalePrice: dec("1.5"),
		RetailPrice:    dec("2"),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) baseUnit(t *testing.T, productID string) string {
	t.Helper()
	units, err := f.catalog.ListProductUoms(f.ctx, productID)
	require.NoError(t, err)
	for _, u := range units {
		if u.IsBase {
			return u.ID
		}
	}
	t.Fatalf("producto %s sin unidad base", productID)
	return ""
}

func (f *fixture) post(txType, branchID string, items ...inventory.ItemInput) (*entity.InventoryTransaction, error) {
	return f.ledger.PostTransaction(f.ctx, inventory.PostInput{Type: txType, BranchID: branchID, ActorID: actor, Items: items})
}

func (f *fixture) balance(t *testing.T, branchID, productID string) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.GetStockBalance(f.ctx, branchID, productID)
	require.NoError(t, err)
	return b.QtyBase
}

func (f *fixture) buyBags(t *testing.T, bags string) {
	t.Helper()
	_, err := f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.bagUnit, Qty: dec(bags)})
	require.NoError(t, err)
}

// Escenario: compra de 2 bultos de 50 kg → +100 kg.
func TestPostTransaction_CompraEnBultosConvierteAUnidadBase(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.balance(t, branchA, f.cement.ID).IsZero())

	txn, err := f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.bagUnit, Qty: dec("2")})
	require.NoError(t, err)

	require.Len(t, txn.Items, 1)
	it := txn.Items[0]
	assert.True(t, it.FactorUsed.Equal(dec("50")))
	assert.True(t, it.QtyBase.Equal(dec("100")))
	assert.True(t, it.UnitPrice.Equal(dec("50")), "precio de compra por kg × factor")
	assert.Equal(t, actor, txn.CreatedBy)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("100")))
}

// Escenario: venta de 150 kg con 100 disponibles → InsufficientStock y el saldo no cambia.
func TestPostTransaction_VentaSinStockSuficiente(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")

	_, err := f.post(entity.TransactionTypeSale, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("150")})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, f.cement.ID, stockErr.ProductID)
	assert.Equal(t, branchA, stockErr.BranchID)
	assert.True(t, stockErr.Available.Equal(dec("100")))
	assert.True(t, stockErr.Requested.Equal(dec("150")))
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("100")))

	list, err := f.ledger.ListTransactions(f.ctx, branchA, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1, "la venta rechazada no deja documento")
}

// Escenario: dos ventas concurrentes de 60 sobre 100 → exactamente una pasa, saldo final 40.
func TestPostTransaction_VentasConcurrentes(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")

	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		errs     = make([]error, 2)
		attempts = len(errs)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.post(entity.TransactionTypeSale, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("60")})
		}(i)
	}
	close(start)
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("40")))

	found, err := f.ledger.VerifyLedger(f.ctx, branchA)
	require.NoError(t, err)
	assert.Empty(t, found, "el saldo nunca quedó negativo")
}

func TestPostTransaction_TodoONada(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")
	sand := f.createProduct(t, branchA, "ARE-01", true)
	sandUnit := f.baseUnit(t, sand.ID)
	_, err := f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: sand.ID, ProductUomID: sandUnit, Qty: dec("5")})
	require.NoError(t, err)

	_, err = f.post(entity.TransactionTypeSale, branchA,
		inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("10")},
		inventory.ItemInput{ProductID: sand.ID, ProductUomID: sandUnit, Qty: dec("6")},
	)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("100")), "la línea válida tampoco se aplica")
	assert.True(t, f.balance(t, branchA, sand.ID).Equal(dec("5")))
}

func TestPostTransaction_LineasDelMismoProductoSeSuman(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")

	_, err := f.post(entity.TransactionTypeSale, branchA,
		inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("60")},
		inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("60")},
	)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("100")))
}

func TestPostTransaction_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "1")
	other := f.createProduct(t, branchA, "OTR-01", true)
	otherUnit := f.baseUnit(t, other.ID)
	foreign := f.createProduct(t, branchB, "FOR-01", true)

	cases := []struct {
		name  string
		in    inventory.PostInput
		is    error
		field string
	}{
		{
			name: "sin líneas",
			in:   inventory.PostInput{Type: entity.TransactionTypeSale, BranchID: branchA, ActorID: actor},
			is:   domain.ErrInvalidInput, field: "items",
		},
		{
			name: "tipo desconocido",
			in:   inventory.PostInput{Type: "GIFT", BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1")}}},
			is:   domain.ErrInvalidInput, field: "type",
		},
		{
			name: "sin actor",
			in:   inventory.PostInput{Type: entity.TransactionTypeSale, BranchID: branchA, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1")}}},
			is:   domain.ErrInvalidInput, field: "actor_id",
		},
		{
			name: "cantidad cero",
			in:   inventory.PostInput{Type: entity.TransactionTypeSale, BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("0")}}},
			is:   domain.ErrInvalidInput, field: "items[0].qty",
		},
		{
			name: "ajuste en cero",
			in:   inventory.PostInput{Type: entity.TransactionTypeAdjust, BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("0")}}},
			is:   domain.ErrInvalidInput, field: "items[0].qty",
		},
		{
			name: "precio negativo",
			in:   inventory.PostInput{Type: entity.TransactionTypeSale, BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1"), UnitPrice: ptr(dec("-1"))}}},
			is:   domain.ErrInvalidInput, field: "items[0].unit_price",
		},
		{
			name: "producto de otra sucursal",
			in:   inventory.PostInput{Type: entity.TransactionTypePurchase, BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: foreign.ID, ProductUomID: f.baseUnit(t, foreign.ID), Qty: dec("1")}}},
			is:   domain.ErrInvalidInput, field: "items[0].product_id",
		},
		{
			name: "unidad de otro producto",
			in:   inventory.PostInput{Type: entity.TransactionTypePurchase, BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: otherUnit, Qty: dec("1")}}},
			is:   domain.ErrNotFound,
		},
		{
			name: "venta con unidad solo de compra",
			in:   inventory.PostInput{Type: entity.TransactionTypeSale, BranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.bagUnit, Qty: dec("1")}}},
			is:   domain.ErrInvalidPurpose,
		},
		{
			name: "traslado a la misma sucursal",
			in:   inventory.PostInput{Type: entity.TransactionTypeTransfer, BranchID: branchA, DestinationBranchID: branchA, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1")}}},
			is:   domain.ErrInvalidInput, field: "destination_branch_id",
		},
		{
			name: "destino fuera de traslado",
			in:   inventory.PostInput{Type: entity.TransactionTypeSale, BranchID: branchA, DestinationBranchID: branchB, ActorID: actor, Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1")}}},
			is:   domain.ErrInvalidInput, field: "destination_branch_id",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.PostTransaction(f.ctx, tc.in)
			require.ErrorIs(t, err, tc.is)
			if tc.field != "" {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tc.field, ve.Field)
			}
		})
	}
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("50")), "ningún rechazo toca el saldo")
}

func TestPostTransaction_ProductoNoDivisible(t *testing.T) {
	f := newFixture(t)
	brick := f.createProduct(t, branchA, "LAD-01", false)
	brickUnit := f.baseUnit(t, brick.ID)
	half, err := f.catalog.AddProductUom(f.ctx, catalog.AddUomInput{ProductID: brick.ID, UomID: f.bag.ID, FactorToBase: dec("0.5"), Purpose: entity.UomPurposeBoth})
	require.NoError(t, err)

	_, err = f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: brick.ID, ProductUomID: brickUnit, Qty: dec("1.5")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad fraccionaria")

	_, err = f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: brick.ID, ProductUomID: half.ID, Qty: dec("3")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "3 × 0.5 = 1.5 en unidad base")

	_, err = f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: brick.ID, ProductUomID: half.ID, Qty: dec("4")})
	require.NoError(t, err)
	assert.True(t, f.balance(t, branchA, brick.ID).Equal(dec("2")))
}

func TestPostTransaction_ProductoInactivo(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "1")
	hard, err := f.catalog.DeleteProduct(f.ctx, f.cement.ID)
	require.NoError(t, err)
	require.False(t, hard, "con historial solo se desactiva")

	_, err = f.post(entity.TransactionTypeSale, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPostTransaction_PrecioPorDefecto(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")

	retail, err := f.post(entity.TransactionTypeSale, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("3")})
	require.NoError(t, err)
	assert.True(t, retail.Items[0].UnitPrice.Equal(dec("2")))
	assert.True(t, retail.Total().Equal(dec("6")))

	wholesale, err := f.ledger.PostTransaction(f.ctx, inventory.PostInput{
		Type: entity.TransactionTypeSale, BranchID: branchA, ActorID: actor, PriceTier: entity.PriceTierWholesale,
		Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("2")}},
	})
	require.NoError(t, err)
	assert.True(t, wholesale.Items[0].UnitPrice.Equal(dec("1.5")))

	explicit, err := f.post(entity.TransactionTypeSale, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("1"), UnitPrice: ptr(dec("9.99"))})
	require.NoError(t, err)
	assert.True(t, explicit.Items[0].UnitPrice.Equal(dec("9.99")))

	adjust, err := f.post(entity.TransactionTypeAdjust, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("-1")})
	require.NoError(t, err)
	assert.True(t, adjust.Items[0].UnitPrice.IsZero())
}

func TestPostTransaction_Ajustes(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "1")

	_, err := f.post(entity.TransactionTypeAdjust, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("-51")})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.post(entity.TransactionTypeAdjust, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("-50")})
	require.NoError(t, err)
	assert.True(t, f.balance(t, branchA, f.cement.ID).IsZero())

	_, err = f.post(entity.TransactionTypeAdjust, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("12.5")})
	require.NoError(t, err)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("12.5")))
}

func TestVerifyLedger_AjusteConLineasDeSignoMixto(t *testing.T) {
	f := newFixture(t)

	_, err := f.post(entity.TransactionTypeAdjust, branchA,
		inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("-5")},
		inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("10")},
	)
	require.NoError(t, err)
	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("5")))

	found, err := f.ledger.VerifyLedger(f.ctx, branchA)
	require.NoError(t, err)
	assert.Empty(t, found, "la transacción se valida completa, no línea por línea")
}

func TestPostTransaction_Traslado(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")

	_, err := f.ledger.PostTransaction(f.ctx, inventory.PostInput{
		Type: entity.TransactionTypeTransfer, BranchID: branchA, DestinationBranchID: branchB, ActorID: actor,
		Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("30")}},
	})
	require.NoError(t, err)

	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("70")))
	assert.True(t, f.balance(t, branchB, f.cement.ID).Equal(dec("30")))

	lines, err := f.ledger.ListStockByBranch(f.ctx, branchB)
	require.NoError(t, err)
	require.Len(t, lines, 1, "el saldo recibido aparece aunque el producto sea de otra sucursal")
	assert.Equal(t, f.cement.ID, lines[0].Balance.ProductID)

	received, err := f.ledger.ListTransactions(f.ctx, branchB, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, received, 1)

	for _, b := range []string{branchA, branchB} {
		found, err := f.ledger.VerifyLedger(f.ctx, b)
		require.NoError(t, err)
		assert.Empty(t, found, "sucursal %s", b)
	}
}

// El factor guardado en la línea no cambia aunque luego se edite la unidad.
func TestPostTransaction_FactorHistoricoInmutable(t *testing.T) {
	f := newFixture(t)
	first, err := f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.bagUnit, Qty: dec("1")})
	require.NoError(t, err)

	require.NoError(t, f.catalog.UpdateProductUomFactor(f.ctx, f.cement.ID, f.bagUnit, dec("42.5")))

	second, err := f.post(entity.TransactionTypePurchase, branchA, inventory.ItemInput{ProductID: f.cement.ID, ProductUomID: f.bagUnit, Qty: dec("2")})
	require.NoError(t, err)
	assert.True(t, second.Items[0].FactorUsed.Equal(dec("42.5")))

	stored, err := f.ledger.GetTransaction(f.ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].FactorUsed.Equal(dec("50")))
	assert.True(t, stored.Items[0].QtyBase.Equal(dec("50")))

	assert.True(t, f.balance(t, branchA, f.cement.ID).Equal(dec("135")))
	found, err := f.ledger.VerifyLedger(f.ctx, branchA)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGetTransaction_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.GetTransaction(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListStockByBranch_MarcaBajoMinimo(t *testing.T) {
	f := newFixture(t)
	p, err := f.catalog.CreateProduct(f.ctx, catalog.CreateProductInput{
		BranchID: branchA, SKU: "VAR-01", Name: "Varilla", BaseUomID: f.kg.ID, MinStock: dec("10"),
	})
	require.NoError(t, err)

	lines, err := f.ledger.ListStockByBranch(f.ctx, branchA)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	byID := map[string]inventory.StockLine{}
	for _, l := range lines {
		byID[l.Balance.ProductID] = l
	}
	assert.True(t, byID[p.ID].BelowMin)
	assert.True(t, byID[p.ID].Balance.QtyBase.IsZero())
	assert.False(t, byID[f.cement.ID].BelowMin, "MinStock cero nunca está bajo mínimo")
}

func TestListTransactions_RangoInvalido(t *testing.T) {
	f := newFixture(t)
	from := f.cement.CreatedAt
	to := from.Add(-1)
	_, err := f.ledger.ListTransactions(f.ctx, branchA, &from, &to, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListTransactions_Paginacion(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.buyBags(t, "1")
	}
	page, err := f.ledger.ListTransactions(f.ctx, branchA, nil, nil, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	rest, err := f.ledger.ListTransactions(f.ctx, branchA, nil, nil, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestClearHistory(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")

	_, err := f.ledger.ClearHistory(f.ctx, "", branchA)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := f.ledger.ClearHistory(f.ctx, actor, branchA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, f.balance(t, branchA, f.cement.ID).IsZero())

	list, err := f.ledger.ListTransactions(f.ctx, branchA, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	hard, err := f.catalog.DeleteProduct(f.ctx, f.cement.ID)
	require.NoError(t, err)
	assert.True(t, hard, "sin historial el producto se borra")
}

func TestClearHistory_ConTrasladosSeNiega(t *testing.T) {
	f := newFixture(t)
	f.buyBags(t, "2")
	_, err := f.ledger.PostTransaction(f.ctx, inventory.PostInput{
		Type: entity.TransactionTypeTransfer, BranchID: branchA, DestinationBranchID: branchB, ActorID: actor,
		Items: []inventory.ItemInput{{ProductID: f.cement.ID, ProductUomID: f.kgUnit, Qty: dec("10")}},
	})
	require.NoError(t, err)

	_, err = f.ledger.ClearHistory(f.ctx, actor, branchB)
	assert.ErrorIs(t, err, domain.ErrHistoryLocked)
	assert.NotErrorIs(t, err, domain.ErrConflict, "un rechazo de negocio no se reintenta")
	assert.True(t, f.balance(t, branchB, f.cement.ID).Equal(dec("10")))
}
