package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-ledger/internal/application/catalog"
	"github.com/jhoicas/branch-ledger/internal/application/checkout"
	"github.com/jhoicas/branch-ledger/internal/application/credit"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/application/retry"
	"github.com/jhoicas/branch-ledger/internal/domain"
	creditrules "github.com/jhoicas/branch-ledger/internal/domain/credit"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/branch-ledger/pkg/config"
)

const actor = "00000000-0000-0000-0000-000000000001"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// openDB conecta a DATABASE_URL y aplica el esquema; sin DATABASE_URL el test se omite.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL no definido: se omiten las pruebas contra PostgreSQL")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 16})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

// seedProduct crea un producto en kg en una sucursal nueva y le carga stock inicial.
func seedProduct(t *testing.T, pool *pgxpool.Pool, ledger *inventory.LedgerUseCase, qty string) (branchID, productID, unitID string) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	branchID = "it-" + suffix
	products := catalog.NewProductUseCase(postgres.NewTxRunner(pool), postgres.NewRepos(pool))

	kg, err := products.CreateUom(ctx, "kg-"+suffix, "Kilogramo")
	require.NoError(t, err)
	p, err := products.CreateProduct(ctx, catalog.CreateProductInput{
		BranchID: branchID, SKU: "CEM-" + suffix, Name: "Cemento", BaseUomID: kg.ID, IsDivisible: true, RetailPrice: dec("2"),
	})
	require.NoError(t, err)
	units, err := products.ListProductUoms(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, units, 1)

	_, err = ledger.PostTransaction(ctx, inventory.PostInput{
		Type: entity.TransactionTypePurchase, BranchID: branchID, ActorID: actor,
		Items: []inventory.ItemInput{{ProductID: p.ID, ProductUomID: units[0].ID, Qty: dec(qty)}},
	})
	require.NoError(t, err)
	return branchID, p.ID, units[0].ID
}

// Ventas concurrentes sobre el mismo saldo: FOR UPDATE + descuento condicional.
func TestLedger_VentasConcurrentesPostgres(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), postgres.NewRepos(pool))
	branchID, productID, unitID := seedProduct(t, pool, ledger, "100")
	t.Cleanup(func() { _, _ = ledger.ClearHistory(context.Background(), actor, branchID) })

	const attempts = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	policy := retry.Policy{MaxRetries: 5}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = policy.Do(ctx, func() error {
				_, err := ledger.PostTransaction(ctx, inventory.PostInput{
					Type: entity.TransactionTypeSale, BranchID: branchID, ActorID: actor,
					Items: []inventory.ItemInput{{ProductID: productID, ProductUomID: unitID, Qty: dec("60")}},
				})
				return err
			})
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
	assert.Equal(t, attempts-1, insufficient)

	bal, err := ledger.GetStockBalance(ctx, branchID, productID)
	require.NoError(t, err)
	assert.True(t, bal.QtyBase.Equal(dec("40")), "saldo=%s", bal.QtyBase)

	found, err := ledger.VerifyLedger(ctx, branchID)
	require.NoError(t, err)
	assert.Empty(t, found)
}

// Checkouts a crédito concurrentes del mismo cliente: el bloqueo de su fila impide
// que ambos vean el mismo saldo disponible.
func TestCheckout_CreditoConcurrentePostgres(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()
	runner, repos := postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	ledger := inventory.NewLedgerUseCase(runner, repos)
	risk := credit.NewRiskUseCase(runner, repos)
	uc := checkout.NewCheckoutUseCase(runner, ledger, risk, retry.Policy{MaxRetries: 5})
	branchID, productID, unitID := seedProduct(t, pool, ledger, "1000")

	c, err := risk.CreateCustomer(ctx, credit.CustomerInput{
		BranchID: branchID, Name: "Constructora Andina", CreditLimit: dec("100"), DefaultCreditDays: 30,
		Policy: entity.CreditPolicyTotal,
	})
	require.NoError(t, err)

	const attempts = 4
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// 30 kg a $2 = 60; solo cabe una venta en el límite de 100
			_, errs[i] = uc.Checkout(ctx, checkout.Input{
				BranchID: branchID, ActorID: actor, PaymentType: checkout.PaymentCredit, CustomerID: c.ID,
				Items: []inventory.ItemInput{{ProductID: productID, ProductUomID: unitID, Qty: dec("30")}},
			})
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var blocked *creditrules.BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, creditrules.ReasonLimit, blocked.Decision.Reason)
	}
	assert.Equal(t, 1, ok)

	open, err := risk.GetOpenNotes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].Balance.Equal(dec("60")))

	bal, err := ledger.GetStockBalance(ctx, branchID, productID)
	require.NoError(t, err)
	assert.True(t, bal.QtyBase.Equal(dec("970")))

	// saldar la nota deja la sucursal purgable
	res, err := risk.ApplyPayments(ctx, actor, []credit.PaymentInput{{NoteID: open[0].ID, Amount: dec("60"), Method: "EFECTIVO"}})
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	_, err = ledger.ClearHistory(ctx, actor, branchID)
	assert.NoError(t, err)
}
