package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/domain/repository"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/memory"
)

func TestRun_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	boom := errors.New("boom")

	err := store.Run(ctx, func(r repository.Repos) error {
		require.NoError(t, r.Stock.Increment(ctx, "b1", "p1", decimal.NewFromInt(10)))
		require.NoError(t, r.Uoms.Create(ctx, &entity.Uom{ID: "u1", Code: "kg", Name: "Kilogramo"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	bal, err := store.Repos().Stock.Get(ctx, "b1", "p1")
	require.NoError(t, err)
	assert.True(t, bal.QtyBase.IsZero())
	u, err := store.Repos().Uoms.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	err := store.Run(ctx, func(r repository.Repos) error {
		if err := r.Stock.Increment(ctx, "b1", "p1", decimal.NewFromInt(10)); err != nil {
			return err
		}
		// dentro de la transacción se ve la escritura propia
		bal, err := r.Stock.GetForUpdate(ctx, "b1", "p1")
		require.NoError(t, err)
		assert.True(t, bal.QtyBase.Equal(decimal.NewFromInt(10)))
		return nil
	})
	require.NoError(t, err)

	bal, err := store.Repos().Stock.Get(ctx, "b1", "p1")
	require.NoError(t, err)
	assert.True(t, bal.QtyBase.Equal(decimal.NewFromInt(10)))
}

func TestStock_DecrementCondicional(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()

	ok, err := repos.Stock.Decrement(ctx, "b1", "p1", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.False(t, ok, "sin fila no hay nada que descontar")

	require.NoError(t, repos.Stock.Increment(ctx, "b1", "p1", decimal.NewFromInt(5)))
	ok, err = repos.Stock.Decrement(ctx, "b1", "p1", decimal.NewFromInt(6))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repos.Stock.Decrement(ctx, "b1", "p1", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, ok)

	bal, err := repos.Stock.Get(ctx, "b1", "p1")
	require.NoError(t, err)
	assert.True(t, bal.QtyBase.IsZero())
}

func TestRun_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewStore().Run(ctx, func(repository.Repos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
