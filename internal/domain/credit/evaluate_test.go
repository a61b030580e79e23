package credit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/credit"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func customer(policy string) *entity.CreditCustomer {
	return &entity.CreditCustomer{
		ID:          "cli-1",
		BranchID:    "suc-1",
		Name:        "Ferretería Norte",
		CreditLimit: dec("1000"),
		Policy:      policy,
		IsActive:    true,
	}
}

func note(id, balance string, due time.Time) *entity.CreditNote {
	return &entity.CreditNote{ID: id, CustomerID: "cli-1", Total: dec(balance), Balance: dec(balance), DueDate: due}
}

// Escenario: límite 1000, nota vigente con saldo 400, venta de 500 → disponible 600, aprobada.
func TestEvaluate_DentroDelLimite(t *testing.T) {
	notes := []*entity.CreditNote{note("n1", "400", now.AddDate(0, 0, 10))}

	d := credit.Evaluate(customer(entity.CreditPolicyTotal), notes, dec("500"), now)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)
	assert.True(t, d.Limit.Equal(dec("1000")))
	assert.True(t, d.Balance.Equal(dec("400")))
	assert.True(t, d.Available.Equal(dec("600")), "available = limit - Σ balances")
	assert.False(t, d.CashAllowed)
}

// Escenario: una nota vencida bloquea con VENCIDAS aunque haya límite de sobra.
func TestEvaluate_VencidasBloqueaSinImportarLimite(t *testing.T) {
	notes := []*entity.CreditNote{
		note("n1", "400", now.AddDate(0, 0, 10)),
		note("n2", "100", now.AddDate(0, 0, -1)),
	}

	d := credit.Evaluate(customer(entity.CreditPolicyTotal), notes, dec("1"), now)

	assert.False(t, d.Allowed)
	assert.Equal(t, credit.ReasonOverdue, d.Reason)
	require.Len(t, d.OverdueNotes, 1)
	assert.Equal(t, "n2", d.OverdueNotes[0].ID)
	assert.False(t, d.CanPayToUnblock, "BLOQUEO_TOTAL no ofrece abonar para desbloquear")
	assert.True(t, d.Available.Equal(dec("500")), "los montos se informan aun con vencidas")
}

func TestEvaluate_ExcedeLimite(t *testing.T) {
	notes := []*entity.CreditNote{note("n1", "400", now.AddDate(0, 0, 10))}

	d := credit.Evaluate(customer(entity.CreditPolicyTotal), notes, dec("600.01"), now)

	assert.False(t, d.Allowed)
	assert.Equal(t, credit.ReasonLimit, d.Reason)
	assert.True(t, d.Available.Equal(dec("600")))
}

func TestEvaluate_JustoEnElLimiteSeAprueba(t *testing.T) {
	d := credit.Evaluate(customer(entity.CreditPolicyTotal), nil, dec("1000"), now)
	assert.True(t, d.Allowed)
}

func TestEvaluate_BloqueoParcialPermiteAbonar(t *testing.T) {
	c := customer(entity.CreditPolicyPartial)
	c.AllowCashOnBlock = true
	notes := []*entity.CreditNote{note("n1", "50", now.Add(-time.Hour))}

	d := credit.Evaluate(c, notes, dec("10"), now)

	assert.False(t, d.Allowed)
	assert.Equal(t, credit.ReasonOverdue, d.Reason)
	assert.True(t, d.CanPayToUnblock)
	assert.True(t, d.CashAllowed)
}

func TestEvaluate_IgnoraNotasSaldadasYDeOtrosClientes(t *testing.T) {
	paid := note("n1", "0", now.AddDate(0, 0, -30))
	other := note("n2", "900", now.AddDate(0, 0, -30))
	other.CustomerID = "cli-2"

	d := credit.Evaluate(customer(entity.CreditPolicyTotal), []*entity.CreditNote{paid, other}, dec("1000"), now)

	assert.True(t, d.Allowed)
	assert.True(t, d.Balance.IsZero())
	assert.Empty(t, d.OverdueNotes)
}

func TestEvaluate_VenceHoyNoEstaVencida(t *testing.T) {
	notes := []*entity.CreditNote{note("n1", "100", now)}
	d := credit.Evaluate(customer(entity.CreditPolicyTotal), notes, dec("100"), now)
	assert.True(t, d.Allowed, "dueDate == now todavía no está vencida")
}

// Misma entrada, misma decisión: no lee reloj ni almacenamiento.
func TestEvaluate_EsDeterminista(t *testing.T) {
	c := customer(entity.CreditPolicyPartial)
	notes := []*entity.CreditNote{
		note("n1", "300", now.AddDate(0, 0, 5)),
		note("n2", "20", now.AddDate(0, 0, -2)),
	}
	first := credit.Evaluate(c, notes, dec("250"), now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, credit.Evaluate(c, notes, dec("250"), now))
	}
}

func TestBlockedError_EsErrCreditBlocked(t *testing.T) {
	d := credit.Evaluate(customer(entity.CreditPolicyTotal), nil, dec("5000"), now)
	err := error(&credit.BlockedError{Decision: d})

	assert.ErrorIs(t, err, domain.ErrCreditBlocked)
	assert.Contains(t, err.Error(), credit.ReasonLimit)
}
