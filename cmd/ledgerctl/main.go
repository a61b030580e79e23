// Command ledgerctl tareas de mantenimiento del libro de inventario sobre PostgreSQL.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/branch-ledger/pkg/config"
	"github.com/jhoicas/branch-ledger/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errDiscrepancies hace que verify termine con código distinto de cero.
var errDiscrepancies = errors.New("el libro no cuadra con los saldos")

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env dependencias compartidas por los subcomandos.
type env struct {
	log  *logger.Logger
	pool *pgxpool.Pool
}

func rootCmd() *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Mantenimiento del libro de inventario por sucursal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.DriverPostgres {
				return fmt.Errorf("ledgerctl requiere STORE_DRIVER=postgres (actual: %s)", cfg.Store.Driver)
			}
			e.log = logger.NewWithWriter(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}, os.Stderr)
			pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			e.pool = pool
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.pool != nil {
				e.pool.Close()
			}
		},
	}
	cmd.AddCommand(migrateCmd(e), verifyCmd(e), clearHistoryCmd(e))
	return cmd
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.Migrate(cmd.Context(), e.pool); err != nil {
				return err
			}
			e.log.Info().Msg("esquema aplicado")
			return nil
		},
	}
}

func verifyCmd(e *env) *cobra.Command {
	var branchID string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Reproduce el libro de la sucursal y lo compara con los saldos guardados",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := inventory.NewLedgerUseCase(postgres.NewTxRunner(e.pool), postgres.NewRepos(e.pool))
			found, err := uc.VerifyLedger(cmd.Context(), branchID)
			if err != nil {
				return err
			}
			for _, d := range found {
				ev := e.log.Error().
					Str("kind", d.Kind).
					Str("branch_id", d.BranchID).
					Str("product_id", d.ProductID).
					Str("expected", d.Expected.String()).
					Str("actual", d.Actual.String())
				if d.TransactionID != "" {
					ev = ev.Str("transaction_id", d.TransactionID)
				}
				ev.Msg("discrepancia")
			}
			if len(found) > 0 {
				return fmt.Errorf("%w: %d discrepancias", errDiscrepancies, len(found))
			}
			e.log.Info().Str("branch_id", branchID).Msg("libro consistente")
			return nil
		},
	}
	cmd.Flags().StringVar(&branchID, "branch", "", "Sucursal a verificar")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}

func clearHistoryCmd(e *env) *cobra.Command {
	var (
		branchID string
		actorID  string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "clear-history",
		Short: "Borra documentos y saldos de la sucursal",
		Long: `Borra todos los documentos del libro y los saldos de la sucursal en una sola transacción.
Se niega si la sucursal tiene notas de crédito con saldo o traslados con otra sucursal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("operación destructiva: confirme con --yes")
			}
			uc := inventory.NewLedgerUseCase(postgres.NewTxRunner(e.pool), postgres.NewRepos(e.pool))
			n, err := uc.ClearHistory(cmd.Context(), actorID, branchID)
			if err != nil {
				return err
			}
			e.log.Warn().
				Str("branch_id", branchID).
				Str("actor_id", actorID).
				Int64("transactions", n).
				Msg("historial de la sucursal borrado")
			return nil
		},
	}
	cmd.Flags().StringVar(&branchID, "branch", "", "Sucursal a purgar")
	cmd.Flags().StringVar(&actorID, "actor", "ledgerctl", "Actor que ejecuta la purga")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirma la purga")
	_ = cmd.MarkFlagRequired("branch")
	return cmd
}
