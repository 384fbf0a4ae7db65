package main

import (
	"context"
	"errors"
	"os"

	"drawguess/internal/db"
	"drawguess/internal/logger"
	"drawguess/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	logger.Init("info", false)
	_ = godotenv.Load()

	if err := newCmd().Execute(); err != nil {
		logger.Fatal("migrate failed", "error", err)
	}
}

func newCmd() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the drawguess database schema.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string (env: DATABASE_URL)")

	withPool := func(run func(ctx context.Context, pool *pgxpool.Pool) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return errors.New("DATABASE_URL not set")
			}
			pool, err := db.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer pool.Close()
			return run(cmd.Context(), pool)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := migrations.Up(ctx, pool); err != nil {
					return err
				}
				logger.Info("migrations applied")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := migrations.Down(ctx, pool); err != nil {
					return err
				}
				logger.Info("migration rolled back")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			Args:  cobra.NoArgs,
			RunE:  withPool(migrations.Status),
		},
	)

	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}
