package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"drawguess/internal/db"
	"drawguess/internal/domain"
	"drawguess/internal/logger"
	"drawguess/internal/repository"
	"drawguess/internal/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type puzzleFile struct {
	Word   string          `json:"word"`
	Points json.RawMessage `json:"points"`
}

func main() {
	logger.Init("info", false)
	_ = godotenv.Load()

	if err := newCmd().Execute(); err != nil {
		logger.Fatal("seed failed", "error", err)
	}
}

func newCmd() *cobra.Command {
	var (
		dsn      string
		login    string
		password string
	)

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Load puzzles and test accounts into the drawguess database.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string (env: DATABASE_URL)")

	puzzles := &cobra.Command{
		Use:   "puzzles FILE",
		Short: "Insert puzzles from a JSON array of {word, points}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var list []puzzleFile
			if err := json.Unmarshal(raw, &list); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			pool, err := db.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := repository.NewDashesRepository(pool)
			for _, p := range list {
				d := &domain.Dashes{Word: p.Word, Points: p.Points}
				if err := repo.Create(cmd.Context(), d); err != nil {
					return fmt.Errorf("insert %q: %w", p.Word, err)
				}
				logger.Info("puzzle created", "dashes_id", d.ID, "word", d.Word)
			}
			return nil
		},
	}

	account := &cobra.Command{
		Use:   "account",
		Short: "Create a test account (if missing) and print a token for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET not set")
			}
			service.InitJWT(secret)

			pool, err := db.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			token, err := ensureAccount(cmd.Context(), repository.NewAccountRepository(pool), login, password)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	account.Flags().StringVar(&login, "login", "tester", "account login")
	account.Flags().StringVar(&password, "password", "tester", "account password")

	root.AddCommand(puzzles, account)
	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}

func ensureAccount(ctx context.Context, repo *repository.AccountRepository, login, password string) (string, error) {
	svc := service.NewAccountService(repo)

	a, err := svc.Register(ctx, login, password, "")
	switch {
	case errors.Is(err, domain.ErrLoginTaken):
		logger.Info("account already exists", "login", login)
	case err != nil:
		return "", fmt.Errorf("create account: %w", err)
	default:
		logger.Info("account created", "login", a.Login, "id", a.ID)
	}

	return service.GenerateJWT(login)
}
