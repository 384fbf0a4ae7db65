package integration

import (
	"context"
	"os"
	"testing"

	"drawguess/internal/db"
	"drawguess/internal/domain"
	"drawguess/internal/migrations"
	"drawguess/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// openDB connects to DATABASE_URL and applies the embedded migrations.
// The test is skipped when no database is configured.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.Up(context.Background(), pool))
	return pool
}

func uniqueLogin(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

func createAccount(t *testing.T, repo *repository.AccountRepository, login string) *domain.Account {
	t.Helper()

	a := &domain.Account{Login: login, PassHash: "x", Email: login + "@example.com"}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func createDashes(t *testing.T, repo *repository.DashesRepository, word string) domain.Dashes {
	t.Helper()

	d := &domain.Dashes{Word: word, Points: []byte(`[{"x":0.1,"y":0.2,"down":true}]`)}
	require.NoError(t, repo.Create(context.Background(), d))
	return *d
}
