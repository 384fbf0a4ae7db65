package service

import (
	"context"
	"testing"

	"drawguess/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccounts) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	args := m.Called(ctx, login)
	a, _ := args.Get(0).(*domain.Account)
	return a, args.Error(1)
}

func (m *mockAccounts) Update(ctx context.Context, login string, upd domain.AccountUpdate) (*domain.Account, error) {
	args := m.Called(ctx, login, upd)
	a, _ := args.Get(0).(*domain.Account)
	return a, args.Error(1)
}

func (m *mockAccounts) GetBest(ctx context.Context, limit int) ([]domain.Account, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]domain.Account)
	return list, args.Error(1)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAccounts)

	var stored *domain.Account
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Account) }).
		Return(nil)

	svc := NewAccountService(repo)
	a, err := svc.Register(ctx, " alice ", "secret", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Login)
	assert.NotEqual(t, "secret", stored.PassHash)

	repo.On("GetByLogin", ctx, "alice").Return(stored, nil)

	got, err := svc.Authenticate(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Login)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateUnknownLogin(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAccounts)
	repo.On("GetByLogin", ctx, "ghost").Return(nil, domain.ErrNotFound)

	_, err := NewAccountService(repo).Authenticate(ctx, "ghost", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterRejectsEmpty(t *testing.T) {
	_, err := NewAccountService(new(mockAccounts)).Register(context.Background(), "  ", "x", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestChangeKeepsEmptyFields(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAccounts)
	repo.On("Update", ctx, "alice", domain.AccountUpdate{Email: "new@example.com"}).
		Return(&domain.Account{Login: "alice", Email: "new@example.com"}, nil)

	a, err := NewAccountService(repo).Change(ctx, "alice", "", "", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", a.Email)
	repo.AssertExpectations(t)
}

func TestBestClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAccounts)
	repo.On("GetBest", ctx, maxBestLimit).Return([]domain.Account{{Login: "a"}}, nil)

	list, err := NewAccountService(repo).Best(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
