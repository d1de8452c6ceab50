package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/partsdesk/partsdesk/internal/shared"
)

type memoryAccountRepo struct {
	accounts map[string]*Account
}

func (r *memoryAccountRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	a, ok := r.accounts[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return a, nil
}

func (r *memoryAccountRepo) FindByID(ctx context.Context, id int64) (*Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("counter@123")
	require.NoError(t, err)

	repo := &memoryAccountRepo{accounts: map[string]*Account{
		"asha": {ID: 1, Username: "asha", Name: "Asha", PasswordHash: hash, IsAdmin: true, IsActive: true},
		"old":  {ID: 2, Username: "old", PasswordHash: hash, IsActive: false},
	}}
	svc := NewService(repo)

	account, err := svc.Authenticate(context.Background(), "asha", "counter@123")
	require.NoError(t, err)
	require.Equal(t, int64(1), account.ID)
	require.True(t, account.IsAdmin)

	_, err = svc.Authenticate(context.Background(), "asha", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "counter@123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	// Deactivated accounts cannot log in even with the right password.
	_, err = svc.Authenticate(context.Background(), "old", "counter@123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLookupSkipsInactive(t *testing.T) {
	repo := &memoryAccountRepo{accounts: map[string]*Account{
		"old": {ID: 2, Username: "old", IsActive: false},
	}}
	svc := NewService(repo)

	_, err := svc.Lookup(context.Background(), 2)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
