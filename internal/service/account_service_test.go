package service

import (
	"context"
	"testing"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Mint(ctx, "alice", 100, "alice")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.accounts.Mint(ctx, "alice", 0, testOwner)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	balance, err := f.accounts.Mint(ctx, " Alice ", 100, " PLATFORM ")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	balance, err = f.accounts.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	_, err = f.accounts.Balance(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
}
