package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/ledgerbot/internal/session"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, session.ErrNotFound)

	sess := session.New(1)
	sess.LedgerURL = "https://firefly.example/api/v1/"
	sess.APIKey = "secret"
	sess.Stage = session.StageReady
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sess.LedgerURL, got.LedgerURL)
	assert.Equal(t, session.StageReady, got.Stage)

	require.NoError(t, store.Delete(ctx, 1))
	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Deleting a missing session is not an error.
	assert.NoError(t, store.Delete(ctx, 1))
}

func TestStore_CopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	sess := session.New(7)
	sess.DefaultAccount = "Checking"
	require.NoError(t, store.Put(ctx, sess))

	// Mutating the original after Put must not affect the stored copy.
	sess.DefaultAccount = "Savings"

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.DefaultAccount)

	// Mutating a read result must not affect the stored copy either.
	got.DefaultAccount = "Cash"
	again, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Checking", again.DefaultAccount)
}
