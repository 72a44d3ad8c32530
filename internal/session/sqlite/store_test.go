package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/ledgerbot/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, session.ErrNotFound)

	sess := session.New(1)
	sess.LedgerURL = "https://firefly.example/api/v1/"
	sess.APIKey = "secret"
	sess.DefaultAccount = "Checking"
	sess.Stage = session.StageReady
	sess.AssetAccounts = []string{"Checking", "Savings"}
	sess.ExpenseAccounts = []string{"Supermarket"}
	sess.RevenueAccounts = []string{"Work"}
	sess.Categories = []string{"Food", "Transport"}
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ChatID)
	assert.Equal(t, sess.LedgerURL, got.LedgerURL)
	assert.Equal(t, sess.APIKey, got.APIKey)
	assert.Equal(t, "Checking", got.DefaultAccount)
	assert.Equal(t, session.StageReady, got.Stage)
	assert.Equal(t, []string{"Checking", "Savings"}, got.AssetAccounts)
	assert.Equal(t, []string{"Supermarket"}, got.ExpenseAccounts)
	assert.Equal(t, []string{"Work"}, got.RevenueAccounts)
	assert.Equal(t, []string{"Food", "Transport"}, got.Categories)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sess := session.New(2)
	sess.Stage = session.StageAwaitingURL
	require.NoError(t, store.Put(ctx, sess))

	sess.Stage = session.StageAwaitingAPIKey
	sess.LedgerURL = "https://firefly.example/api/v1/"
	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, session.StageAwaitingAPIKey, got.Stage)
	assert.Equal(t, "https://firefly.example/api/v1/", got.LedgerURL)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sess := session.New(3)
	require.NoError(t, store.Put(ctx, sess))
	require.NoError(t, store.Delete(ctx, 3))

	_, err := store.Get(ctx, 3)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Deleting a missing session is not an error.
	assert.NoError(t, store.Delete(ctx, 3))
}

func TestStore_Ping(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
