package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/go-session-client/credentials"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := credentials.NewMemoryStore()

	require.NoError(t, store.Set("access_token", "abc"))

	value, err := store.Get("access_token")
	require.NoError(t, err)
	require.Equal(t, "abc", value)
}

func TestMemoryStoreGetAbsent(t *testing.T) {
	store := credentials.NewMemoryStore()

	_, err := store.Get("access_token")
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := credentials.NewMemoryStore()

	require.NoError(t, store.Set("access_token", "old"))
	require.NoError(t, store.Set("access_token", "new"))

	value, err := store.Get("access_token")
	require.NoError(t, err)
	require.Equal(t, "new", value)
}

func TestMemoryStoreRemove(t *testing.T) {
	store := credentials.NewMemoryStore()

	require.NoError(t, store.Set("refresh_token", "xyz"))
	require.NoError(t, store.Remove("refresh_token"))

	_, err := store.Get("refresh_token")
	require.ErrorIs(t, err, credentials.ErrNotFound)

	// Removing an absent entry is not an error.
	require.NoError(t, store.Remove("refresh_token"))
}
