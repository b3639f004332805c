package filestore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/go-session-client/credentials"
	"github.com/oauthkit/go-session-client/credentials/filestore"
	apperrors "github.com/oauthkit/go-session-client/internal/errors"
)

func TestFilestoreSetGetRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")

	store, err := filestore.New(path, "passphrase")
	require.NoError(t, err)

	require.NoError(t, store.Set("access_token", "abc"))

	value, err := store.Get("access_token")
	require.NoError(t, err)
	require.Equal(t, "abc", value)

	require.NoError(t, store.Remove("access_token"))
	_, err = store.Get("access_token")
	require.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestFilestoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")

	store, err := filestore.New(path, "passphrase")
	require.NoError(t, err)
	require.NoError(t, store.Set("access_token", "abc"))
	require.NoError(t, store.Set("refresh_token", "xyz"))

	reopened, err := filestore.New(path, "passphrase")
	require.NoError(t, err)

	value, err := reopened.Get("access_token")
	require.NoError(t, err)
	require.Equal(t, "abc", value)

	value, err = reopened.Get("refresh_token")
	require.NoError(t, err)
	require.Equal(t, "xyz", value)
}

func TestFilestoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")

	store, err := filestore.New(path, "passphrase")
	require.NoError(t, err)
	require.NoError(t, store.Set("access_token", "abc"))

	_, err = filestore.New(path, "wrong")
	require.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestFilestoreTokensNotStoredInClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.bin")

	store, err := filestore.New(path, "passphrase")
	require.NoError(t, err)
	require.NoError(t, store.Set("access_token", "super-secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret-token")
}
