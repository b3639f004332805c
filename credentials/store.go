// Package credentials provides the session-scoped storage area for bearer
// credentials. Entries are named string values; the session client is the
// only writer, while the token codec and the request gateway read.
package credentials

import (
	apperrors "github.com/oauthkit/go-session-client/internal/errors"
)

// ErrNotFound is returned by Get when no entry exists under the given name.
var ErrNotFound = apperrors.ErrNotFound

// Store is the contract for session-scoped credential storage. All methods
// are synchronous and perform no network I/O. Implementations signal loss of
// the backing storage with an error matching errors.ErrStorageUnavailable,
// which callers treat as fatal to all session functionality.
type Store interface {
	Set(name, value string) error
	Get(name string) (string, error)
	Remove(name string) error
}
