// Package filestore persists credentials to a single file, sealed with a
// key derived from a passphrase. It gives CLI sessions the same named-entry
// contract the in-memory store gives browser-style sessions, without leaving
// bearer tokens on disk in the clear.
package filestore

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/oauthkit/go-session-client/credentials"
	apperrors "github.com/oauthkit/go-session-client/internal/errors"
)

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32
)

var _ credentials.Store = (*Store)(nil)

// Store is a credentials.Store backed by an encrypted file.
// Every mutation rewrites the file synchronously, so the on-disk state is
// never behind the in-memory view.
type Store struct {
	path    string
	salt    []byte
	key     [keyLength]byte
	entries map[string]string
	lock    sync.Mutex
}

// New opens (or creates) the store at path. The passphrase is stretched with
// argon2id; the salt lives in the file header, so the same passphrase reopens
// an existing store.
func New(path, passphrase string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.salt = make([]byte, saltLength)
		if _, err := rand.Read(s.salt); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[filestore.New] salt generation: %s", err)
		}
		s.key = deriveKey(passphrase, s.salt)
		return s, nil
	case err != nil:
		return nil, apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[filestore.New] read %s: %s", path, err)
	}

	if len(raw) < saltLength+nonceLength+secretbox.Overhead {
		return nil, apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[filestore.New] %s is truncated", path)
	}

	s.salt = raw[:saltLength]
	s.key = deriveKey(passphrase, s.salt)

	var nonce [nonceLength]byte
	copy(nonce[:], raw[saltLength:saltLength+nonceLength])

	plaintext, ok := secretbox.Open(nil, raw[saltLength+nonceLength:], &nonce, &s.key)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[filestore.New] cannot unseal %s (wrong passphrase?)", path)
	}

	if err := json.Unmarshal(plaintext, &s.entries); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[filestore.New] decode entries: %s", err)
	}
	return s, nil
}

func (s *Store) Set(name, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries[name] = value
	if err := s.flush(); err != nil {
		delete(s.entries, name)
		return err
	}
	return nil
}

func (s *Store) Get(name string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	value, ok := s.entries[name]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return value, nil
}

func (s *Store) Remove(name string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	previous, existed := s.entries[name]
	delete(s.entries, name)
	if err := s.flush(); err != nil {
		if existed {
			s.entries[name] = previous
		}
		return err
	}
	return nil
}

// flush seals the entry map and rewrites the file. Callers hold the lock.
func (s *Store) flush() error {
	plaintext, err := json.Marshal(s.entries)
	if err != nil {
		return errors.Wrap(err, "[Store.flush] marshal entries")
	}

	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[Store.flush] nonce generation: %s", err)
	}

	sealed := make([]byte, 0, saltLength+nonceLength+len(plaintext)+secretbox.Overhead)
	sealed = append(sealed, s.salt...)
	sealed = append(sealed, nonce[:]...)
	sealed = secretbox.Seal(sealed, plaintext, &nonce, &s.key)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[Store.flush] write %s: %s", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorageUnavailable, "[Store.flush] rename %s: %s", s.path, err)
	}
	return nil
}

func deriveKey(passphrase string, salt []byte) [keyLength]byte {
	var key [keyLength]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, keyLength))
	return key
}
