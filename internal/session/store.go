package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"
)

// ErrNoCredential is returned by a Store holding no credential.
var ErrNoCredential = errors.New("no stored credential")

const (
	// KeyringService groups folio's secrets in the OS keychain.
	KeyringService = "folio"
	// KeyringAccount is the keychain entry for the admin password.
	KeyringAccount = "folio:admin"
)

// KeyringStore keeps the credential in the OS keychain.
type KeyringStore struct {
	Service string
	Account string
}

// NewKeyringStore returns a store using the default service and account.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: KeyringService, Account: KeyringAccount}
}

func (k *KeyringStore) Load() (string, error) {
	pw, err := keyring.Get(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(pw) == "") {
		return "", ErrNoCredential
	}
	return pw, err
}

func (k *KeyringStore) Save(credential string) error {
	if strings.TrimSpace(credential) == "" {
		return errors.New("credential is empty")
	}
	return keyring.Set(k.Service, k.Account, credential)
}

func (k *KeyringStore) Delete() error {
	err := keyring.Delete(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoCredential
	}
	return err
}

// FileStore keeps the credential in a 0600 file. Writes are serialized
// across processes with a lock file next to it.
type FileStore struct {
	Path string
}

func (f *FileStore) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}
	fl := flock.New(f.Path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	return fl, nil
}

func (f *FileStore) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", err
	}
	cred := strings.TrimRight(string(b), "\r\n")
	if cred == "" {
		return "", ErrNoCredential
	}
	return cred, nil
}

func (f *FileStore) Save(credential string) error {
	fl, err := f.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(credential), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileStore) Delete() error {
	fl, err := f.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	err = os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoCredential
	}
	return err
}

// MemoryStore lives as long as the process, like a browser tab's session storage.
type MemoryStore struct {
	mu  sync.Mutex
	val string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.val == "" {
		return "", ErrNoCredential
	}
	return m.val, nil
}

func (m *MemoryStore) Save(credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.val = credential
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.val = ""
	return nil
}
