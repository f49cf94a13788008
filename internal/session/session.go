// Package session holds the admin credential used by the dashboard.
//
// The credential is the raw admin password. It is echoed to the remote store
// on every mutating request and stays valid until cleared locally or rejected
// by the server. There is no token exchange, expiry or refresh.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ErrEmptyPassword is returned by Login for a blank password.
var ErrEmptyPassword = errors.New("password is empty")

// Store persists the credential between runs.
type Store interface {
	Load() (string, error)
	Save(credential string) error
	Delete() error
}

// Authenticator verifies a password with the remote store.
type Authenticator interface {
	Login(ctx context.Context, password string) error
}

// Session is the authentication context handed to every controller.
type Session struct {
	mu         sync.RWMutex
	credential string
	store      Store
}

// New returns a session primed from store. A load failure leaves the
// session unauthenticated.
func New(store Store) *Session {
	s := &Session{store: store}
	if store == nil {
		return s
	}
	cred, err := store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			log.Printf("session: could not load stored credential: %v", err)
		}
		return s
	}
	s.credential = cred
	return s
}

// Credential returns the stored credential, if any.
func (s *Session) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.credential != ""
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Credential()
	return ok
}

// Set stores credential in memory and in the backing store.
func (s *Session) Set(credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Save(credential); err != nil {
			return fmt.Errorf("save credential: %w", err)
		}
	}
	s.credential = credential
	return nil
}

// Clear forgets the credential. The in-memory copy is dropped even when the
// backing store fails.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(); err != nil && !errors.Is(err, ErrNoCredential) {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Login verifies password with auth and, on success, stores it as the
// session credential. Nothing is stored on failure.
func (s *Session) Login(ctx context.Context, auth Authenticator, password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if err := auth.Login(ctx, password); err != nil {
		return err
	}
	return s.Set(password)
}
