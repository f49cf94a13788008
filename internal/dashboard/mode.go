// Package dashboard implements the admin dashboard: list fetchers and the
// draft controllers that edit experience and project records.
package dashboard

import (
	"errors"
	"log"
)

var (
	// ErrAuthMissing means no credential was held when an action needed one.
	ErrAuthMissing = errors.New("not logged in")
	// ErrUnauthorized means the remote store rejected the credential.
	ErrUnauthorized = errors.New("credential rejected by server")
	// ErrBusy means a submit or delete is already in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrNotConfirmed means the user declined a delete.
	ErrNotConfirmed = errors.New("delete not confirmed")
	// ErrUnknownField is returned for a field name the draft does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrRoleIndex is returned for a role index outside the draft's roles.
	ErrRoleIndex = errors.New("role index out of range")
	// ErrNotImage is returned when a chosen file is not an image.
	ErrNotImage = errors.New("file is not an image")
)

// Mode selects the verb and path used when a draft is submitted.
type Mode interface {
	mode()
}

// Create submits a new record with POST to the collection path.
type Create struct{}

// Edit submits with PUT to the record's path.
type Edit struct {
	ID string
}

func (Create) mode() {}
func (Edit) mode()   {}

// editingID returns the record identifier when m is Edit.
func editingID(m Mode) (string, bool) {
	e, ok := m.(Edit)
	return e.ID, ok
}

// Navigator moves the user to the login view.
type Navigator interface {
	ToLogin()
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Credentials is the authentication context read by every mutating action.
type Credentials interface {
	Credential() (string, bool)
	Clear() error
}

// guard carries what every controller needs to gate a mutation.
type guard struct {
	creds Credentials
	nav   Navigator
}

// credential returns the stored credential or navigates to login.
func (g guard) credential() (string, error) {
	cred, ok := g.creds.Credential()
	if !ok {
		g.nav.ToLogin()
		return "", ErrAuthMissing
	}
	return cred, nil
}

// rejected handles a server auth rejection: the credential is dropped and
// the user is sent back to login.
func (g guard) rejected() error {
	if err := g.creds.Clear(); err != nil {
		log.Printf("dashboard: clear rejected credential: %v", err)
	}
	g.nav.ToLogin()
	return ErrUnauthorized
}
