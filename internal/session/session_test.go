package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

type fakeAuth struct {
	password string
	calls    int
}

func (f *fakeAuth) Login(_ context.Context, password string) error {
	f.calls++
	if password != f.password {
		return errors.New("invalid password")
	}
	return nil
}

func TestSession_LoginStoresCredential(t *testing.T) {
	store := &MemoryStore{}
	s := New(store)
	require.False(t, s.IsAuthenticated())

	auth := &fakeAuth{password: "pw"}
	require.NoError(t, s.Login(context.Background(), auth, "pw"))

	cred, ok := s.Credential()
	assert.True(t, ok)
	assert.Equal(t, "pw", cred)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "pw", stored)
}

func TestSession_LoginFailureStoresNothing(t *testing.T) {
	s := New(&MemoryStore{})
	auth := &fakeAuth{password: "pw"}

	require.Error(t, s.Login(context.Background(), auth, "wrong"))
	assert.False(t, s.IsAuthenticated())

	assert.ErrorIs(t, s.Login(context.Background(), auth, "   "), ErrEmptyPassword)
	assert.Equal(t, 1, auth.calls)
}

func TestSession_ClearAndReload(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save("pw"))

	s := New(store)
	assert.True(t, s.IsAuthenticated())

	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
	assert.False(t, New(store).IsAuthenticated())
}

func TestSession_NilStore(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set("pw"))
	assert.True(t, s.IsAuthenticated())
	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credential")
	fs := &FileStore{Path: path}

	_, err := fs.Load()
	assert.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, fs.Save("pw"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	require.NoError(t, fs.Delete())
	assert.ErrorIs(t, fs.Delete(), ErrNoCredential)

	s := New(fs)
	assert.False(t, s.IsAuthenticated())
	require.NoError(t, s.Clear())
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	ks := NewKeyringStore()

	_, err := ks.Load()
	assert.ErrorIs(t, err, ErrNoCredential)

	s := New(ks)
	require.NoError(t, s.Set("pw"))
	assert.True(t, New(ks).IsAuthenticated())

	require.NoError(t, s.Clear())
	assert.False(t, New(ks).IsAuthenticated())
	assert.Error(t, ks.Save(""))
}
