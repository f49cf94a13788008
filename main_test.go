package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/api/apitest"
	"github.com/Zachkp/folio/internal/visits"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	store := apitest.New("secret")
	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("FOLIO_API_URL", srv.URL)
	t.Setenv("FOLIO_SESSION_STORE", "file")
	t.Setenv("FOLIO_SESSION_FILE", filepath.Join(dir, "credential"))
	t.Setenv("FOLIO_VISITS_DB", filepath.Join(dir, "visits.db"))
	t.Setenv("FOLIO_VISITS_SALT", "pepper")
	configPath, envFile = "", filepath.Join(dir, "absent.env")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLoginLogout(t *testing.T) {
	dir := setupEnv(t)
	credFile := filepath.Join(dir, "credential")

	out, err := execute(t, "login", "--password", "wrong")
	require.ErrorIs(t, err, api.ErrInvalidPassword)
	assert.Contains(t, out, "Invalid password")
	assert.NoFileExists(t, credFile)

	out, err = execute(t, "login", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in.")
	b, err := os.ReadFile(credFile)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(b))

	_, err = execute(t, "logout")
	require.NoError(t, err)
	assert.NoFileExists(t, credFile)
	loginPassword = ""
}

func TestLogin_PasswordFromPipe(t *testing.T) {
	dir := setupEnv(t)
	loginPassword = ""
	rootCmd.SetIn(strings.NewReader("secret\r\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Logged in.")
	b, err := os.ReadFile(filepath.Join(dir, "credential"))
	require.NoError(t, err)
	assert.Equal(t, "secret", string(b))
}

func TestReadPassword_PipedInput(t *testing.T) {
	got, err := readPassword(strings.NewReader("hunter2"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	_, err = readPassword(strings.NewReader(""), io.Discard)
	assert.ErrorIs(t, err, io.EOF)
}

func TestVisitsJSON(t *testing.T) {
	dir := setupEnv(t)
	store, err := visits.Open(filepath.Join(dir, "visits.db"), "pepper")
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), "198.51.100.1", "ua", "/"))
	require.NoError(t, store.Close())

	out, err := execute(t, "visits", "--json", "--recent", "5")
	require.NoError(t, err)

	var stats visits.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 1, stats.Total)
	require.Len(t, stats.Recent, 1)
	assert.Equal(t, "/", stats.Recent[0].Path)
	visitsJSON, visitsRecent = false, 10
}
