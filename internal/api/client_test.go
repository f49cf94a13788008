package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/api/apitest"
	"github.com/Zachkp/folio/internal/models"
)

const password = "hunter2"

func newClient(t *testing.T) (*api.Client, *apitest.Store) {
	t.Helper()
	store := apitest.New(password)
	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)
	return client, store
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := api.NewClient("not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API base URL")
}

func TestListExperience(t *testing.T) {
	client, store := newClient(t)
	store.SeedExperience(models.Experience{ID: "1", Organization: "Acme", Roles: []models.Role{{Role: "Dev"}}})

	got, err := client.ListExperience(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Organization)

	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, last.Method)
	assert.Empty(t, last.Credential)
	assert.NotEmpty(t, last.RequestID)
}

func TestCreateExperience_PostsJSONWithCredential(t *testing.T) {
	client, store := newClient(t)
	in := models.ExperienceInput{
		Organization: "Acme",
		Logo:         "logo.png",
		Roles:        []models.Role{{Role: "Dev", Description: "d", StartDate: "2020", EndDate: "2021"}},
	}

	created, err := client.CreateExperience(context.Background(), password, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	last, _ := store.Last()
	assert.Equal(t, http.MethodPost, last.Method)
	assert.Equal(t, "/experience", last.Path)
	assert.Equal(t, password, last.Credential)

	var body map[string]any
	require.NoError(t, json.Unmarshal(last.Body, &body))
	assert.Equal(t, "Acme", body["organization"])
	assert.Equal(t, []any{}, body["tags"])
	assert.NotContains(t, body, "_id")
}

func TestUpdateExperience_PutsToID(t *testing.T) {
	client, store := newClient(t)
	store.SeedExperience(models.Experience{ID: "7", Organization: "Old"})

	_, err := client.UpdateExperience(context.Background(), password, "7", models.ExperienceInput{Organization: "New", Logo: "l"})
	require.NoError(t, err)

	last, _ := store.Last()
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/experience/7", last.Path)
	assert.Equal(t, "New", store.Experience()[0].Organization)
}

func TestDeleteProject_WrongCredentialIsUnauthorized(t *testing.T) {
	client, store := newClient(t)
	store.SeedProjects(models.Project{ID: "42", Title: "p"})

	err := client.DeleteProject(context.Background(), "wrong", "42")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Len(t, store.Projects(), 1)
}

func TestDeleteExperience_IDStaysOneSegment(t *testing.T) {
	client, store := newClient(t)
	store.SeedProjects(models.Project{ID: "42", Title: "p"})
	ctx := context.Background()

	for _, id := range []string{"../projects/42", "..", "a/b", `a\b`, ""} {
		err := client.DeleteExperience(ctx, password, id)
		require.ErrorIs(t, err, api.ErrInvalidID, "id %q", id)
	}
	assert.Empty(t, store.Requests())
	assert.Len(t, store.Projects(), 1)

	_ = client.DeleteExperience(ctx, password, "a b?c")
	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, "/experience/a b?c", last.Path)
}

func TestStatusError_ServerFailure(t *testing.T) {
	client, store := newClient(t)
	store.Fail(http.MethodGet, "/projects", http.StatusInternalServerError)

	_, err := client.ListProjects(context.Background())
	require.Error(t, err)
	assert.False(t, api.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "500")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.ListExperience(context.Background())
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.MethodGet, apiErr.Op)
}

func TestLogin(t *testing.T) {
	client, store := newClient(t)

	require.NoError(t, client.Login(context.Background(), password))
	assert.ErrorIs(t, client.Login(context.Background(), "nope"), api.ErrInvalidPassword)

	last, _ := store.Last()
	assert.Equal(t, "/admin/login", last.Path)
	assert.JSONEq(t, `{"password":"nope"}`, string(last.Body))
}

func TestRateLimitedClientStillServes(t *testing.T) {
	store := apitest.New(password)
	srv := httptest.NewServer(store.Handler())
	defer srv.Close()

	client, err := api.NewClient(srv.URL, api.WithRateLimit(1000, 1))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := client.ListProjects(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, store.Requests(), 3)
}
