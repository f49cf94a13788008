package ghstats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGitHub(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/repos/:owner/:name", func(c *gin.Context) {
		hits.Add(1)
		if c.Param("name") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stargazers_count": 42, "forks_count": 7, "full_name": c.Param("owner") + "/" + c.Param("name")})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_CachesWithinTTL(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)

	c := New()
	c.BaseURL = srv.URL
	now := time.Now()
	c.now = func() time.Time { return now }

	st, err := c.Fetch(context.Background(), "Zachkp/folio")
	require.NoError(t, err)
	assert.Equal(t, RepoStats{Stars: 42, Forks: 7}, st)

	_, err = c.Fetch(context.Background(), "Zachkp/folio")
	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())

	now = now.Add(DefaultTTL + time.Second)
	_, err = c.Fetch(context.Background(), "Zachkp/folio")
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestFetch_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)
	c := New()
	c.BaseURL = srv.URL

	_, err := c.Fetch(context.Background(), "Zachkp/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = c.Fetch(context.Background(), "nodelimiter")
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}
