package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/api/apitest"
	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/ghstats"
	"github.com/Zachkp/folio/internal/models"
)

type fixedStats struct {
	stats ghstats.RepoStats
	err   error
}

func (f fixedStats) Fetch(context.Context, string) (ghstats.RepoStats, error) {
	return f.stats, f.err
}

func newSite(t *testing.T, gh RepoStats) (*gin.Engine, *apitest.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := apitest.New("secret")
	srv := httptest.NewServer(store.Handler())
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	r := NewRouter(Options{
		Source: client,
		GitHub: gh,
		Content: Content{
			Name:       "Zach",
			About:      []string{"I build things.", "Mostly in Go."},
			GitHubRepo: "Zachkp/folio",
			Links:      []config.Link{{Label: "GitHub", URL: "https://github.com/Zachkp"}},
		},
	})
	return r, store
}

func get(t *testing.T, r http.Handler, target string) *goquery.Document {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func manyProjects(n int) []models.Project {
	out := make([]models.Project, n)
	for i := range out {
		out[i] = models.Project{ID: fmt.Sprint(i + 1), Title: fmt.Sprintf("Project %d", i+1), Description: "d"}
	}
	return out
}

func TestHome_RendersAllSections(t *testing.T) {
	r, store := newSite(t, fixedStats{stats: ghstats.RepoStats{Stars: 12, Forks: 3}})
	store.SeedProjects(manyProjects(2)...)
	store.SeedExperience(models.Experience{ID: "e1", Organization: "Acme", Roles: []models.Role{{Role: "Dev"}}})

	doc := get(t, r, "/")
	assert.Equal(t, "Zach", doc.Find("#hero h1").Text())
	assert.Contains(t, doc.Find("#hero .stars").Text(), "12")
	assert.Contains(t, doc.Find("#hero .forks").Text(), "3")
	assert.Equal(t, 2, doc.Find("#about p").Length())
	assert.Equal(t, 2, doc.Find("#projects article").Length())
	assert.Equal(t, 1, doc.Find("#experience article").Length())
	href, _ := doc.Find("footer .social a").Attr("href")
	assert.Equal(t, "https://github.com/Zachkp", href)
}

func TestHome_StatsFailureStillRenders(t *testing.T) {
	r, _ := newSite(t, fixedStats{err: errors.New("rate limited")})
	doc := get(t, r, "/")
	assert.Contains(t, doc.Find("#hero .stars").Text(), "-")
}

func TestProjects_ShowMore(t *testing.T) {
	r, store := newSite(t, nil)
	store.SeedProjects(manyProjects(5)...)

	doc := get(t, r, "/sections/projects")
	assert.Equal(t, 3, doc.Find("article").Length())
	more := doc.Find("a.show-more")
	assert.Contains(t, more.Text(), "Show more (2)")
	href, _ := more.Attr("href")
	assert.Equal(t, "/?all=projects#projects", href)

	doc = get(t, r, "/sections/projects?all=projects")
	assert.Equal(t, 5, doc.Find("article").Length())
	assert.Equal(t, "Show less", strings.TrimSpace(doc.Find("a.show-more").Text()))
}

func TestProjects_TagOverflow(t *testing.T) {
	r, store := newSite(t, nil)
	p := manyProjects(1)[0]
	p.Tags = []string{"go", "gin", "htmx", "sqlite", "css", "docker", "ci"}
	store.SeedProjects(p)

	doc := get(t, r, "/sections/projects")
	assert.Equal(t, 4, doc.Find("article .tag").Length())
	toggle := doc.Find("article a.tags-toggle")
	assert.Equal(t, "+3", toggle.Text())
	hx, _ := toggle.Attr("hx-get")
	assert.Equal(t, "/sections/projects?tags=1", hx)

	doc = get(t, r, "/sections/projects?tags=1")
	assert.Equal(t, 7, doc.Find("article .tag").Length())
	assert.Equal(t, "Show less", doc.Find("article a.tags-toggle").Text())
}

func TestExperience_LatestRoleAndEarlierToggle(t *testing.T) {
	r, store := newSite(t, nil)
	store.SeedExperience(models.Experience{
		ID:           "e1",
		Organization: "Acme",
		Roles: []models.Role{
			{Role: "Intern", StartDate: "2019", EndDate: "2020"},
			{Role: "Engineer", StartDate: "2020", EndDate: "Present"},
		},
	})

	doc := get(t, r, "/sections/experience")
	assert.Equal(t, "Engineer", doc.Find(".role.latest h4").Text())
	assert.Equal(t, 0, doc.Find(".role.earlier").Length())
	assert.Equal(t, "Show earlier roles", doc.Find("a.roles-toggle").Text())

	doc = get(t, r, "/sections/experience?roles=e1")
	assert.Equal(t, "Intern", doc.Find(".role.earlier h4").Text())
}

func TestSections_FetchFailure(t *testing.T) {
	r, store := newSite(t, nil)
	store.Fail(http.MethodGet, "/projects", http.StatusInternalServerError)
	store.SeedExperience(models.Experience{ID: "e1", Organization: "Acme"})

	doc := get(t, r, "/")
	assert.Equal(t, projectsFailMsg, doc.Find("#projects .error").Text())
	assert.Equal(t, 0, doc.Find("#projects article").Length())
	assert.Equal(t, 1, doc.Find("#experience article").Length())
}

func TestHealthz(t *testing.T) {
	r, _ := newSite(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
