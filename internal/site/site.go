// Package site serves the public portfolio pages.
package site

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/ghstats"
	"github.com/Zachkp/folio/internal/models"
	"github.com/Zachkp/folio/internal/views"
	"github.com/Zachkp/folio/internal/visits"
)

//go:embed templates/*.html
var templateFS embed.FS

// Source lists the public collections.
type Source interface {
	ListExperience(ctx context.Context) ([]models.Experience, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// RepoStats looks up star and fork counts for "owner/name".
type RepoStats interface {
	Fetch(ctx context.Context, repo string) (ghstats.RepoStats, error)
}

// Content is the static copy of the page.
type Content struct {
	Name       string
	About      []string // paragraphs
	GitHubRepo string
	Links      []config.Link
}

type Options struct {
	Source  Source
	GitHub  RepoStats       // optional
	Visits  visits.Recorder // optional
	Content Content
}

const (
	experienceFailMsg = "Failed to load experience"
	projectsFailMsg   = "Failed to load projects"
)

type experienceSection struct {
	List  views.List[views.ExperienceCard]
	State *views.State
	Err   string
}

type projectsSection struct {
	List  views.List[views.ProjectCard]
	State *views.State
	Err   string
}

type page struct {
	Content
	Stats      *ghstats.RepoStats
	Experience experienceSection
	Projects   projectsSection
	Year       int
}

type server struct {
	opts Options
}

// NewRouter returns the public site handler.
func NewRouter(opts Options) *gin.Engine {
	s := &server{opts: opts}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if opts.Visits != nil {
		r.Use(visits.Middleware(opts.Visits))
	}
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.home)
	r.GET("/sections/experience", s.experience)
	r.GET("/sections/projects", s.projects)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func (s *server) home(c *gin.Context) {
	ctx := c.Request.Context()
	st := views.ParseState(c.Request.URL.Query())
	p := page{Content: s.opts.Content, Year: time.Now().Year()}

	// Each fetch degrades on its own; one failing section never blanks the page.
	var g errgroup.Group
	g.Go(func() error {
		p.Experience = s.loadExperience(ctx, st)
		return nil
	})
	g.Go(func() error {
		p.Projects = s.loadProjects(ctx, st)
		return nil
	})
	if s.opts.GitHub != nil && s.opts.Content.GitHubRepo != "" {
		g.Go(func() error {
			stats, err := s.opts.GitHub.Fetch(ctx, s.opts.Content.GitHubRepo)
			if err != nil {
				log.Printf("Failed to fetch stats: %v", err)
				return nil
			}
			p.Stats = &stats
			return nil
		})
	}
	g.Wait()

	c.HTML(http.StatusOK, "index.html", p)
}

func (s *server) experience(c *gin.Context) {
	st := views.ParseState(c.Request.URL.Query())
	c.HTML(http.StatusOK, "experience.html", s.loadExperience(c.Request.Context(), st))
}

func (s *server) projects(c *gin.Context) {
	st := views.ParseState(c.Request.URL.Query())
	c.HTML(http.StatusOK, "projects.html", s.loadProjects(c.Request.Context(), st))
}

func (s *server) loadExperience(ctx context.Context, st *views.State) experienceSection {
	recs, err := s.opts.Source.ListExperience(ctx)
	if err != nil {
		log.Printf("site: list experience: %v", err)
		return experienceSection{State: st, Err: experienceFailMsg}
	}
	return experienceSection{List: views.Experience(recs, st), State: st}
}

func (s *server) loadProjects(ctx context.Context, st *views.State) projectsSection {
	recs, err := s.opts.Source.ListProjects(ctx)
	if err != nil {
		log.Printf("site: list projects: %v", err)
		return projectsSection{State: st, Err: projectsFailMsg}
	}
	return projectsSection{List: views.Projects(recs, st), State: st}
}
