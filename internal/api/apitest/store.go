// Package apitest provides an in-memory remote data store served by gin,
// for tests that need the real HTTP contract.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/folio/internal/api"
	"github.com/Zachkp/folio/internal/models"
)

// Request is one request seen by the store.
type Request struct {
	Method     string
	Path       string
	Credential string
	RequestID  string
	Body       []byte              // JSON bodies only
	Fields     map[string][]string // multipart text fields
	FileName   string              // multipart "image" file part, if any
	FileData   []byte
}

// Store is a fake remote data store. Zero value is not usable; call New.
type Store struct {
	mu         sync.Mutex
	password   string
	experience []models.Experience
	projects   []models.Project
	requests   []Request
	failures   map[string]int
	nextID     int

	// Hold, when non-nil, is received from before any mutating request is
	// answered, letting tests observe in-flight state.
	Hold chan struct{}
}

// New returns a store accepting password as the admin credential.
func New(password string) *Store {
	return &Store{password: password, failures: make(map[string]int), nextID: 100}
}

// SeedExperience replaces the stored experience records.
func (s *Store) SeedExperience(recs ...models.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experience = append([]models.Experience(nil), recs...)
}

// SeedProjects replaces the stored project records.
func (s *Store) SeedProjects(recs ...models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append([]models.Project(nil), recs...)
}

// Fail makes "METHOD path" answer with status until cleared with status 0.
func (s *Store) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method+" "+path)
		return
	}
	s.failures[method+" "+path] = status
}

// Requests returns the requests seen so far.
func (s *Store) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Store) Last() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Experience returns the stored experience records.
func (s *Store) Experience() []models.Experience {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Experience(nil), s.experience...)
}

// Projects returns the stored project records.
func (s *Store) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.projects...)
}

// Handler returns the gin engine serving the store contract.
func (s *Store) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.record(), s.failInjected())

	r.POST("/admin/login", s.login)
	r.GET("/experience", func(c *gin.Context) { c.JSON(http.StatusOK, s.Experience()) })
	r.GET("/projects", func(c *gin.Context) { c.JSON(http.StatusOK, s.Projects()) })

	admin := r.Group("/", s.requireCredential())
	admin.POST("/experience", s.saveExperience)
	admin.PUT("/experience/:id", s.saveExperience)
	admin.DELETE("/experience/:id", s.deleteExperience)
	admin.POST("/projects", s.saveProject)
	admin.PUT("/projects/:id", s.saveProject)
	admin.DELETE("/projects/:id", s.deleteProject)
	return r
}

func (s *Store) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := Request{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Credential: c.GetHeader(api.CredentialHeader),
			RequestID:  c.GetHeader("X-Request-Id"),
		}
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			if err := c.Request.ParseMultipartForm(32 << 20); err == nil {
				req.Fields = c.Request.MultipartForm.Value
				if fh, err := c.FormFile("image"); err == nil {
					req.FileName = fh.Filename
					if f, err := fh.Open(); err == nil {
						req.FileData, _ = io.ReadAll(f)
						_ = f.Close()
					}
				}
			}
		} else if c.Request.Body != nil {
			req.Body, _ = io.ReadAll(c.Request.Body)
		}
		c.Set("recorded", req)

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		if s.Hold != nil && c.Request.Method != http.MethodGet {
			<-s.Hold
		}
		c.Next()
	}
}

func (s *Store) failInjected() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		status := s.failures[c.Request.Method+" "+c.Request.URL.Path]
		s.mu.Unlock()
		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
			return
		}
		c.Next()
	}
}

func (s *Store) requireCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(api.CredentialHeader) != s.password {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *Store) login(c *gin.Context) {
	recorded := c.MustGet("recorded").(Request)
	var body struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal(recorded.Body, &body); err != nil || body.Password != s.password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *Store) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (s *Store) saveExperience(c *gin.Context) {
	recorded := c.MustGet("recorded").(Request)
	var rec models.Experience
	if err := json.Unmarshal(recorded.Body, &rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id := c.Param("id"); id != "" {
		for i := range s.experience {
			if s.experience[i].ID == id {
				rec.ID = id
				s.experience[i] = rec
				c.JSON(http.StatusOK, rec)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	rec.ID = s.newID()
	s.experience = append(s.experience, rec)
	c.JSON(http.StatusCreated, rec)
}

func (s *Store) deleteExperience(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	for i := range s.experience {
		if s.experience[i].ID == id {
			s.experience = append(s.experience[:i], s.experience[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (s *Store) saveProject(c *gin.Context) {
	recorded := c.MustGet("recorded").(Request)
	first := func(name string) string {
		if v := recorded.Fields[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	rec := models.Project{
		Title:       first("title"),
		Description: first("description"),
		Image:       first("image"),
		Tags:        recorded.Fields["tags"],
		SourceURL:   first("sourceUrl"),
		LiveURL:     first("liveUrl"),
	}
	if recorded.FileName != "" {
		rec.Image = "https://cdn.example.test/" + recorded.FileName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id := c.Param("id"); id != "" {
		for i := range s.projects {
			if s.projects[i].ID == id {
				rec.ID = id
				s.projects[i] = rec
				c.JSON(http.StatusOK, rec)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	rec.ID = s.newID()
	s.projects = append(s.projects, rec)
	c.JSON(http.StatusCreated, rec)
}

func (s *Store) deleteProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}
