// Package ghstats fetches star and fork counts for a GitHub repository.
package ghstats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultTTL     = 10 * time.Minute
)

type RepoStats struct {
	Stars int `json:"stargazers_count"`
	Forks int `json:"forks_count"`
}

type cached struct {
	stats   RepoStats
	fetched time.Time
}

// Client caches results per repository for TTL. The unauthenticated GitHub
// API allows 60 requests an hour.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	TTL        time.Duration

	mu    sync.Mutex
	cache map[string]cached
	now   func() time.Time
}

func New() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		TTL:        DefaultTTL,
		cache:      make(map[string]cached),
		now:        time.Now,
	}
}

// Fetch returns stats for repo, given as "owner/name".
func (c *Client) Fetch(ctx context.Context, repo string) (RepoStats, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return RepoStats{}, fmt.Errorf("ghstats: repo %q is not owner/name", repo)
	}

	c.mu.Lock()
	if hit, ok := c.cache[repo]; ok && c.now().Sub(hit.fetched) < c.TTL {
		c.mu.Unlock()
		return hit.stats, nil
	}
	c.mu.Unlock()

	url := strings.TrimRight(c.BaseURL, "/") + "/repos/" + owner + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RepoStats{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return RepoStats{}, fmt.Errorf("ghstats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return RepoStats{}, fmt.Errorf("ghstats: HTTP error! status: %d", resp.StatusCode)
	}

	var st RepoStats
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return RepoStats{}, fmt.Errorf("ghstats: decode: %w", err)
	}

	c.mu.Lock()
	c.cache[repo] = cached{stats: st, fetched: c.now()}
	c.mu.Unlock()
	return st, nil
}
