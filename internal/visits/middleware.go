package visits

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Recorder stores a visit.
type Recorder interface {
	Record(ctx context.Context, ip, userAgent, path string) error
}

var skipPrefixes = []string{"/static/", "/images/", "/admin", "/favicon", "/healthz"}

// Tracked reports whether a request to path is logged.
func Tracked(path string) bool {
	for _, p := range skipPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

// Middleware logs successful GET page views in the background.
// Requests carrying "DNT: 1" are never logged.
func Middleware(rec Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || !Tracked(path) || c.GetHeader("DNT") == "1" {
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rec.Record(ctx, ip, ua, path); err != nil {
				log.Printf("Error recording visitor: %v", err)
			}
		}()
	}
}
