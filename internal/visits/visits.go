// Package visits is a privacy-conscious visit log for the public site.
// Client IPs are stored only as salted, truncated hashes.
package visits

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

type Stats struct {
	Total    int64       `json:"total_visitors"`
	Unique   int64       `json:"unique_visitors"`
	Today    int64       `json:"visitors_today"`
	ThisWeek int64       `json:"visitors_this_week"`
	TopPaths []PathCount `json:"top_paths"`
	Recent   []Visit     `json:"recent_visitors"`
}

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	ts INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS visitors_ts ON visitors(ts);`

// Store records visits in a sqlite database.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Open opens (creating if needed) the visit log at path. An empty salt is
// replaced by a random one, so hashes will not match across restarts.
func Open(path, salt string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open visit log: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure visit log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create visitors table: %w", err)
	}

	if salt == "" {
		salt = randomSalt()
		log.Printf("visits: no salt configured, visitor hashes will reset on restart")
	}
	return &Store{db: db, salt: salt, now: time.Now}, nil
}

func randomSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("Failed to generate hashing salt:", err)
	}
	return hex.EncodeToString(b)
}

func (s *Store) Close() error { return s.db.Close() }

// HashIP returns a stable, truncated hash of ip under the store's salt.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores one visit.
func (s *Store) Record(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, ts) VALUES (?, ?, ?, ?)`,
		s.HashIP(ip), userAgent, path, s.now().Unix())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Prune deletes visits older than maxAge and returns how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune visits: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Printf("Privacy cleanup: removed %d visitor records older than %s", n, maxAge)
	}
	return n, nil
}

// Stats summarises the log. recent caps the number of recent visits returned.
func (s *Store) Stats(ctx context.Context, recent int) (*Stats, error) {
	now := s.now()
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Unix()
	weekStart := now.Add(-7 * 24 * time.Hour).Unix()

	st := &Stats{}
	counts := []struct {
		query string
		args  []any
		dst   *int64
	}{
		{`SELECT COUNT(*) FROM visitors`, nil, &st.Total},
		{`SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil, &st.Unique},
		{`SELECT COUNT(*) FROM visitors WHERE ts >= ?`, []any{dayStart}, &st.Today},
		{`SELECT COUNT(*) FROM visitors WHERE ts >= ?`, []any{weekStart}, &st.ThisWeek},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("visit stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS n FROM visitors
		GROUP BY path ORDER BY n DESC, path ASC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("visit stats: %w", err)
	}
	st.TopPaths, err = scanPathCounts(rows)
	if err != nil {
		return nil, fmt.Errorf("visit stats: %w", err)
	}

	if recent <= 0 {
		return st, nil
	}
	rows, err = s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), ts
		FROM visitors ORDER BY ts DESC, id DESC LIMIT ?`, recent)
	if err != nil {
		return nil, fmt.Errorf("visit stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v Visit
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("visit stats: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0)
		st.Recent = append(st.Recent, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("visit stats: %w", err)
	}
	return st, nil
}

type rowIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// scanPathCounts drains rows of (path, count). An iteration error fails the
// whole scan rather than returning a partial list.
func scanPathCounts(rows rowIter) ([]PathCount, error) {
	defer rows.Close()
	var out []PathCount
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
