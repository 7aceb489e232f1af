package bankcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"taglift/internal/bank"
	"taglift/internal/logging"
)

// Cache is a SQLite-backed implementation of bank.Cache. Read and write
// failures are logged and degrade to cache misses; a broken cache must never
// take the agent down with it.
type Cache struct {
	db     *sql.DB
	path   string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Open initializes or connects to the cache database. A ttl of zero keeps
// entries forever.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "bankcache")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Cache{db: db, path: path, ttl: ttl, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SearchResult returns the cached question IDs for a search key.
func (c *Cache) SearchResult(key string) ([]int64, bool) {
	var idsJSON, cachedAt string
	err := c.db.QueryRow(
		`SELECT ids_json, cached_at FROM search_results WHERE key = ?`,
		hashKey(key),
	).Scan(&idsJSON, &cachedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warn("cache read failed", logging.Error(err))
		}
		return nil, false
	}
	if c.expired(cachedAt) {
		return nil, false
	}

	var ids []int64
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		c.logger.Warn("corrupt cached search result", logging.Error(err))
		return nil, false
	}
	return ids, true
}

// StoreSearchResult caches the question IDs for a search key.
func (c *Cache) StoreSearchResult(key string, ids []int64) {
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		c.logger.Warn("encode search result", logging.Error(err))
		return
	}
	_, err = c.db.Exec(
		`INSERT INTO search_results (key, ids_json, cached_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET ids_json = excluded.ids_json, cached_at = excluded.cached_at`,
		hashKey(key), string(idsJSON), c.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		c.logger.Warn("cache write failed", logging.Error(err))
	}
}

// Question returns the cached record for a bank question ID.
func (c *Cache) Question(id int64) (bank.Record, bool) {
	var text, pathsJSON, cachedAt string
	err := c.db.QueryRow(
		`SELECT text, paths_json, cached_at FROM questions WHERE id = ?`, id,
	).Scan(&text, &pathsJSON, &cachedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.logger.Warn("cache read failed", logging.Error(err))
		}
		return bank.Record{}, false
	}
	if c.expired(cachedAt) {
		return bank.Record{}, false
	}

	var paths []string
	if err := json.Unmarshal([]byte(pathsJSON), &paths); err != nil {
		c.logger.Warn("corrupt cached question", logging.Error(err))
		return bank.Record{}, false
	}
	return bank.Record{ID: id, Text: text, Paths: paths}, true
}

// StoreQuestion caches a bank question record.
func (c *Cache) StoreQuestion(rec bank.Record) {
	if rec.ID == 0 {
		return
	}
	pathsJSON, err := json.Marshal(rec.Paths)
	if err != nil {
		c.logger.Warn("encode question record", logging.Error(err))
		return
	}
	_, err = c.db.Exec(
		`INSERT INTO questions (id, text, paths_json, cached_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET text = excluded.text, paths_json = excluded.paths_json, cached_at = excluded.cached_at`,
		rec.ID, rec.Text, string(pathsJSON), c.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		c.logger.Warn("cache write failed", logging.Error(err))
	}
}

// PruneExpired deletes entries older than the TTL and returns how many rows
// went away.
func (c *Cache) PruneExpired() (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().UTC().Add(-c.ttl).Format(time.RFC3339Nano)

	var total int64
	for _, table := range []string{"search_results", "questions"} {
		res, err := c.db.Exec(`DELETE FROM `+table+` WHERE cached_at < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// Counts reports how many search results and question records are cached.
func (c *Cache) Counts() (searches, questions int64, err error) {
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM search_results`).Scan(&searches); err != nil {
		return 0, 0, fmt.Errorf("count search results: %w", err)
	}
	if err = c.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&questions); err != nil {
		return 0, 0, fmt.Errorf("count questions: %w", err)
	}
	return searches, questions, nil
}

func (c *Cache) expired(cachedAt string) bool {
	if c.ttl <= 0 {
		return false
	}
	t, err := time.Parse(time.RFC3339Nano, cachedAt)
	if err != nil {
		return true
	}
	return c.now().Sub(t) > c.ttl
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
