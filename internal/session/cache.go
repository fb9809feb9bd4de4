package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ccs-tools/ccs/internal/logging"
)

var cacheLog = logging.ForComponent(logging.CompCache)

// cacheSchemaVersion tracks the cache schema. The cache is disposable:
// on a version mismatch the table is dropped and rebuilt.
const cacheSchemaVersion = 1

// Cache stores per-file parse results keyed by modification time so
// unchanged logs are not re-parsed on every scan. It is internal state,
// not one of the overlay files; losing it only costs a re-parse.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the scan cache at dbPath. A cache that
// cannot be opened is reported but callers are expected to continue
// without one.
func OpenCache(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("cache: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	// WAL mode: concurrent readers while a scan writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: wal mode: %w", err)
	}
	// Wait up to 5s if another invocation holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: busy timeout: %w", err)
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close checkpoints WAL and closes the database.
func (c *Cache) Close() error {
	_, _ = c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return c.db.Close()
}

func (c *Cache) migrate() error {
	var version string
	err := c.db.QueryRow(`SELECT value FROM cache_meta WHERE key = 'schema_version'`).Scan(&version)
	if err == nil && version == fmt.Sprintf("%d", cacheSchemaVersion) {
		return nil
	}
	if err != nil && !isMissingTable(err) && err != sql.ErrNoRows {
		return fmt.Errorf("cache: read schema version: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS sessions`); err != nil {
		return fmt.Errorf("cache: drop sessions: %w", err)
	}
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS cache_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("cache: create meta: %w", err)
	}
	if _, err := tx.Exec(`
		CREATE TABLE sessions (
			id            TEXT PRIMARY KEY,
			mtime         INTEGER NOT NULL,
			summary       TEXT NOT NULL DEFAULT '',
			first_message TEXT NOT NULL DEFAULT '',
			working_dir   TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("cache: create sessions: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", cacheSchemaVersion)); err != nil {
		return fmt.Errorf("cache: set schema version: %w", err)
	}
	return tx.Commit()
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// Get returns the cached parse result for id if its recorded mtime matches.
func (c *Cache) Get(id string, mtime int64) (ParseResult, bool) {
	var res ParseResult
	var cachedMtime int64
	err := c.db.QueryRow(`
		SELECT mtime, summary, first_message, working_dir
		FROM sessions WHERE id = ?
	`, id).Scan(&cachedMtime, &res.Summary, &res.FirstMessage, &res.WorkingDir)
	if err != nil {
		if err != sql.ErrNoRows {
			cacheLog.Debug("cache read failed", "session", id, "error", err)
		}
		return ParseResult{}, false
	}
	if cachedMtime != mtime {
		return ParseResult{}, false
	}
	return res, true
}

// Put stores the parse result for id at the given mtime.
func (c *Cache) Put(id string, mtime int64, res ParseResult) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO sessions (id, mtime, summary, first_message, working_dir)
		VALUES (?, ?, ?, ?, ?)
	`, id, mtime, res.Summary, res.FirstMessage, res.WorkingDir)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Prune drops cache rows for session ids no longer present on disk.
func (c *Cache) Prune(seen map[string]bool) error {
	rows, err := c.db.Query(`SELECT id FROM sessions`)
	if err != nil {
		return fmt.Errorf("cache: list: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("cache: scan id: %w", err)
		}
		if !seen[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("cache: iterate: %w", err)
	}

	for _, id := range stale {
		if _, err := c.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("cache: delete: %w", err)
		}
	}
	return nil
}
