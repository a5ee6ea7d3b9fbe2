package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord describes one computed batch in the catalog. Completeness is an
// explicit fact recorded at write time; it is never inferred from the data
// file length.
type RunRecord struct {
	Degree     int
	Path       string
	Roots      int64
	Failures   int64
	Complete   bool
	FinishedAt time.Time
}

// CatalogPath returns the catalog database path inside dataDir.
func CatalogPath(dataDir string) string {
	return filepath.Join(dataDir, "catalog.db")
}

// Catalog is the SQLite index of computed runs, one row per degree.
type Catalog struct {
	db   *sql.DB
	path string
}

// OpenCatalog opens (or creates) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	c := &Catalog{db: db, path: path}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// initialize creates the required tables.
func (c *Catalog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		degree INTEGER PRIMARY KEY,
		path TEXT NOT NULL,
		roots INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		complete INTEGER NOT NULL,
		finished_at DATETIME NOT NULL
	);`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Record inserts or replaces the run row for a degree.
func (c *Catalog) Record(rec RunRecord) error {
	_, err := c.db.Exec(`
		INSERT INTO runs (degree, path, roots, failures, complete, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(degree) DO UPDATE SET
			path = excluded.path,
			roots = excluded.roots,
			failures = excluded.failures,
			complete = excluded.complete,
			finished_at = excluded.finished_at`,
		rec.Degree, rec.Path, rec.Roots, rec.Failures, rec.Complete,
		rec.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record run for degree %d: %w", rec.Degree, err)
	}
	return nil
}

// Get returns the run record for a degree, with found=false when absent.
func (c *Catalog) Get(degree int) (RunRecord, bool, error) {
	var rec RunRecord
	var finished string
	err := c.db.QueryRow(`
		SELECT degree, path, roots, failures, complete, finished_at
		FROM runs WHERE degree = ?`, degree).
		Scan(&rec.Degree, &rec.Path, &rec.Roots, &rec.Failures, &rec.Complete, &finished)
	if err == sql.ErrNoRows {
		return RunRecord{}, false, nil
	}
	if err != nil {
		return RunRecord{}, false, fmt.Errorf("failed to query run for degree %d: %w", degree, err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, finished); perr == nil {
		rec.FinishedAt = t
	}
	return rec, true, nil
}

// List returns all run records ordered by degree.
func (c *Catalog) List() ([]RunRecord, error) {
	rows, err := c.db.Query(`
		SELECT degree, path, roots, failures, complete, finished_at
		FROM runs ORDER BY degree`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var finished string
		if err := rows.Scan(&rec.Degree, &rec.Path, &rec.Roots, &rec.Failures,
			&rec.Complete, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339Nano, finished); perr == nil {
			rec.FinishedAt = t
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
