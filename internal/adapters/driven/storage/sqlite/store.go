package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// databaseFile is the history database name inside the data directory.
const databaseFile = "history.db"

// pragmas: WAL lets the dashboard read while a worker writes, FULL sync makes
// a start record durable before the function runs.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"

// Store owns the SQLite history database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the history database in dataDir and brings its
// schema up to date. If dataDir is empty, defaults to ~/.taskdash/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".taskdash", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, databaseFile)
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}

	steps, err := loadMigrations(migrations.FS)
	if err == nil {
		err = s.migrateUp(steps)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("history database ready at %s", path)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// HistoryStore returns the history store backed by this database.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migration is one numbered schema step with its rollback.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// loadMigrations pairs NNN_name.up.sql with NNN_name.down.sql, sorted by version.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, entry := range entries {
		name := entry.Name()
		var direction string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(name, ".down.sql"):
			direction = "down"
		default:
			continue
		}

		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			return nil, fmt.Errorf("migration %s: missing version prefix", name)
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version, name: strings.TrimSuffix(name, "."+direction+".sql")}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(content)
		} else {
			m.down = string(content)
		}
	}

	steps := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" {
			return nil, fmt.Errorf("migration %s: missing up script", m.name)
		}
		steps = append(steps, *m)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// SchemaVersion returns the highest applied migration, 0 for an empty database.
func (s *Store) SchemaVersion() (int, error) {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return 0, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// migrateUp applies every step newer than the current version.
func (s *Store) migrateUp(steps []migration) error {
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range steps {
		if m.version <= current {
			continue
		}
		err := s.inTx(m.up, "INSERT INTO schema_migrations (version) VALUES (?)", m.version)
		if err != nil {
			return fmt.Errorf("applying %s: %w", m.name, err)
		}
		logger.Debug("applied migration %s", m.name)
	}
	return nil
}

// MigrateDown rolls the schema back until only migrations up to target remain.
// MigrateDown(0) drops the history table and all recorded invocations.
func (s *Store) MigrateDown(target int) error {
	steps, err := loadMigrations(migrations.FS)
	if err != nil {
		return err
	}
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	for i := len(steps) - 1; i >= 0; i-- {
		m := steps[i]
		if m.version <= target || m.version > current {
			continue
		}
		if m.down == "" {
			return fmt.Errorf("migration %s cannot be rolled back", m.name)
		}
		if err := s.inTx(m.down, "DELETE FROM schema_migrations WHERE version = ?", m.version); err != nil {
			return fmt.Errorf("rolling back %s: %w", m.name, err)
		}
		logger.Debug("rolled back migration %s", m.name)
	}
	return nil
}

// inTx runs script and a bookkeeping statement atomically.
func (s *Store) inTx(script, bookkeeping string, version int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec(bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}
