package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver

	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/postgres/schema"
	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Store is a PostgreSQL-backed history store.
type Store struct {
	db *sql.DB
}

var _ driven.HistoryStore = (*Store)(nil)

// NewStore connects to dsn and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", MapError(err))
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	entries, err := fs.ReadDir(schema.FS, ".")
	if err != nil {
		return fmt.Errorf("reading schema directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		content, err := fs.ReadFile(schema.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(ctx, version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// apply runs one migration unless it is already recorded. Concurrent
// workers serialise on a transaction-scoped advisory lock.
func (s *Store) apply(ctx context.Context, version int, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MapError(err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(7305)"); err != nil {
		return MapError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return MapError(err)
	}

	var applied bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&applied)
	if err != nil {
		return MapError(err)
	}
	if applied {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return MapError(err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING", version); err != nil {
		return MapError(err)
	}
	if err := tx.Commit(); err != nil {
		return MapError(err)
	}
	logger.Debug("applied postgres migration %d", version)
	return nil
}

const latestActive = `
	SELECT id FROM history
	WHERE func_name = $1 AND args = $2 AND status IN ('PENDING', 'IN_PROGRESS')
	ORDER BY id DESC LIMIT 1
`

const selectColumns = `
	SELECT id, func_name, args, start_time, end_time, duration_ns, status, error, result, progress
	FROM history
`

// Append inserts an IN_PROGRESS record and returns its ID.
func (s *Store) Append(ctx context.Context, function, argumentKey string, start time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO history (func_name, args, start_time, status, progress)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id
	`, function, argumentKey, start.UTC(), string(domain.StatusInProgress)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("appending history record: %w", MapError(err))
	}
	return id, nil
}

// Complete finalises the newest unfinished record for the pair.
func (s *Store) Complete(ctx context.Context, function, argumentKey string, completion domain.Completion) error {
	if err := completion.Validate(); err != nil {
		return err
	}

	var result []byte
	if completion.Status == domain.StatusSuccess {
		result = completion.Result
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE history
		SET status = $3, end_time = $4, duration_ns = $5, error = $6, result = $7
		WHERE id = (`+latestActive+`)
	`, function, argumentKey, string(completion.Status), nullTime(completion.EndTime),
		int64(completion.Duration), nullString(completion.ErrorMessage), result)
	if err != nil {
		return fmt.Errorf("completing history record: %w", MapError(err))
	}
	return nil
}

// UpdateProgress raises the progress of the running record for the pair.
func (s *Store) UpdateProgress(ctx context.Context, function, argumentKey string, progress int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE history
		SET progress = $3
		WHERE id = (`+latestActive+`) AND status = 'IN_PROGRESS' AND progress <= $3
	`, function, argumentKey, progress)
	if err != nil {
		return fmt.Errorf("updating progress: %w", MapError(err))
	}
	return nil
}

// LatestSuccess returns the result of the newest SUCCESS record for the pair.
func (s *Store) LatestSuccess(ctx context.Context, function, argumentKey string) ([]byte, bool, error) {
	var result []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT result FROM history
		WHERE func_name = $1 AND args = $2 AND status = 'SUCCESS'
		ORDER BY id DESC LIMIT 1
	`, function, argumentKey).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up cached result: %w", MapError(err))
	}
	return result, true, nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id int64) (*domain.TaskRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = $1", id))
	if err != nil {
		return nil, MapError(err)
	}
	return rec, nil
}

// List returns recent records, most recent first.
func (s *Store) List(ctx context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	var nullableLimit any
	if limit > 0 {
		nullableLimit = limit
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE ($1 = '' OR func_name = $1)
		ORDER BY id DESC
		LIMIT $2
	`, function, nullableLimit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", MapError(err))
	}
	defer rows.Close()

	var records []domain.TaskRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", MapError(err))
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.TaskRecord, error) {
	var (
		rec      domain.TaskRecord
		end      sql.NullTime
		duration sql.NullInt64
		status   string
		errMsg   sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.Function, &rec.ArgumentKey, &rec.StartTime, &end,
		&duration, &status, &errMsg, &rec.Result, &rec.Progress)
	if err != nil {
		return nil, err
	}

	rec.EndTime = end.Time
	rec.Duration = time.Duration(duration.Int64)
	rec.Status = domain.TaskStatus(status)
	rec.ErrorMessage = errMsg.String
	return &rec, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
