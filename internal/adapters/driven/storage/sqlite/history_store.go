package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// latestActive selects the newest unfinished record for a pair.
const latestActive = `
	SELECT id FROM history
	WHERE func_name = ? AND args = ? AND status IN ('PENDING', 'IN_PROGRESS')
	ORDER BY id DESC LIMIT 1
`

const selectColumns = `
	SELECT id, func_name, args, start_time, end_time, duration_ns, status, error, result, progress
	FROM history
`

// Append inserts an IN_PROGRESS record and returns its ID.
func (s *historyStore) Append(ctx context.Context, function, argumentKey string, start time.Time) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO history (func_name, args, start_time, status, progress)
		VALUES (?, ?, ?, ?, 0)
	`, function, argumentKey, formatTime(start), string(domain.StatusInProgress))
	if err != nil {
		return 0, fmt.Errorf("appending history record: %w", storageError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading history record id: %w", storageError(err))
	}
	return id, nil
}

// Complete finalises the newest unfinished record for the pair.
// It is a no-op when none exists.
func (s *historyStore) Complete(ctx context.Context, function, argumentKey string, completion domain.Completion) error {
	if err := completion.Validate(); err != nil {
		return err
	}

	var result any
	if completion.Status == domain.StatusSuccess {
		result = completion.Result
	}

	_, err := s.store.db.ExecContext(ctx, `
		UPDATE history
		SET status = ?, end_time = ?, duration_ns = ?, error = ?, result = ?
		WHERE id = (`+latestActive+`)
	`, string(completion.Status), formatTime(completion.EndTime), int64(completion.Duration),
		nullString(completion.ErrorMessage), result,
		function, argumentKey)
	if err != nil {
		return fmt.Errorf("completing history record: %w", storageError(err))
	}
	return nil
}

// UpdateProgress raises the progress of the running record for the pair.
// Lower values and finished records are left untouched.
func (s *historyStore) UpdateProgress(ctx context.Context, function, argumentKey string, progress int) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE history
		SET progress = ?
		WHERE id = (`+latestActive+`) AND status = 'IN_PROGRESS' AND progress <= ?
	`, progress, function, argumentKey, progress)
	if err != nil {
		return fmt.Errorf("updating progress: %w", storageError(err))
	}
	return nil
}

// LatestSuccess returns the result of the newest SUCCESS record for the pair.
func (s *historyStore) LatestSuccess(ctx context.Context, function, argumentKey string) ([]byte, bool, error) {
	var result []byte
	err := s.store.db.QueryRowContext(ctx, `
		SELECT result FROM history
		WHERE func_name = ? AND args = ? AND status = 'SUCCESS'
		ORDER BY id DESC LIMIT 1
	`, function, argumentKey).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up cached result: %w", storageError(err))
	}
	return result, true, nil
}

// Get retrieves a record by ID.
func (s *historyStore) Get(ctx context.Context, id int64) (*domain.TaskRecord, error) {
	row := s.store.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanRecord(row)
}

// List returns recent records, most recent first.
// An empty function lists every function; a non-positive limit lists all.
func (s *historyStore) List(ctx context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, selectColumns+`
		WHERE (? = '' OR func_name = ?)
		ORDER BY id DESC
		LIMIT ?
	`, function, function, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", storageError(err))
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
		return nil, fmt.Errorf("iterating history: %w", storageError(err))
	}
	return records, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.TaskRecord, error) {
	var (
		rec      domain.TaskRecord
		start    string
		end      sql.NullString
		duration sql.NullInt64
		status   string
		errMsg   sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.Function, &rec.ArgumentKey, &start, &end,
		&duration, &status, &errMsg, &rec.Result, &rec.Progress)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning history record: %w", storageError(err))
	}

	rec.StartTime = parseNullableTime(sql.NullString{String: start, Valid: true})
	rec.EndTime = parseNullableTime(end)
	rec.Duration = time.Duration(duration.Int64)
	rec.Status = domain.TaskStatus(status)
	rec.ErrorMessage = errMsg.String
	return &rec, nil
}

// storageError marks a driver failure as domain.ErrStorage.
func storageError(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

// formatTime stores times in UTC with nanosecond precision.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
