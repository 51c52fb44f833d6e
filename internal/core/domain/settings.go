package domain

import "time"

const unknownDescription = "Unknown"

// StorageDriver selects the history store implementation.
type StorageDriver string

// Available storage drivers.
const (
	// StorageSQLite stores history in a local SQLite file.
	StorageSQLite StorageDriver = "sqlite"

	// StoragePostgres stores history in PostgreSQL, shared by several workers.
	StoragePostgres StorageDriver = "postgres"

	// StorageMemory keeps history in memory for the lifetime of the process.
	StorageMemory StorageDriver = "memory"
)

// IsValid returns true if the storage driver is recognised.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the driver.
func (d StorageDriver) Description() string {
	switch d {
	case StorageSQLite:
		return "SQLite (local file)"
	case StoragePostgres:
		return "PostgreSQL (shared)"
	case StorageMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// SubstrateDriver selects where user functions run.
type SubstrateDriver string

// Available substrate drivers.
const (
	// SubstrateLocal runs functions on an in-process goroutine pool.
	SubstrateLocal SubstrateDriver = "local"

	// SubstrateAsynq runs functions on asynq workers through Redis.
	SubstrateAsynq SubstrateDriver = "asynq"
)

// IsValid returns true if the substrate driver is recognised.
func (d SubstrateDriver) IsValid() bool {
	return d == SubstrateLocal || d == SubstrateAsynq
}

// Description returns a human-readable description of the driver.
func (d SubstrateDriver) Description() string {
	switch d {
	case SubstrateLocal:
		return "Local goroutine pool"
	case SubstrateAsynq:
		return "asynq workers (Redis)"
	default:
		return unknownDescription
	}
}

// Settings holds runtime configuration.
type Settings struct {
	// StorageDriver selects the history store.
	StorageDriver StorageDriver

	// StorageDir is the SQLite data directory. Empty means ~/.taskdash/data.
	StorageDir string

	// StorageDSN is the PostgreSQL connection string.
	StorageDSN string

	// SubstrateDriver selects the execution substrate.
	SubstrateDriver SubstrateDriver

	// Concurrency bounds how many functions run at once on a substrate.
	Concurrency int

	// RedisAddr is the Redis address used by the asynq substrate.
	RedisAddr string

	// Queue is the asynq queue name.
	Queue string

	// LockTimeout bounds the wait for a function's lock. Zero waits forever.
	LockTimeout time.Duration

	// ExecTimeout bounds a single execution. Zero means no timeout.
	ExecTimeout time.Duration

	// PollInterval is the completion waiter's fixed poll delay.
	PollInterval time.Duration

	// RefreshInterval is the dashboard's queue depth refresh delay.
	RefreshInterval time.Duration
}

// DefaultSettings returns sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		StorageDriver:   StorageSQLite,
		SubstrateDriver: SubstrateLocal,
		Concurrency:     4,
		RedisAddr:       "localhost:6379",
		Queue:           "default",
		PollInterval:    1 * time.Second,
		RefreshInterval: 1 * time.Second,
	}
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if !s.StorageDriver.IsValid() || !s.SubstrateDriver.IsValid() {
		return ErrInvalidInput
	}
	if s.StorageDriver == StoragePostgres && s.StorageDSN == "" {
		return ErrInvalidInput
	}
	if s.Concurrency <= 0 || s.PollInterval <= 0 || s.RefreshInterval <= 0 {
		return ErrInvalidInput
	}
	if s.LockTimeout < 0 || s.ExecTimeout < 0 {
		return ErrInvalidInput
	}
	return nil
}
