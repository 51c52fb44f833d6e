package driven

import "context"

// ConfigStore provides access to application configuration.
// Keys use dot notation: "storage.driver" is driver in the [storage] table.
type ConfigStore interface {
	// Get returns the value at key and whether it is set.
	Get(key string) (any, bool)

	// Set stores a value at key and persists the configuration.
	Set(key string, value any) error

	// Load re-reads configuration from storage.
	Load() error

	// Path returns where the configuration is persisted.
	Path() string
}

// ConfigWatcher notifies about changes to persisted configuration.
type ConfigWatcher interface {
	// Watch calls onChange after the configuration is reloaded from storage.
	// It blocks until ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error
}
