package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Ensure ConfigStore implements the interfaces.
var (
	_ driven.ConfigStore   = (*ConfigStore)(nil)
	_ driven.ConfigWatcher = (*ConfigStore)(nil)
)

// configFile is the name of the TOML file inside the config directory.
const configFile = "config.toml"

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// ConfigStore keeps taskdash configuration in a TOML file.
// Tables map to dotted keys: [executor] lock_timeout is "executor.lock_timeout".
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	tree map[string]any
}

// NewConfigStore opens the config file in configDir, creating the directory
// if needed. If configDir is empty, defaults to ~/.taskdash.
// A missing file is an empty configuration.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".taskdash")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		path: filepath.Join(configDir, configFile),
		tree: make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value at a dotted key. Tables are not values.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node := any(s.tree)
	for _, part := range strings.Split(key, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = table[part]; !ok {
			return nil, false
		}
	}
	if _, isTable := node.(map[string]any); isTable {
		return nil, false
	}
	return node, true
}

// Set stores value at a dotted key, creating tables along the way, and
// writes the file. A scalar in the way of a table is replaced.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(key, ".")
	table := s.tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			table[part] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value

	return s.save()
}

// save writes the tree with owner-only permissions. Caller holds the lock.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Load re-reads the file. On a parse error the previous values are kept.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		data, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	tree := make(map[string]any)
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// Watch reloads the file after it changes on disk and calls onChange after
// each successful reload. It blocks until ctx is cancelled.
// The directory is watched so editors that replace the file on save are seen.
func (s *ConfigStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDelay)
			}

		case <-timer.C:
			if err := s.Load(); err != nil {
				logger.Warn("ignoring config change: %v", err)
				continue
			}
			logger.Debug("reloaded %s", s.path)
			if onChange != nil {
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}
