package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsLoader resolves settings from configuration.
type SettingsLoader func() (domain.Settings, error)

// SettingsService holds the effective settings and reloads them when the
// configuration changes.
type SettingsService struct {
	watcher driven.ConfigWatcher
	load    SettingsLoader

	mu      sync.RWMutex
	current domain.Settings
}

// NewSettingsService creates a settings service. watcher and load may be nil,
// in which case the settings never change.
func NewSettingsService(initial domain.Settings, watcher driven.ConfigWatcher, load SettingsLoader) *SettingsService {
	return &SettingsService{
		watcher: watcher,
		load:    load,
		current: initial,
	}
}

// Get returns the most recently loaded settings.
func (s *SettingsService) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Watch blocks until ctx is cancelled, calling onChange with each valid
// reload. An invalid configuration is logged and the previous settings kept.
func (s *SettingsService) Watch(ctx context.Context, onChange func(domain.Settings)) error {
	if s.watcher == nil || s.load == nil {
		<-ctx.Done()
		return nil
	}
	return s.watcher.Watch(ctx, func() {
		settings, err := s.load()
		if err != nil {
			logger.Warn("ignoring configuration change: %v", err)
			return
		}
		s.mu.Lock()
		s.current = settings
		s.mu.Unlock()
		if onChange != nil {
			onChange(settings)
		}
	})
}
