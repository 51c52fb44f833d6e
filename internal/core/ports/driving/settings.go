package driving

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// SettingsService exposes the effective runtime settings.
type SettingsService interface {
	// Get returns the most recently loaded settings.
	Get() domain.Settings

	// Watch calls onChange with freshly loaded settings whenever the
	// configuration changes, until ctx is cancelled.
	Watch(ctx context.Context, onChange func(domain.Settings)) error
}
