package driven

import "github.com/knowgrid/knowgrid/internal/core/domain"

// SettingsStore persists application settings.
// Implementations typically read a user-editable config file with
// environment-variable overrides for secrets.
type SettingsStore interface {
	// Load returns the current settings, with defaults applied for
	// anything the stored configuration leaves unset.
	Load() (domain.AppSettings, error)

	// Save persists the given settings.
	Save(settings domain.AppSettings) error

	// Path returns the location of the backing configuration file.
	Path() string
}
