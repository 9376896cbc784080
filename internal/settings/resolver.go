package settings

import (
	"fmt"
	"strings"

	"github.com/MauliQT/resonate/internal/plugin"
)

// GlobalSource provides persisted plugin-wide settings values. The store
// implements this; tests substitute an in-memory map.
type GlobalSource interface {
	// GlobalSetting returns the persisted value for a plugin field and
	// whether one exists.
	GlobalSetting(pluginName, field string) (string, bool, error)
}

// MissingRequiredSettingError aborts a run before any plugin executes.
type MissingRequiredSettingError struct {
	Plugin string
	Field  string
}

func (e *MissingRequiredSettingError) Error() string {
	return fmt.Sprintf("plugin '%s' is missing required setting '%s'", e.Plugin, e.Field)
}

// Resolver merges instance-level settings with global persisted values and
// schema defaults.
type Resolver struct {
	globals GlobalSource
}

// NewResolver creates a Resolver backed by the given global source, which
// may be nil when no global settings store is configured.
func NewResolver(globals GlobalSource) *Resolver {
	return &Resolver{globals: globals}
}

// Resolve produces the effective settings for one stage. For every field in
// the plugin's schema the precedence is: non-blank instance value, then
// persisted global value, then schema default. A required field with no
// value from any source fails with MissingRequiredSettingError.
//
// Resolution happens once per stage per run, immediately before the run's
// stages execute, so global edits between runs take effect without a restart.
func (r *Resolver) Resolve(info plugin.Info, instance map[string]string) (plugin.Settings, error) {
	resolved := make(plugin.Settings, len(info.Settings))

	for _, field := range info.Settings {
		value := strings.TrimSpace(instance[field.Name])

		if value == "" && r.globals != nil {
			global, ok, err := r.globals.GlobalSetting(info.Name, field.Name)
			if err != nil {
				return nil, fmt.Errorf("read global setting %s/%s: %w", info.Name, field.Name, err)
			}
			if ok {
				value = strings.TrimSpace(global)
			}
		}

		if value == "" {
			value = field.Default
		}

		if value == "" && field.Required {
			return nil, &MissingRequiredSettingError{Plugin: info.Name, Field: field.Name}
		}

		resolved[field.Name] = value
	}

	return resolved, nil
}
