// Package namefilter provides a modifier plugin that keeps only playlists
// whose name matches a regular expression.
package namefilter

import (
	"context"
	"fmt"
	"regexp"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "namefilter",
		Category:    plugin.CategoryModifier,
		Version:     "1.0.0",
		Description: "keep only playlists whose name matches a regex",
		Modes:       plugin.Modes{Playlists: true},
		Settings: []plugin.SettingField{
			{Name: "pattern", Label: "Playlist Name Pattern (regex)", Type: plugin.FieldText, Required: true},
		},
	}
}

// Test verifies the configured pattern compiles.
func (p *Plugin) Test(_ context.Context, settings plugin.Settings) error {
	_, err := compile(settings)
	return err
}

func (p *Plugin) Run(_ context.Context, settings plugin.Settings, current []model.Playlist) ([]model.Playlist, error) {
	re, err := compile(settings)
	if err != nil {
		return nil, err
	}

	var kept []model.Playlist
	for _, pl := range current {
		if re.MatchString(pl.Name) {
			kept = append(kept, pl)
		}
	}
	return kept, nil
}

func compile(settings plugin.Settings) (*regexp.Regexp, error) {
	pattern := settings.Get("pattern")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist name pattern '%s': %w", pattern, err)
	}
	return re, nil
}
