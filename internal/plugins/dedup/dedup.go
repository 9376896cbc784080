// Package dedup provides a modifier plugin that removes duplicate songs
// within each playlist.
package dedup

import (
	"context"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/normalize"
	"github.com/MauliQT/resonate/internal/plugin"
)

// Plugin removes duplicates by the title+artist identity rule. Source ids of
// removed duplicates are folded into the kept song.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "dedup",
		Category:    plugin.CategoryModifier,
		Version:     "1.0.0",
		Description: "remove duplicate songs within each playlist",
		Modes:       plugin.Modes{Playlists: true, Songs: true},
	}
}

func (p *Plugin) Test(context.Context, plugin.Settings) error { return nil }

func (p *Plugin) Run(_ context.Context, _ plugin.Settings, current []model.Playlist) ([]model.Playlist, error) {
	out := make([]model.Playlist, len(current))
	for i, pl := range current {
		out[i] = normalize.DedupPlaylist(pl)
	}
	return out, nil
}
