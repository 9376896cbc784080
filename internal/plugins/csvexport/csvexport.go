// Package csvexport provides an output plugin that writes one CSV file per
// playlist into a target directory, in the same column layout the csvimport
// plugin reads back.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

var header = []string{"title", "artists", "album", "date", "isrc", "location", "spotify_id", "tidal_id"}

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "csvexport",
		Category:    plugin.CategoryOutput,
		Version:     "1.0.0",
		Description: "write each playlist to a csv file in a target folder",
		Modes:       plugin.Modes{Playlists: true, Songs: true},
		Settings: []plugin.SettingField{
			{Name: "path", Label: "Target Folder", Type: plugin.FieldText, Required: true},
			{Name: "delimiter", Label: "CSV Delimiter", Type: plugin.FieldText, Default: ","},
		},
	}
}

// Test verifies the target folder exists or can be created.
func (p *Plugin) Test(_ context.Context, settings plugin.Settings) error {
	dir := settings.Get("path")
	if dir == "" {
		return fmt.Errorf("target folder is required")
	}
	return os.MkdirAll(dir, 0o755)
}

func (p *Plugin) Run(ctx context.Context, settings plugin.Settings, final []model.Playlist) error {
	dir := settings.Get("path")
	if dir == "" {
		return fmt.Errorf("target folder is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create target folder '%s': %w", dir, err)
	}

	delimiter := ','
	for _, r := range settings.GetDefault("delimiter", ",") {
		delimiter = r
		break
	}

	for _, pl := range final {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writePlaylist(dir, pl, delimiter); err != nil {
			return err
		}
	}
	return nil
}

func writePlaylist(dir string, pl model.Playlist, delimiter rune) error {
	path := filepath.Join(dir, sanitizeFileName(pl.Name)+".csv")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create '%s': %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delimiter

	if err := w.Write(header); err != nil {
		return fmt.Errorf("write '%s': %w", path, err)
	}
	for _, song := range pl.Songs {
		artists := song.Artists
		if len(artists) == 0 && song.Artist != "" {
			artists = []string{song.Artist}
		}
		row := []string{
			song.Title,
			strings.Join(artists, ";"),
			song.Album,
			song.Date,
			song.ISRC,
			song.Location,
			song.IDs["spotify"],
			song.IDs["tidal"],
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write '%s': %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write '%s': %w", path, err)
	}
	return f.Close()
}

// sanitizeFileName replaces characters that are unsafe in file names.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "playlist"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
