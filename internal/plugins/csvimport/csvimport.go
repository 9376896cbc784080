// Package csvimport provides an input plugin that reads playlists from CSV
// files: a single Exportify-style file, a folder of such files, or one
// multi-playlist file with a playlist column.
package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/MauliQT/resonate/internal/logger"
	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

const (
	sourceFileName = "From file name"
	sourceColumn   = "From CSV column"
)

// columns is the resolved column-name configuration for one run.
type columns struct {
	playlist  string
	title     string
	artists   string
	album     string
	date      string
	isrc      string
	location  string
	spotifyID string
	tidalID   string
}

// Plugin imports playlists from CSV.
type Plugin struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Plugin { return &Plugin{log: log} }

func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "csvimport",
		Category:    plugin.CategoryInput,
		Version:     "1.0.0",
		Description: "import playlists and songs from a csv file or folder",
		Modes:       plugin.Modes{Playlists: true},
		Settings: []plugin.SettingField{
			{Name: "path", Label: "CSV File or Folder Path", Type: plugin.FieldText, Required: true},
			{Name: "include_subfolders", Label: "Include Subfolders (when path is a folder)", Type: plugin.FieldRadio, Options: []string{"No", "Yes"}, Default: "No"},
			{Name: "delimiter", Label: "CSV Delimiter", Type: plugin.FieldText, Default: ","},
			{Name: "has_header", Label: "Has Header Row", Type: plugin.FieldRadio, Options: []string{"Yes", "No"}, Default: "Yes"},
			{Name: "playlist_source", Label: "Playlist Name Source", Type: plugin.FieldRadio, Options: []string{sourceFileName, sourceColumn}, Default: sourceFileName},
			{Name: "col_playlist", Label: "Playlist Column Name (for multi-playlist CSV)", Type: plugin.FieldText, Default: "playlist"},
			{Name: "col_title", Label: "Title Column Name", Type: plugin.FieldText, Default: "Track Name"},
			{Name: "col_artists", Label: "Artists Column Name", Type: plugin.FieldText, Default: "Artist Name"},
			{Name: "col_album", Label: "Album Column Name", Type: plugin.FieldText, Default: "Album Name"},
			{Name: "col_date", Label: "Date Column Name", Type: plugin.FieldText, Default: "date"},
			{Name: "col_isrc", Label: "ISRC Column Name", Type: plugin.FieldText, Default: "isrc"},
			{Name: "col_location", Label: "Location Column Name", Type: plugin.FieldText, Default: "location"},
			{Name: "col_spotify_id", Label: "Spotify ID Column Name", Type: plugin.FieldText, Default: "Track ID"},
			{Name: "col_tidal_id", Label: "Tidal ID Column Name", Type: plugin.FieldText, Default: "tidal_id"},
			{Name: "filter", Label: "Playlist Name Filter (regex)", Type: plugin.FieldText},
		},
	}
}

// Test checks the configured path exists without importing anything.
func (p *Plugin) Test(_ context.Context, settings plugin.Settings) error {
	path := settings.Get("path")
	if path == "" {
		return fmt.Errorf("csv path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("csv path '%s' is not accessible: %w", path, err)
	}
	return nil
}

func (p *Plugin) Run(ctx context.Context, settings plugin.Settings) (*plugin.InputResult, error) {
	path := settings.Get("path")
	if path == "" {
		return nil, fmt.Errorf("csv path is required")
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("csv path '%s' does not exist: %w", path, err)
	}

	cols := resolveColumns(settings)
	delimiter := delimiterRune(settings.GetDefault("delimiter", ","))
	hasHeader := settings.GetDefault("has_header", "Yes") == "Yes"

	var playlists []model.Playlist
	switch {
	case stat.IsDir():
		playlists, err = p.importFolder(ctx, path, settings.Get("include_subfolders") == "Yes", delimiter, hasHeader, cols)
	case settings.GetDefault("playlist_source", sourceFileName) == sourceColumn:
		playlists, err = p.importMultiPlaylist(path, delimiter, hasHeader, cols)
	default:
		var pl *model.Playlist
		pl, err = p.importOneFile(path, delimiter, hasHeader, cols)
		if pl != nil {
			playlists = append(playlists, *pl)
		}
	}
	if err != nil {
		return nil, err
	}

	if pattern := settings.Get("filter"); pattern != "" {
		re, reErr := regexp.Compile(pattern)
		if reErr != nil {
			return nil, fmt.Errorf("invalid playlist name filter '%s': %w", pattern, reErr)
		}
		kept := playlists[:0]
		for _, pl := range playlists {
			if re.MatchString(pl.Name) {
				kept = append(kept, pl)
			}
		}
		playlists = kept
	}

	return &plugin.InputResult{Playlists: playlists}, nil
}

// importOneFile reads a single CSV, naming the playlist after the file.
// Returns nil when the file holds no usable rows.
func (p *Plugin) importOneFile(path string, delimiter rune, hasHeader bool, cols columns) (*model.Playlist, error) {
	rows, header, err := readCSV(path, delimiter, hasHeader)
	if err != nil {
		return nil, err
	}

	var songs []model.Song
	for _, row := range rows {
		if song, ok := rowToSong(row, header, cols, false); ok {
			songs = append(songs, song)
		}
	}
	if len(songs) == 0 {
		return nil, nil
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &model.Playlist{Name: name, Songs: songs}, nil
}

// importFolder creates one playlist per CSV file, in sorted path order.
// A file that fails to parse is skipped, not fatal.
func (p *Plugin) importFolder(ctx context.Context, dir string, subfolders bool, delimiter rune, hasHeader bool, cols columns) ([]model.Playlist, error) {
	paths, err := csvFilesIn(dir, subfolders)
	if err != nil {
		return nil, err
	}

	var playlists []model.Playlist
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pl, err := p.importOneFile(path, delimiter, hasHeader, cols)
		if err != nil {
			p.warn(fmt.Sprintf("skipping %s: %v", path, err))
			continue
		}
		if pl == nil {
			continue
		}
		playlists = append(playlists, *pl)
	}
	return playlists, nil
}

// importMultiPlaylist groups rows of one CSV by their playlist column.
// Playlist order follows first appearance in the file.
func (p *Plugin) importMultiPlaylist(path string, delimiter rune, hasHeader bool, cols columns) ([]model.Playlist, error) {
	rows, header, err := readCSV(path, delimiter, hasHeader)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var playlists []model.Playlist
	for _, row := range rows {
		var name string
		if hasHeader {
			name = cell(row, header, cols.playlist)
		} else if len(row) > 0 {
			name = strings.TrimSpace(row[0])
		}
		if name == "" {
			continue
		}

		song, ok := rowToSong(row, header, cols, true)
		if !ok {
			continue
		}

		i, exists := index[name]
		if !exists {
			i = len(playlists)
			index[name] = i
			playlists = append(playlists, model.Playlist{Name: name})
		}
		playlists[i].Songs = append(playlists[i].Songs, song)
	}
	return playlists, nil
}

func csvFilesIn(dir string, subfolders bool) ([]string, error) {
	var paths []string
	if subfolders {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan folder '%s': %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scan folder '%s': %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// readCSV loads all rows. With a header row, header maps lowercased column
// names to their index; without one, header is nil and access is positional.
func readCSV(path string, delimiter rune, hasHeader bool) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv '%s': %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv '%s': %w", path, err)
	}

	var header map[string]int
	if hasHeader && len(records) > 0 {
		header = make(map[string]int, len(records[0]))
		for i, name := range records[0] {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				header[name] = i
			}
		}
		records = records[1:]
	}

	rows := records[:0]
	for _, row := range records {
		if !emptyRow(row) {
			rows = append(rows, row)
		}
	}
	return rows, header, nil
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell resolves a configured column name case-insensitively against the
// header map.
func cell(row []string, header map[string]int, name string) string {
	i, ok := header[strings.ToLower(strings.TrimSpace(name))]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// positional holds the documented column order used when no header row is
// present: playlist (multi-playlist files only), then title, artists, album,
// date, isrc, location, spotify id, tidal id.
func positional(row []string, offset, i int) string {
	i += offset
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// rowToSong converts one CSV row. Rows without a title are skipped.
func rowToSong(row []string, header map[string]int, cols columns, hasPlaylistColumn bool) (model.Song, bool) {
	get := func(name string, pos int) string {
		if header != nil {
			return cell(row, header, name)
		}
		offset := 0
		if hasPlaylistColumn {
			offset = 1
		}
		return positional(row, offset, pos)
	}

	title := get(cols.title, 0)
	if title == "" {
		return model.Song{}, false
	}

	song := model.Song{
		Title:    title,
		Album:    get(cols.album, 2),
		Date:     get(cols.date, 3),
		ISRC:     get(cols.isrc, 4),
		Location: get(cols.location, 5),
	}

	for _, artist := range strings.Split(get(cols.artists, 1), ";") {
		if artist = strings.TrimSpace(artist); artist != "" {
			song.Artists = append(song.Artists, artist)
		}
	}
	if len(song.Artists) > 0 {
		song.Artist = song.Artists[0]
	}

	if id := get(cols.spotifyID, 6); id != "" {
		song.IDs = map[string]string{"spotify": id}
	}
	if id := get(cols.tidalID, 7); id != "" {
		if song.IDs == nil {
			song.IDs = make(map[string]string, 1)
		}
		song.IDs["tidal"] = id
	}

	return song, true
}

func resolveColumns(settings plugin.Settings) columns {
	return columns{
		playlist:  settings.GetDefault("col_playlist", "playlist"),
		title:     settings.GetDefault("col_title", "Track Name"),
		artists:   settings.GetDefault("col_artists", "Artist Name"),
		album:     settings.GetDefault("col_album", "Album Name"),
		date:      settings.GetDefault("col_date", "date"),
		isrc:      settings.GetDefault("col_isrc", "isrc"),
		location:  settings.GetDefault("col_location", "location"),
		spotifyID: settings.GetDefault("col_spotify_id", "Track ID"),
		tidalID:   settings.GetDefault("col_tidal_id", "tidal_id"),
	}
}

func delimiterRune(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}

func (p *Plugin) warn(msg string) {
	if p.log == nil {
		return
	}
	p.log.Warn(msg)
}
