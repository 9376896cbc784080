package normalize

import (
	"fmt"
	"strings"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

// UnnamedSongsOutputError is returned when a songs-mode input emits songs
// without supplying a name for the synthetic playlist that must wrap them.
type UnnamedSongsOutputError struct {
	Plugin string
}

func (e *UnnamedSongsOutputError) Error() string {
	return fmt.Sprintf("songs-mode plugin '%s' emitted songs without a playlist name", e.Plugin)
}

// FromInput converts one input stage's result into the canonical playlist
// list. Playlists-mode results pass through with their source stamped; a
// songs-mode result is wrapped into exactly one synthetic playlist named by
// the plugin.
func FromInput(pluginName string, res *plugin.InputResult) ([]model.Playlist, error) {
	if res == nil {
		return nil, nil
	}

	if len(res.Playlists) > 0 {
		out := make([]model.Playlist, len(res.Playlists))
		for i, p := range res.Playlists {
			if p.Source == "" {
				p.Source = pluginName
			}
			out[i] = p
		}
		return out, nil
	}

	if len(res.Songs) == 0 {
		return nil, nil
	}

	name := strings.TrimSpace(res.SongsName)
	if name == "" {
		return nil, &UnnamedSongsOutputError{Plugin: pluginName}
	}

	return []model.Playlist{{
		Name:   name,
		Source: pluginName,
		Songs:  res.Songs,
	}}, nil
}

// Adapt shapes the working list for a consumer's declared modes. A consumer
// that supports playlists mode receives the list unchanged. A songs-mode-only
// consumer facing multiple playlists gets them flattened into one list in
// playlist-then-song order; this is lossy, so a warning describes what
// happened. Empty playlists are dropped before flattening and named in the
// warning.
func Adapt(playlists []model.Playlist, modes plugin.Modes) ([]model.Playlist, []string) {
	if modes.Playlists || len(playlists) <= 1 {
		return playlists, nil
	}

	var warnings []string
	var dropped []string
	kept := make([]model.Playlist, 0, len(playlists))
	for _, p := range playlists {
		if len(p.Songs) == 0 {
			dropped = append(dropped, p.Name)
			continue
		}
		kept = append(kept, p)
	}
	if len(dropped) > 0 {
		warnings = append(warnings, fmt.Sprintf("dropped empty playlists before songs-mode flattening: %s", strings.Join(dropped, ", ")))
	}

	if len(kept) <= 1 {
		return kept, warnings
	}

	combined := model.Playlist{Name: kept[0].Name, Source: kept[0].Source}
	names := make([]string, 0, len(kept))
	for _, p := range kept {
		combined.Songs = append(combined.Songs, p.Songs...)
		names = append(names, p.Name)
	}
	warnings = append(warnings, fmt.Sprintf("flattened %s into a single song list for a songs-mode plugin", strings.Join(names, ", ")))

	return []model.Playlist{combined}, warnings
}

// DedupSongs removes duplicate songs by the title/artist identity rule,
// keeping first-occurrence order. Source identifiers from later duplicates
// are unioned into the surviving song so no downstream output loses the
// service-specific ids it needs.
func DedupSongs(songs []model.Song) []model.Song {
	seen := make(map[string]int, len(songs))
	out := make([]model.Song, 0, len(songs))
	for _, song := range songs {
		key := song.Key()
		if idx, dup := seen[key]; dup {
			out[idx].MergeIDs(song)
			continue
		}
		seen[key] = len(out)
		out = append(out, song.Clone())
	}
	return out
}

// DedupPlaylist returns a copy of the playlist with duplicate songs removed.
func DedupPlaylist(p model.Playlist) model.Playlist {
	out := p
	out.Songs = DedupSongs(p.Songs)
	return out
}
