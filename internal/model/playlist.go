package model

// Playlist is a named, ordered song collection. Order is meaningful and
// preserved end-to-end through a run.
type Playlist struct {
	Name        string            `json:"name" yaml:"name"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	IDs         map[string]string `json:"ids,omitempty" yaml:"ids,omitempty"`
	Songs       []Song            `json:"songs" yaml:"songs"`
}

// Clone returns a deep copy of the playlist.
func (p Playlist) Clone() Playlist {
	out := p
	if p.IDs != nil {
		out.IDs = make(map[string]string, len(p.IDs))
		for k, v := range p.IDs {
			out.IDs[k] = v
		}
	}
	out.Songs = make([]Song, len(p.Songs))
	for i, song := range p.Songs {
		out.Songs[i] = song.Clone()
	}
	return out
}

// ClonePlaylists deep-copies a working list so modifiers can replace it
// without aliasing the previous stage's data.
func ClonePlaylists(playlists []Playlist) []Playlist {
	out := make([]Playlist, len(playlists))
	for i, p := range playlists {
		out[i] = p.Clone()
	}
	return out
}

// TotalSongs counts songs across all playlists.
func TotalSongs(playlists []Playlist) int {
	total := 0
	for _, p := range playlists {
		total += len(p.Songs)
	}
	return total
}
