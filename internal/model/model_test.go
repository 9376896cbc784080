package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSongKeyIsCaseInsensitive(t *testing.T) {
	a := Song{Title: "Harder Better Faster Stronger", Artist: "Daft Punk"}
	b := Song{Title: "harder better faster stronger", Artist: "DAFT PUNK"}
	require.True(t, a.Same(b))
}

func TestSongKeyIsDiacriticInsensitive(t *testing.T) {
	a := Song{Title: "Déjà Vu", Artist: "Beyoncé"}
	b := Song{Title: "Deja Vu", Artist: "Beyonce"}
	require.True(t, a.Same(b))
}

func TestSongKeyDistinguishesTracks(t *testing.T) {
	a := Song{Title: "One", Artist: "U2"}
	b := Song{Title: "One", Artist: "Metallica"}
	require.False(t, a.Same(b))
}

func TestSongKeyIgnoresSurroundingWhitespace(t *testing.T) {
	a := Song{Title: "  Karma Police ", Artist: "Radiohead"}
	b := Song{Title: "Karma Police", Artist: "Radiohead"}
	require.True(t, a.Same(b))
}

func TestMergeIDsUnionsWithoutOverwriting(t *testing.T) {
	a := Song{Title: "Time", Artist: "Pink Floyd", IDs: map[string]string{"spotify": "sp1"}}
	b := Song{Title: "Time", Artist: "Pink Floyd", IDs: map[string]string{"spotify": "sp2", "tidal": "td1"}}

	a.MergeIDs(b)

	require.Equal(t, "sp1", a.IDs["spotify"], "existing id must win")
	require.Equal(t, "td1", a.IDs["tidal"])
}

func TestMergeIDsIntoSongWithoutIDs(t *testing.T) {
	a := Song{Title: "Time", Artist: "Pink Floyd"}
	b := Song{Title: "Time", Artist: "Pink Floyd", IDs: map[string]string{"plex": "px1"}}

	a.MergeIDs(b)

	require.Equal(t, map[string]string{"plex": "px1"}, a.IDs)
}

func TestPlaylistCloneIsDeep(t *testing.T) {
	original := Playlist{
		Name: "Roadtrip",
		IDs:  map[string]string{"spotify": "pl1"},
		Songs: []Song{
			{Title: "Breathe", Artist: "Pink Floyd", IDs: map[string]string{"spotify": "s1"}},
		},
	}

	clone := original.Clone()
	clone.Songs[0].Title = "changed"
	clone.Songs[0].IDs["spotify"] = "changed"
	clone.IDs["spotify"] = "changed"

	require.Equal(t, "Breathe", original.Songs[0].Title)
	require.Equal(t, "s1", original.Songs[0].IDs["spotify"])
	require.Equal(t, "pl1", original.IDs["spotify"])
}

func TestTotalSongs(t *testing.T) {
	playlists := []Playlist{
		{Name: "A", Songs: []Song{{Title: "1"}, {Title: "2"}}},
		{Name: "B"},
		{Name: "C", Songs: []Song{{Title: "3"}}},
	}
	require.Equal(t, 3, TotalSongs(playlists))
}
