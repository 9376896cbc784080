package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

func TestDedupUnifiesWithinEachPlaylist(t *testing.T) {
	p := New()

	current := []model.Playlist{
		{
			Name: "Mix",
			Songs: []model.Song{
				{Title: "Halcyon", Artist: "Aurora", IDs: map[string]string{"spotify": "sp1"}},
				{Title: "halcyón", Artist: "AURORA", IDs: map[string]string{"tidal": "td1"}},
				{Title: "Nightcall", Artist: "Kavinsky"},
			},
		},
		{
			Name:  "Other",
			Songs: []model.Song{{Title: "Halcyon", Artist: "Aurora"}},
		},
	}

	out, err := p.Run(context.Background(), nil, current)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.Len(t, out[0].Songs, 2)
	require.Equal(t, "Halcyon", out[0].Songs[0].Title)
	require.Equal(t, map[string]string{"spotify": "sp1", "tidal": "td1"}, out[0].Songs[0].IDs)

	// Duplicates are scoped per playlist, never across playlists.
	require.Len(t, out[1].Songs, 1)
}

func TestDedupIsIdempotent(t *testing.T) {
	p := New()

	current := []model.Playlist{{
		Name: "Mix",
		Songs: []model.Song{
			{Title: "A", Artist: "X"},
			{Title: "A", Artist: "X"},
		},
	}}

	once, err := p.Run(context.Background(), nil, current)
	require.NoError(t, err)
	twice, err := p.Run(context.Background(), nil, once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestInfoIsWellFormed(t *testing.T) {
	require.NoError(t, New().Info().Validate())
	require.NoError(t, New().Test(context.Background(), plugin.Settings{}))
}
