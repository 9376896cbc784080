package namefilter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

func TestFilterKeepsMatchingPlaylists(t *testing.T) {
	p := New()

	current := []model.Playlist{
		{Name: "Work Focus"},
		{Name: "Party"},
		{Name: "Workout"},
	}

	out, err := p.Run(context.Background(), plugin.Settings{"pattern": "^Work"}, current)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "Work Focus", out[0].Name)
	require.Equal(t, "Workout", out[1].Name)
}

func TestFilterRejectsInvalidPattern(t *testing.T) {
	p := New()

	_, err := p.Run(context.Background(), plugin.Settings{"pattern": "["}, nil)
	require.Error(t, err)
	require.Error(t, p.Test(context.Background(), plugin.Settings{"pattern": "["}))
	require.NoError(t, p.Test(context.Background(), plugin.Settings{"pattern": "^Work"}))
}

func TestInfoIsWellFormed(t *testing.T) {
	require.NoError(t, New().Info().Validate())
}
