package csvimport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MauliQT/resonate/internal/plugin"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportSingleFileNamedAfterFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Liked_Songs.csv",
		"Track Name,Artist Name,Album Name,Track ID\n"+
			"Halcyon,Aurora;Icarus,Origins,sp123\n"+
			",Nobody,Empty,sp999\n"+
			"Nightcall,Kavinsky,OutRun,\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{"path": path})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 1)

	pl := res.Playlists[0]
	require.Equal(t, "Liked_Songs", pl.Name)
	require.Len(t, pl.Songs, 2)

	first := pl.Songs[0]
	require.Equal(t, "Halcyon", first.Title)
	require.Equal(t, "Aurora", first.Artist)
	require.Equal(t, []string{"Aurora", "Icarus"}, first.Artists)
	require.Equal(t, "Origins", first.Album)
	require.Equal(t, map[string]string{"spotify": "sp123"}, first.IDs)

	require.Equal(t, "Nightcall", pl.Songs[1].Title)
	require.Nil(t, pl.Songs[1].IDs)
}

func TestImportFolderOnePlaylistPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "B_List.csv", "Track Name,Artist Name\nSong B,Artist B\n")
	writeFile(t, dir, "A_List.csv", "Track Name,Artist Name\nSong A,Artist A\n")
	writeFile(t, dir, "notes.txt", "not a csv")
	writeFile(t, dir, "nested/C_List.csv", "Track Name,Artist Name\nSong C,Artist C\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{"path": dir})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 2)
	require.Equal(t, "A_List", res.Playlists[0].Name)
	require.Equal(t, "B_List", res.Playlists[1].Name)
}

func TestImportFolderIncludesSubfolders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Top.csv", "Track Name,Artist Name\nSong T,Artist T\n")
	writeFile(t, dir, "nested/Deep.csv", "Track Name,Artist Name\nSong D,Artist D\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":               dir,
		"include_subfolders": "Yes",
	})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 2)
}

func TestImportMultiPlaylistColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.csv",
		"playlist,title,artists,album,date,isrc,location,spotify_id,tidal_id\n"+
			"Morning,Sunrise,Alba,,,,,,td1\n"+
			"Evening,Sunset,Crepus,,,,,sp2,\n"+
			"Morning,Coffee,Barista,,,,,,\n"+
			",Orphan,Nobody,,,,,,\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":            path,
		"playlist_source": "From CSV column",
		"col_title":       "title",
		"col_artists":     "artists",
		"col_spotify_id":  "spotify_id",
	})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 2)

	require.Equal(t, "Morning", res.Playlists[0].Name)
	require.Len(t, res.Playlists[0].Songs, 2)
	require.Equal(t, map[string]string{"tidal": "td1"}, res.Playlists[0].Songs[0].IDs)

	require.Equal(t, "Evening", res.Playlists[1].Name)
	require.Equal(t, map[string]string{"spotify": "sp2"}, res.Playlists[1].Songs[0].IDs)
}

func TestImportWithoutHeaderUsesPositionalColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "NoHeader.csv",
		"Halcyon,Aurora,Origins\n"+
			"\n"+
			"Nightcall,Kavinsky\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":       path,
		"has_header": "No",
	})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 1)
	require.Len(t, res.Playlists[0].Songs, 2)
	require.Equal(t, "Origins", res.Playlists[0].Songs[0].Album)
}

func TestImportMultiPlaylistWithoutHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "all.csv",
		"Morning,Sunrise,Alba\n"+
			"Evening,Sunset,Crepus\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":            path,
		"playlist_source": "From CSV column",
		"has_header":      "No",
	})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 2)
	require.Equal(t, "Sunrise", res.Playlists[0].Songs[0].Title)
	require.Equal(t, "Alba", res.Playlists[0].Songs[0].Artist)
}

func TestImportAppliesNameFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Work.csv", "Track Name,Artist Name\nFocus,Deep\n")
	writeFile(t, dir, "Party.csv", "Track Name,Artist Name\nLoud,Noise\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":   dir,
		"filter": "^Work",
	})
	require.NoError(t, err)
	require.Len(t, res.Playlists, 1)
	require.Equal(t, "Work", res.Playlists[0].Name)
}

func TestImportRejectsBadFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "List.csv", "Track Name,Artist Name\nSong,Artist\n")

	_, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":   path,
		"filter": "[",
	})
	require.Error(t, err)
}

func TestImportCustomDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Semi.csv", "Track Name;Artist Name\nSong;Artist\n")

	res, err := New(nil).Run(context.Background(), plugin.Settings{
		"path":      path,
		"delimiter": ";",
	})
	require.NoError(t, err)
	require.Equal(t, "Song", res.Playlists[0].Songs[0].Title)
}

func TestImportMissingPath(t *testing.T) {
	p := New(nil)
	_, err := p.Run(context.Background(), plugin.Settings{})
	require.Error(t, err)

	_, err = p.Run(context.Background(), plugin.Settings{"path": "/nonexistent/file.csv"})
	require.Error(t, err)

	require.Error(t, p.Test(context.Background(), plugin.Settings{"path": "/nonexistent/file.csv"}))
}

func TestInfoIsWellFormed(t *testing.T) {
	require.NoError(t, New(nil).Info().Validate())
}
