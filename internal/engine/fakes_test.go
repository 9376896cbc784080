package engine

import (
	"context"
	"sync"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

type fakeInput struct {
	name   string
	modes  plugin.Modes
	fields []plugin.SettingField
	run    func(ctx context.Context, s plugin.Settings) (*plugin.InputResult, error)
}

func (f *fakeInput) Info() plugin.Info {
	modes := f.modes
	if !modes.Playlists && !modes.Songs {
		modes = plugin.Modes{Playlists: true}
	}
	return plugin.Info{Name: f.name, Category: plugin.CategoryInput, Version: "1.0.0", Settings: f.fields, Modes: modes}
}

func (f *fakeInput) Test(context.Context, plugin.Settings) error { return nil }

func (f *fakeInput) Run(ctx context.Context, s plugin.Settings) (*plugin.InputResult, error) {
	return f.run(ctx, s)
}

type fakeModifier struct {
	name  string
	modes plugin.Modes
	run   func(ctx context.Context, s plugin.Settings, current []model.Playlist) ([]model.Playlist, error)
}

func (f *fakeModifier) Info() plugin.Info {
	modes := f.modes
	if !modes.Playlists && !modes.Songs {
		modes = plugin.Modes{Playlists: true, Songs: true}
	}
	return plugin.Info{Name: f.name, Category: plugin.CategoryModifier, Version: "1.0.0", Modes: modes}
}

func (f *fakeModifier) Test(context.Context, plugin.Settings) error { return nil }

func (f *fakeModifier) Run(ctx context.Context, s plugin.Settings, current []model.Playlist) ([]model.Playlist, error) {
	return f.run(ctx, s, current)
}

type fakeOutput struct {
	name  string
	modes plugin.Modes
	run   func(ctx context.Context, s plugin.Settings, final []model.Playlist) error

	mu       sync.Mutex
	received [][]model.Playlist
}

func (f *fakeOutput) Info() plugin.Info {
	modes := f.modes
	if !modes.Playlists && !modes.Songs {
		modes = plugin.Modes{Playlists: true, Songs: true}
	}
	return plugin.Info{Name: f.name, Category: plugin.CategoryOutput, Version: "1.0.0", Modes: modes}
}

func (f *fakeOutput) Test(context.Context, plugin.Settings) error { return nil }

func (f *fakeOutput) Run(ctx context.Context, s plugin.Settings, final []model.Playlist) error {
	f.mu.Lock()
	f.received = append(f.received, final)
	f.mu.Unlock()
	if f.run != nil {
		return f.run(ctx, s, final)
	}
	return nil
}

func (f *fakeOutput) lastReceived() []model.Playlist {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.received) == 0 {
		return nil
	}
	return f.received[len(f.received)-1]
}

type memRecords struct {
	mu      sync.Mutex
	records []*RunRecord
}

func (m *memRecords) AppendRunRecord(rec *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memRecords) all() []*RunRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*RunRecord(nil), m.records...)
}

func staticInput(name string, playlists ...model.Playlist) *fakeInput {
	return &fakeInput{
		name: name,
		run: func(context.Context, plugin.Settings) (*plugin.InputResult, error) {
			return &plugin.InputResult{Playlists: model.ClonePlaylists(playlists)}, nil
		},
	}
}
