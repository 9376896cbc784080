package plugin

import (
	"context"
	"fmt"
	"strings"

	"github.com/MauliQT/resonate/internal/model"
)

// Category identifies the role a plugin plays inside an applet pipeline.
type Category string

const (
	CategoryInput    Category = "input"
	CategoryModifier Category = "modifier"
	CategoryOutput   Category = "output"
	CategoryTrigger  Category = "trigger"
)

func (c Category) valid() bool {
	switch c {
	case CategoryInput, CategoryModifier, CategoryOutput, CategoryTrigger:
		return true
	}
	return false
}

// FieldType describes how a settings field is rendered and parsed.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldRadio  FieldType = "radio"
)

// SettingField is one entry in a plugin's ordered settings schema.
type SettingField struct {
	Name     string
	Label    string
	Type     FieldType
	Options  []string
	Default  string
	Required bool
}

// Modes declares which data shapes a plugin can operate on.
type Modes struct {
	Playlists bool
	Songs     bool
}

// Info is the immutable plugin descriptor captured at registration.
type Info struct {
	Name        string
	Category    Category
	Version     string
	Description string
	Settings    []SettingField
	Modes       Modes
}

// Validate ensures the descriptor is well-formed enough to register.
func (i Info) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("plugin descriptor requires a non-empty name")
	}
	if i.Category == "" {
		return fmt.Errorf("plugin '%s' descriptor missing category", i.Name)
	}
	if !i.Category.valid() {
		return fmt.Errorf("plugin '%s' has unknown category '%s'", i.Name, i.Category)
	}
	if i.Category != CategoryTrigger && !i.Modes.Playlists && !i.Modes.Songs {
		return fmt.Errorf("plugin '%s' must support playlists mode, songs mode, or both", i.Name)
	}
	seen := make(map[string]struct{}, len(i.Settings))
	for _, field := range i.Settings {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("plugin '%s' declares a settings field with an empty name", i.Name)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("plugin '%s' declares settings field '%s' more than once", i.Name, field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}

// Plugin is the base contract every category shares.
type Plugin interface {
	// Info returns the plugin's descriptor. It must be stable across calls.
	Info() Info

	// Test validates connectivity and credentials without side effects.
	// It is used by the UI collaborator, never by the engine's run path.
	Test(ctx context.Context, settings Settings) error
}

// InputResult is what an input stage produces. Playlists-mode inputs fill
// Playlists; songs-mode inputs fill Songs plus the synthetic playlist name.
type InputResult struct {
	Playlists []model.Playlist
	Songs     []model.Song
	SongsName string
}

// Input produces playlists or songs from an external service.
type Input interface {
	Plugin
	Run(ctx context.Context, settings Settings) (*InputResult, error)
}

// Modifier consumes the current working list and returns its replacement.
// Side effects are limited to the in-memory list by contract.
type Modifier interface {
	Plugin
	Run(ctx context.Context, settings Settings, current []model.Playlist) ([]model.Playlist, error)
}

// Output writes the final working list to an external service.
type Output interface {
	Plugin
	Run(ctx context.Context, settings Settings, final []model.Playlist) error
}

// Trigger decides when the owning applet should run. Start must not block;
// the fire callback carries the applet binding supplied by the scheduler.
// Each Start returns an independent handle so one registered trigger plugin
// can serve many applets.
type Trigger interface {
	Plugin
	Start(ctx context.Context, settings Settings, fire func()) (TriggerHandle, error)
}

// TriggerHandle stops one started trigger instance. Stop must be idempotent.
type TriggerHandle interface {
	Stop()
}
