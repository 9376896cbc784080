package applet

import (
	"gopkg.in/yaml.v3"
)

// StageKind names one of the four stage lists in an applet.
type StageKind string

const (
	KindInput    StageKind = "inputs"
	KindModifier StageKind = "modifiers"
	KindOutput   StageKind = "outputs"
	KindTrigger  StageKind = "triggers"
)

// Stage binds a plugin into an applet with instance-level settings. The
// settings are owned by the applet and destroyed with it.
type Stage struct {
	Plugin   string            `yaml:"plugin" validate:"required,plugin_name"`
	Settings map[string]string `yaml:"settings,omitempty"`
}

// Applet is a user-defined pipeline: ordered inputs, modifiers, outputs and
// triggers. The engine treats the definition as read-only during a run;
// mutations happen only through the explicit edit operations.
type Applet struct {
	ID        string  `yaml:"id" validate:"required,applet_id"`
	Name      string  `yaml:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Enabled   bool    `yaml:"enabled"`
	Inputs    []Stage `yaml:"inputs" validate:"required,min=1,dive"`
	Modifiers []Stage `yaml:"modifiers,omitempty" validate:"omitempty,dive"`
	Outputs   []Stage `yaml:"outputs" validate:"required,min=1,dive"`
	Triggers  []Stage `yaml:"triggers,omitempty" validate:"omitempty,dive"`
}

// UnmarshalYAML defaults Enabled to true when the key is omitted.
func (a *Applet) UnmarshalYAML(value *yaml.Node) error {
	type rawApplet struct {
		ID        string  `yaml:"id"`
		Name      string  `yaml:"name"`
		Enabled   *bool   `yaml:"enabled"`
		Inputs    []Stage `yaml:"inputs"`
		Modifiers []Stage `yaml:"modifiers"`
		Outputs   []Stage `yaml:"outputs"`
		Triggers  []Stage `yaml:"triggers"`
	}

	var raw rawApplet
	if err := value.Decode(&raw); err != nil {
		return err
	}

	a.ID = raw.ID
	a.Name = raw.Name
	a.Inputs = raw.Inputs
	a.Modifiers = raw.Modifiers
	a.Outputs = raw.Outputs
	a.Triggers = raw.Triggers
	if raw.Enabled != nil {
		a.Enabled = *raw.Enabled
	} else {
		a.Enabled = true
	}

	return nil
}

// DisplayName returns the human-facing name, falling back to the ID.
func (a *Applet) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Clone returns a deep copy of the applet definition.
func (a *Applet) Clone() *Applet {
	out := *a
	out.Inputs = cloneStages(a.Inputs)
	out.Modifiers = cloneStages(a.Modifiers)
	out.Outputs = cloneStages(a.Outputs)
	out.Triggers = cloneStages(a.Triggers)
	return &out
}

func cloneStages(stages []Stage) []Stage {
	if stages == nil {
		return nil
	}
	out := make([]Stage, len(stages))
	for i, s := range stages {
		out[i] = s
		if s.Settings != nil {
			out[i].Settings = make(map[string]string, len(s.Settings))
			for k, v := range s.Settings {
				out[i].Settings[k] = v
			}
		}
	}
	return out
}

func (a *Applet) stagesFor(kind StageKind) *[]Stage {
	switch kind {
	case KindInput:
		return &a.Inputs
	case KindModifier:
		return &a.Modifiers
	case KindOutput:
		return &a.Outputs
	case KindTrigger:
		return &a.Triggers
	}
	return nil
}
