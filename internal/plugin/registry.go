package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/MauliQT/resonate/internal/logger"
	resonateerrors "github.com/MauliQT/resonate/pkg/errors"
)

// Registry holds the discovered plugin set. It is read-mostly process-wide
// state: rebuilt only by an explicit Rescan, never while a run is in flight.
// Runs capture their own plugin references through Snapshot at start.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	infos   map[string]Info
	logger  *logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		infos:   make(map[string]Info),
		logger:  log,
	}
}

// Discover registers the supplied plugins. A malformed descriptor (missing
// category, duplicate name, empty name) excludes that plugin and is reported
// in the returned slice; it never aborts discovery of the others.
func (r *Registry) Discover(sources ...Plugin) []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerAll(sources)
}

// Rescan atomically replaces the registry contents with a fresh discovery
// pass over sources. Existing Snapshot holders are unaffected.
func (r *Registry) Rescan(sources ...Plugin) []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plugins = make(map[string]Plugin, len(sources))
	r.infos = make(map[string]Info, len(sources))
	return r.registerAll(sources)
}

func (r *Registry) registerAll(sources []Plugin) []error {
	var issues []error
	for _, p := range sources {
		if err := r.register(p); err != nil {
			issues = append(issues, err)
			r.logError(err, "plugin excluded from registry")
		}
	}
	return issues
}

func (r *Registry) register(p Plugin) error {
	if p == nil {
		return resonateerrors.NewRegistrationError("", fmt.Errorf("plugin is nil"))
	}

	info := p.Info()
	if err := info.Validate(); err != nil {
		return resonateerrors.NewRegistrationError(info.Name, err)
	}
	if _, exists := r.plugins[info.Name]; exists {
		return resonateerrors.NewRegistrationError(info.Name, fmt.Errorf("plugin already registered"))
	}

	r.plugins[info.Name] = p
	r.infos[info.Name] = info
	return nil
}

// Describe returns the descriptor for a registered plugin.
func (r *Registry) Describe(name string) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.infos[name]
	if !ok {
		return Info{}, ErrPluginNotFound{Name: name}
	}
	return info, nil
}

// List returns descriptors for all registered plugins sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.infos))
	for _, info := range r.infos {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Snapshot captures the current plugin table for use by one run. The
// snapshot is immutable, so a concurrent Rescan cannot swap plugins out
// from under an in-flight pipeline.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugins := make(map[string]Plugin, len(r.plugins))
	infos := make(map[string]Info, len(r.infos))
	for name, p := range r.plugins {
		plugins[name] = p
		infos[name] = r.infos[name]
	}
	return &Snapshot{plugins: plugins, infos: infos}
}

func (r *Registry) logError(err error, msg string) {
	if r.logger == nil {
		return
	}
	r.logger.Error(err, msg)
}

// Snapshot is a frozen view of the registry taken at run start.
type Snapshot struct {
	plugins map[string]Plugin
	infos   map[string]Info
}

// Describe returns the descriptor for a plugin in the snapshot.
func (s *Snapshot) Describe(name string) (Info, error) {
	info, ok := s.infos[name]
	if !ok {
		return Info{}, ErrPluginNotFound{Name: name}
	}
	return info, nil
}

// Plugin returns the base contract implementation registered under name,
// regardless of category. Used for connectivity tests.
func (s *Snapshot) Plugin(name string) (Plugin, error) {
	p, ok := s.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound{Name: name}
	}
	return p, nil
}

func (s *Snapshot) lookup(name string, want Category) (Plugin, error) {
	p, ok := s.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound{Name: name}
	}
	if got := s.infos[name].Category; got != want {
		return nil, ErrWrongCategory{Name: name, Want: want, Got: got}
	}
	return p, nil
}

// Input returns the input plugin registered under name.
func (s *Snapshot) Input(name string) (Input, error) {
	p, err := s.lookup(name, CategoryInput)
	if err != nil {
		return nil, err
	}
	in, ok := p.(Input)
	if !ok {
		return nil, resonateerrors.NewRegistrationError(name, fmt.Errorf("plugin does not implement the input contract"))
	}
	return in, nil
}

// Modifier returns the modifier plugin registered under name.
func (s *Snapshot) Modifier(name string) (Modifier, error) {
	p, err := s.lookup(name, CategoryModifier)
	if err != nil {
		return nil, err
	}
	mod, ok := p.(Modifier)
	if !ok {
		return nil, resonateerrors.NewRegistrationError(name, fmt.Errorf("plugin does not implement the modifier contract"))
	}
	return mod, nil
}

// Output returns the output plugin registered under name.
func (s *Snapshot) Output(name string) (Output, error) {
	p, err := s.lookup(name, CategoryOutput)
	if err != nil {
		return nil, err
	}
	out, ok := p.(Output)
	if !ok {
		return nil, resonateerrors.NewRegistrationError(name, fmt.Errorf("plugin does not implement the output contract"))
	}
	return out, nil
}

// Trigger returns the trigger plugin registered under name.
func (s *Snapshot) Trigger(name string) (Trigger, error) {
	p, err := s.lookup(name, CategoryTrigger)
	if err != nil {
		return nil, err
	}
	tr, ok := p.(Trigger)
	if !ok {
		return nil, resonateerrors.NewRegistrationError(name, fmt.Errorf("plugin does not implement the trigger contract"))
	}
	return tr, nil
}
