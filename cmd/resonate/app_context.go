package main

import (
	"fmt"

	"github.com/MauliQT/resonate/internal/engine"
	"github.com/MauliQT/resonate/internal/logger"
	"github.com/MauliQT/resonate/internal/plugin"
	"github.com/MauliQT/resonate/internal/plugins"
	"github.com/MauliQT/resonate/internal/settings"
	"github.com/MauliQT/resonate/internal/store"
)

// appContext wires the shared collaborators each command needs: the store,
// the plugin registry, the settings resolver and the engine.
type appContext struct {
	log      *logger.Logger
	store    *store.Store
	registry *plugin.Registry
	resolver *settings.Resolver
	engine   *engine.Engine
}

func newAppContext(flags *rootFlags) (*appContext, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	st, err := store.Open(flags.dbPath)
	if err != nil {
		return nil, err
	}

	registry := plugin.NewRegistry(log)
	for _, err := range registry.Discover(plugins.Bundled(log)...) {
		log.Error(err, "plugin excluded")
	}

	resolver := settings.NewResolver(st.Globals())
	eng := engine.New(registry, resolver, st.Records(), engine.Options{Logger: log})

	return &appContext{
		log:      log,
		store:    st,
		registry: registry,
		resolver: resolver,
		engine:   eng,
	}, nil
}

func (a *appContext) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error(err, "close store")
	}
}
