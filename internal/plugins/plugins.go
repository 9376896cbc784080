// Package plugins bundles the plugins that ship with the daemon.
package plugins

import (
	"github.com/MauliQT/resonate/internal/logger"
	"github.com/MauliQT/resonate/internal/plugin"
	"github.com/MauliQT/resonate/internal/plugins/csvexport"
	"github.com/MauliQT/resonate/internal/plugins/csvimport"
	"github.com/MauliQT/resonate/internal/plugins/dedup"
	"github.com/MauliQT/resonate/internal/plugins/interval"
	"github.com/MauliQT/resonate/internal/plugins/namefilter"
)

// Bundled returns the built-in plugin set for registry discovery.
func Bundled(log *logger.Logger) []plugin.Plugin {
	return []plugin.Plugin{
		csvimport.New(log),
		dedup.New(),
		namefilter.New(),
		csvexport.New(),
		interval.New(),
	}
}
