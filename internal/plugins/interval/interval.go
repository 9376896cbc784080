// Package interval provides a trigger plugin that fires at a fixed period.
package interval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MauliQT/resonate/internal/plugin"
)

// minInterval bounds how often an applet may fire.
const minInterval = 10 * time.Second

type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		Name:        "interval",
		Category:    plugin.CategoryTrigger,
		Version:     "1.0.0",
		Description: "run the applet every n minutes",
		Settings: []plugin.SettingField{
			{Name: "minutes", Label: "Interval (minutes)", Type: plugin.FieldNumber, Default: "60", Required: true},
		},
	}
}

// Test verifies the configured interval parses and meets the minimum bound.
func (p *Plugin) Test(_ context.Context, settings plugin.Settings) error {
	_, err := parseInterval(settings)
	return err
}

// Start launches a ticker that calls fire once per interval. The first fire
// happens after one full interval, not at start.
func (p *Plugin) Start(ctx context.Context, settings plugin.Settings, fire func()) (plugin.TriggerHandle, error) {
	interval, err := parseInterval(settings)
	if err != nil {
		return nil, err
	}

	h := &handle{done: make(chan struct{})}
	go tick(ctx, h.done, interval, fire)
	return h, nil
}

func tick(ctx context.Context, done <-chan struct{}, interval time.Duration, fire func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			fire()
		}
	}
}

type handle struct {
	once sync.Once
	done chan struct{}
}

func (h *handle) Stop() {
	h.once.Do(func() { close(h.done) })
}

func parseInterval(settings plugin.Settings) (time.Duration, error) {
	minutes := settings.Float("minutes", 0)
	if minutes <= 0 {
		return 0, fmt.Errorf("interval minutes must be a positive number, got '%s'", settings.Get("minutes"))
	}

	interval := time.Duration(minutes * float64(time.Minute))
	if interval < minInterval {
		return 0, fmt.Errorf("interval %s is below the minimum of %s", interval, minInterval)
	}
	return interval, nil
}
