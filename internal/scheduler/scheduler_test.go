package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MauliQT/resonate/internal/applet"
	"github.com/MauliQT/resonate/internal/engine"
	"github.com/MauliQT/resonate/internal/plugin"
	"github.com/MauliQT/resonate/internal/settings"
)

type fakeTrigger struct {
	name   string
	fields []plugin.SettingField

	mu      sync.Mutex
	started []*fakeHandle
}

func (f *fakeTrigger) Info() plugin.Info {
	return plugin.Info{Name: f.name, Category: plugin.CategoryTrigger, Version: "1.0.0", Settings: f.fields}
}

func (f *fakeTrigger) Test(context.Context, plugin.Settings) error { return nil }

func (f *fakeTrigger) Start(ctx context.Context, s plugin.Settings, fire func()) (plugin.TriggerHandle, error) {
	h := &fakeHandle{fire: fire, settings: s}
	f.mu.Lock()
	f.started = append(f.started, h)
	f.mu.Unlock()
	return h, nil
}

func (f *fakeTrigger) handles() []*fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeHandle(nil), f.started...)
}

type fakeHandle struct {
	fire     func()
	settings plugin.Settings
	stopped  atomic.Bool
}

func (h *fakeHandle) Stop() { h.stopped.Store(true) }

type fakeRunner struct {
	mu        sync.Mutex
	runs      []string
	cancelled []string
	err       error
	entered   chan struct{}
	block     chan struct{}
}

func (r *fakeRunner) Run(ctx context.Context, a *applet.Applet) (*engine.RunRecord, error) {
	if r.entered != nil {
		close(r.entered)
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.runs = append(r.runs, a.ID)
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &engine.RunRecord{AppletID: a.ID, State: engine.StateCompleted}, nil
}

func (r *fakeRunner) Cancel(appletID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, appletID)
	return true
}

func (r *fakeRunner) ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

type mapSource struct {
	mu      sync.Mutex
	applets map[string]*applet.Applet
}

func (m *mapSource) Applet(id string) (*applet.Applet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applets[id]
	if !ok {
		return nil, fmt.Errorf("applet '%s' not found", id)
	}
	return a.Clone(), nil
}

func testApplet(id string, enabled bool, triggers ...applet.Stage) *applet.Applet {
	return &applet.Applet{
		ID:       id,
		Name:     "Test " + id,
		Enabled:  enabled,
		Inputs:   []applet.Stage{{Plugin: "src"}},
		Outputs:  []applet.Stage{{Plugin: "sink"}},
		Triggers: append([]applet.Stage(nil), triggers...),
	}
}

func newTestScheduler(t *testing.T, runner Runner, source AppletSource, triggers ...plugin.Plugin) *Scheduler {
	t.Helper()

	registry := plugin.NewRegistry(nil)
	require.Empty(t, registry.Discover(triggers...))

	s := New(registry, settings.NewResolver(nil), runner, source, nil)
	s.Start(context.Background())
	t.Cleanup(s.Stop)
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition never became true")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSchedulerRunNowExecutesApplet(t *testing.T) {
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"sync-likes": testApplet("sync-likes", true),
	}}
	s := newTestScheduler(t, runner, source)

	require.NoError(t, s.RunNow("sync-likes"))

	waitFor(t, func() bool { return len(runner.ran()) == 1 })
	require.Equal(t, []string{"sync-likes"}, runner.ran())
}

func TestSchedulerRunNowIgnoresEnabledFlag(t *testing.T) {
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"paused": testApplet("paused", false),
	}}
	s := newTestScheduler(t, runner, source)

	require.NoError(t, s.RunNow("paused"))

	waitFor(t, func() bool { return len(runner.ran()) == 1 })
}

func TestSchedulerEnableStartsTriggers(t *testing.T) {
	trigger := &fakeTrigger{
		name:   "clock",
		fields: []plugin.SettingField{{Name: "interval", Default: "60"}},
	}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true, applet.Stage{Plugin: "clock"}),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	require.NoError(t, s.SetEnabled("nightly", true))

	handles := trigger.handles()
	require.Len(t, handles, 1)
	require.Equal(t, "60", handles[0].settings["interval"])

	// A trigger fire flows through the queue into the runner.
	handles[0].fire()
	waitFor(t, func() bool { return len(runner.ran()) == 1 })
	require.Equal(t, []string{"nightly"}, runner.ran())
}

func TestSchedulerEnableIsIdempotent(t *testing.T) {
	trigger := &fakeTrigger{name: "clock"}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true, applet.Stage{Plugin: "clock"}),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	require.NoError(t, s.SetEnabled("nightly", true))
	require.NoError(t, s.SetEnabled("nightly", true))
	require.Len(t, trigger.handles(), 1)

	require.NoError(t, s.SetEnabled("nightly", false))
	require.NoError(t, s.SetEnabled("nightly", false))
	require.True(t, trigger.handles()[0].stopped.Load())
}

func TestSchedulerDisableStopsTriggers(t *testing.T) {
	trigger := &fakeTrigger{name: "clock"}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true, applet.Stage{Plugin: "clock"}),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	require.NoError(t, s.SetEnabled("nightly", true))
	require.NoError(t, s.SetEnabled("nightly", false))

	handles := trigger.handles()
	require.Len(t, handles, 1)
	require.True(t, handles[0].stopped.Load())
}

func TestSchedulerEnableFailsOnMissingRequiredSetting(t *testing.T) {
	trigger := &fakeTrigger{
		name:   "clock",
		fields: []plugin.SettingField{{Name: "interval", Required: true}},
	}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true, applet.Stage{Plugin: "clock"}),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	err := s.SetEnabled("nightly", true)
	var missing *settings.MissingRequiredSettingError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "clock", missing.Plugin)
	require.Empty(t, trigger.handles())
}

func TestSchedulerEnableFailsOnUnknownTrigger(t *testing.T) {
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true, applet.Stage{Plugin: "ghost"}),
	}}
	s := newTestScheduler(t, runner, source)

	err := s.SetEnabled("nightly", true)
	require.ErrorIs(t, err, plugin.ErrPluginNotFound{Name: "ghost"})
}

func TestSchedulerEnableRollsBackEarlierHandles(t *testing.T) {
	trigger := &fakeTrigger{name: "clock"}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true,
			applet.Stage{Plugin: "clock"},
			applet.Stage{Plugin: "ghost"},
		),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	require.Error(t, s.SetEnabled("nightly", true))

	handles := trigger.handles()
	require.Len(t, handles, 1)
	require.True(t, handles[0].stopped.Load())
}

func TestSchedulerDropsFireForDisabledApplet(t *testing.T) {
	trigger := &fakeTrigger{name: "clock"}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"nightly": testApplet("nightly", true, applet.Stage{Plugin: "clock"}),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	require.NoError(t, s.SetEnabled("nightly", true))
	fire := trigger.handles()[0].fire

	// Disable, then deliver a stale fire from the stopped trigger.
	require.NoError(t, s.SetEnabled("nightly", false))
	source.mu.Lock()
	source.applets["nightly"].Enabled = false
	source.mu.Unlock()

	fire()
	require.NoError(t, s.RunNow("nightly"))

	waitFor(t, func() bool { return len(runner.ran()) == 1 })
	require.Equal(t, []string{"nightly"}, runner.ran())
}

func TestSchedulerToleratesCoalescedRuns(t *testing.T) {
	runner := &fakeRunner{err: engine.ErrRunInFlight}
	source := &mapSource{applets: map[string]*applet.Applet{
		"busy": testApplet("busy", true),
	}}
	s := newTestScheduler(t, runner, source)

	require.NoError(t, s.RunNow("busy"))
	require.NoError(t, s.RunNow("busy"))

	waitFor(t, func() bool { return len(runner.ran()) == 2 })
}

func TestSchedulerForgetStopsTriggersAndCancelsRun(t *testing.T) {
	trigger := &fakeTrigger{name: "clock"}
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{
		"doomed": testApplet("doomed", true, applet.Stage{Plugin: "clock"}),
	}}
	s := newTestScheduler(t, runner, source, trigger)

	require.NoError(t, s.SetEnabled("doomed", true))
	s.Forget("doomed")

	require.True(t, trigger.handles()[0].stopped.Load())
	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Equal(t, []string{"doomed"}, runner.cancelled)
}

func TestSchedulerStopWaitsForInFlightRuns(t *testing.T) {
	runner := &fakeRunner{entered: make(chan struct{}), block: make(chan struct{})}
	source := &mapSource{applets: map[string]*applet.Applet{
		"slow": testApplet("slow", true),
	}}

	registry := plugin.NewRegistry(nil)
	s := New(registry, settings.NewResolver(nil), runner, source, nil)
	s.Start(context.Background())

	require.NoError(t, s.RunNow("slow"))
	<-runner.entered

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned before the run finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(runner.block)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	require.Equal(t, []string{"slow"}, runner.ran())
}

func TestSchedulerRejectsFireWhenStopped(t *testing.T) {
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{}}

	s := New(plugin.NewRegistry(nil), settings.NewResolver(nil), runner, source, nil)
	require.Error(t, s.RunNow("anything"))
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	runner := &fakeRunner{}
	source := &mapSource{applets: map[string]*applet.Applet{}}

	s := New(plugin.NewRegistry(nil), settings.NewResolver(nil), runner, source, nil)
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
