package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MauliQT/resonate/internal/applet"
	"github.com/MauliQT/resonate/internal/engine"
	"github.com/MauliQT/resonate/internal/logger"
	"github.com/MauliQT/resonate/internal/plugin"
	"github.com/MauliQT/resonate/internal/settings"
)

// Runner is the engine surface the scheduler depends on.
type Runner interface {
	Run(ctx context.Context, a *applet.Applet) (*engine.RunRecord, error)
	Cancel(appletID string) bool
}

// AppletSource provides applet definitions by id. The store implements it.
type AppletSource interface {
	Applet(id string) (*applet.Applet, error)
}

// fireRequest is the message a trigger (or a manual run) posts to the queue.
// Triggers never invoke the engine directly; the queue preserves the
// at-most-one-concurrent-run invariant under concurrent fires.
type fireRequest struct {
	appletID string
	manual   bool
}

// Scheduler hosts active trigger instances and turns their fires into engine
// runs. Trigger instances live while the owning applet is enabled.
type Scheduler struct {
	registry *plugin.Registry
	resolver *settings.Resolver
	runner   Runner
	applets  AppletSource
	logger   *logger.Logger

	queue chan fireRequest

	mu      sync.Mutex
	hosts   map[string][]plugin.TriggerHandle
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	runs sync.WaitGroup
}

// New creates a stopped scheduler.
func New(registry *plugin.Registry, resolver *settings.Resolver, runner Runner, applets AppletSource, log *logger.Logger) *Scheduler {
	return &Scheduler{
		registry: registry,
		resolver: resolver,
		runner:   runner,
		applets:  applets,
		logger:   log,
		queue:    make(chan fireRequest, 64),
		hosts:    make(map[string][]plugin.TriggerHandle),
	}
}

// Start launches the dispatch loop. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	go s.dispatch()
}

// Stop halts all hosted triggers and the dispatch loop, then waits for
// in-flight runs started by the scheduler to reach a terminal state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	for id, handles := range s.hosts {
		for _, h := range handles {
			h.Stop()
		}
		delete(s.hosts, id)
	}
	s.cancel()
	s.mu.Unlock()

	s.runs.Wait()
}

// SetEnabled starts or stops the applet's trigger instances. It is
// idempotent: enabling an already-enabled applet or disabling an
// already-disabled one is a no-op.
func (s *Scheduler) SetEnabled(appletID string, enabled bool) error {
	if !enabled {
		s.stopTriggers(appletID)
		return nil
	}

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.New("scheduler is not running")
	}
	if _, hosted := s.hosts[appletID]; hosted {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	a, err := s.applets.Applet(appletID)
	if err != nil {
		return fmt.Errorf("load applet '%s': %w", appletID, err)
	}

	handles, err := s.startTriggers(a)
	if err != nil {
		for _, h := range handles {
			h.Stop()
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, hosted := s.hosts[appletID]; hosted || !s.started {
		// Lost a race with a concurrent enable or a Stop; roll back.
		for _, h := range handles {
			h.Stop()
		}
		return nil
	}
	s.hosts[appletID] = handles
	return nil
}

// RunNow requests an immediate run. It is equivalent to a trigger fire and
// obeys the same coalescing invariant.
func (s *Scheduler) RunNow(appletID string) error {
	return s.post(fireRequest{appletID: appletID, manual: true})
}

// Forget disables an applet's triggers and cancels any in-flight run. Used
// when the applet is deleted.
func (s *Scheduler) Forget(appletID string) {
	s.stopTriggers(appletID)
	s.runner.Cancel(appletID)
}

func (s *Scheduler) startTriggers(a *applet.Applet) ([]plugin.TriggerHandle, error) {
	// The snapshot pins trigger implementations the same way a run pins
	// its pipeline plugins.
	snap := s.registry.Snapshot()

	var handles []plugin.TriggerHandle
	for _, stage := range a.Triggers {
		tr, err := snap.Trigger(stage.Plugin)
		if err != nil {
			return handles, err
		}

		resolved, err := s.resolver.Resolve(tr.Info(), stage.Settings)
		if err != nil {
			return handles, err
		}

		appletID := a.ID
		handle, err := tr.Start(s.ctx, resolved, func() {
			if postErr := s.post(fireRequest{appletID: appletID}); postErr != nil {
				s.logWarn(appletID, postErr.Error())
			}
		})
		if err != nil {
			return handles, fmt.Errorf("start trigger '%s': %w", stage.Plugin, err)
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func (s *Scheduler) stopTriggers(appletID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.hosts[appletID] {
		h.Stop()
	}
	delete(s.hosts, appletID)
}

func (s *Scheduler) post(req fireRequest) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("scheduler is not running")
	}

	select {
	case s.queue <- req:
		return nil
	default:
		return fmt.Errorf("fire queue full, dropping request for applet '%s'", req.appletID)
	}
}

func (s *Scheduler) dispatch() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case req := <-s.queue:
			s.handleFire(req)
		}
	}
}

func (s *Scheduler) handleFire(req fireRequest) {
	a, err := s.applets.Applet(req.appletID)
	if err != nil {
		s.logWarn(req.appletID, fmt.Sprintf("dropping fire: %v", err))
		return
	}

	// Trigger fires for a disabled applet are stale (the trigger is being
	// stopped); manual runs are honoured regardless of the enabled flag.
	if !a.Enabled && !req.manual {
		s.logWarn(req.appletID, "dropping fire: applet is disabled")
		return
	}

	// Each run gets its own goroutine so one applet's slow stage never
	// blocks another applet's fire. The engine coalesces duplicates.
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.runner.Run(s.ctx, a); err != nil {
			if errors.Is(err, engine.ErrRunInFlight) {
				s.logWarn(a.ID, "fire coalesced: run already in flight")
				return
			}
			s.logError(a.ID, err, "run failed to record")
		}
	}()
}

func (s *Scheduler) logWarn(appletID, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.WithApplet(appletID).Warn(msg)
}

func (s *Scheduler) logError(appletID string, err error, msg string) {
	if s.logger == nil {
		return
	}
	s.logger.WithApplet(appletID).Error(err, msg)
}
