package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MauliQT/resonate/internal/applet"
	"github.com/MauliQT/resonate/internal/logger"
	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/normalize"
	"github.com/MauliQT/resonate/internal/plugin"
	"github.com/MauliQT/resonate/internal/settings"
	resonateerrors "github.com/MauliQT/resonate/pkg/errors"
)

var (
	// ErrRunInFlight signals that a fire was coalesced because the applet
	// already has a non-terminal run. No second RunRecord is produced.
	ErrRunInFlight = errors.New("a run for this applet is already in flight")

	// ErrAllInputsFailed ends a run when no input stage produced anything
	// to operate on.
	ErrAllInputsFailed = errors.New("all input stages failed")
)

const defaultStageTimeout = 5 * time.Minute

// Options tunes engine behaviour.
type Options struct {
	// StageTimeout bounds every plugin invocation. Zero means the default.
	StageTimeout time.Duration
	// Parallel caps concurrently executing plugin invocations across all
	// runs. Zero means unbounded.
	Parallel int
	Logger   *logger.Logger
}

// Engine runs applet pipelines to a terminal state and records the outcome.
type Engine struct {
	registry *plugin.Registry
	resolver *settings.Resolver
	records  RecordStore
	timeout  time.Duration
	pool     chan struct{}
	logger   *logger.Logger

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// New creates an Engine. The record store may be nil in tests that only
// inspect the returned record.
func New(registry *plugin.Registry, resolver *settings.Resolver, records RecordStore, opts Options) *Engine {
	timeout := opts.StageTimeout
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}

	var pool chan struct{}
	if opts.Parallel > 0 {
		pool = make(chan struct{}, opts.Parallel)
	}

	return &Engine{
		registry: registry,
		resolver: resolver,
		records:  records,
		timeout:  timeout,
		pool:     pool,
		logger:   opts.Logger,
		inflight: make(map[string]context.CancelFunc),
	}
}

// resolvedStage is one pipeline stage with its plugin reference captured from
// the registry snapshot and its settings resolved for this run.
type resolvedStage struct {
	category plugin.Category
	name     string
	info     plugin.Info
	settings plugin.Settings
	input    plugin.Input
	modifier plugin.Modifier
	output   plugin.Output
}

// Run executes the applet synchronously and returns its RunRecord. For a
// given applet at most one run may be in a non-terminal state; a concurrent
// call returns ErrRunInFlight and produces no record. Run failures land in
// the record, not in the returned error, which is reserved for coalescing
// and persistence problems.
func (e *Engine) Run(ctx context.Context, a *applet.Applet) (*RunRecord, error) {
	runCtx, err := e.acquire(ctx, a.ID)
	if err != nil {
		e.logWarn(a.ID, "trigger fire coalesced: run already in flight")
		return nil, err
	}
	defer e.release(a.ID)

	rec := &RunRecord{
		ID:        uuid.NewString(),
		AppletID:  a.ID,
		State:     StatePending,
		StartedAt: time.Now(),
	}

	// The snapshot pins plugin references for the whole run so a rescan
	// cannot swap implementations mid-pipeline.
	snap := e.registry.Snapshot()

	rec.State = StateResolvingSetting
	inputs, modifiers, outputs, err := e.resolveStages(snap, a)
	if err != nil {
		// Fail fast before any plugin executes: no partial side effects
		// land on remote services.
		return e.finish(rec, nil, err)
	}

	rec.State = StateRunningInputs
	if err := runCtx.Err(); err != nil {
		e.skipRemaining(rec, inputs, modifiers, outputs)
		return e.finish(rec, nil, err)
	}
	merged, inputErr := e.runInputs(runCtx, inputs, rec)
	if inputErr != nil {
		e.skipRemaining(rec, nil, modifiers, outputs)
		return e.finish(rec, nil, inputErr)
	}

	rec.State = StateMerging
	current := merged

	rec.State = StateRunningModifiers
	for i, st := range modifiers {
		if err := runCtx.Err(); err != nil {
			e.skipRemaining(rec, nil, modifiers[i:], outputs)
			return e.finish(rec, nil, err)
		}

		replacement, err := e.runModifier(runCtx, st, current, rec)
		if err != nil {
			// Modifiers only touch the in-memory list, so aborting here
			// loses no external state.
			e.skipRemaining(rec, nil, modifiers[i+1:], outputs)
			return e.finish(rec, nil, err)
		}
		current = replacement
	}

	rec.State = StateRunningOutputs
	if err := runCtx.Err(); err != nil {
		e.skipRemaining(rec, nil, nil, outputs)
		return e.finish(rec, nil, err)
	}
	e.runOutputs(runCtx, outputs, current, rec)

	return e.finish(rec, current, nil)
}

// Cancel requests cancellation of the in-flight run for the applet, if any.
// It takes effect at the next stage boundary; the currently executing plugin
// call is allowed to finish and its result is discarded.
func (e *Engine) Cancel(appletID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cancel, ok := e.inflight[appletID]
	if ok {
		cancel()
	}
	return ok
}

// Running reports whether the applet has a non-terminal run.
func (e *Engine) Running(appletID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[appletID]
	return ok
}

func (e *Engine) acquire(ctx context.Context, appletID string) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, running := e.inflight[appletID]; running {
		return nil, ErrRunInFlight
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.inflight[appletID] = cancel
	return runCtx, nil
}

func (e *Engine) release(appletID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cancel, ok := e.inflight[appletID]; ok {
		cancel()
		delete(e.inflight, appletID)
	}
}

func (e *Engine) resolveStages(snap *plugin.Snapshot, a *applet.Applet) (inputs, modifiers, outputs []resolvedStage, err error) {
	for _, stage := range a.Inputs {
		in, lookupErr := snap.Input(stage.Plugin)
		if lookupErr != nil {
			return nil, nil, nil, lookupErr
		}
		st, resolveErr := e.resolveOne(plugin.CategoryInput, in, stage)
		if resolveErr != nil {
			return nil, nil, nil, resolveErr
		}
		st.input = in
		inputs = append(inputs, st)
	}

	for _, stage := range a.Modifiers {
		mod, lookupErr := snap.Modifier(stage.Plugin)
		if lookupErr != nil {
			return nil, nil, nil, lookupErr
		}
		st, resolveErr := e.resolveOne(plugin.CategoryModifier, mod, stage)
		if resolveErr != nil {
			return nil, nil, nil, resolveErr
		}
		st.modifier = mod
		modifiers = append(modifiers, st)
	}

	for _, stage := range a.Outputs {
		out, lookupErr := snap.Output(stage.Plugin)
		if lookupErr != nil {
			return nil, nil, nil, lookupErr
		}
		st, resolveErr := e.resolveOne(plugin.CategoryOutput, out, stage)
		if resolveErr != nil {
			return nil, nil, nil, resolveErr
		}
		st.output = out
		outputs = append(outputs, st)
	}

	return inputs, modifiers, outputs, nil
}

func (e *Engine) resolveOne(category plugin.Category, p plugin.Plugin, stage applet.Stage) (resolvedStage, error) {
	info := p.Info()
	resolved, err := e.resolver.Resolve(info, stage.Settings)
	if err != nil {
		return resolvedStage{}, err
	}
	return resolvedStage{
		category: category,
		name:     stage.Plugin,
		info:     info,
		settings: resolved,
	}, nil
}

// runInputs executes all input stages concurrently. A single failure only
// empties that input's contribution; the run fails only when every input
// failed.
func (e *Engine) runInputs(ctx context.Context, stages []resolvedStage, rec *RunRecord) ([]model.Playlist, error) {
	results := make([]StageResult, len(stages))
	lists := make([][]model.Playlist, len(stages))

	var wg sync.WaitGroup
	for i, st := range stages {
		wg.Add(1)
		go func(i int, st resolvedStage) {
			defer wg.Done()
			if e.pool != nil {
				e.pool <- struct{}{}
				defer func() { <-e.pool }()
			}

			start := time.Now()
			stageCtx, cancel := e.stageContext(ctx)
			defer cancel()

			res, err := st.input.Run(stageCtx, st.settings)
			var playlists []model.Playlist
			if err == nil {
				playlists, err = normalize.FromInput(st.name, res)
			}
			lists[i] = playlists

			if err != nil {
				results[i] = failedStage(st, start, err)
				return
			}
			results[i] = succeededStage(st, start, fmt.Sprintf("%d playlist(s), %d song(s)", len(playlists), model.TotalSongs(playlists)))
		}(i, st)
	}
	wg.Wait()

	failures := 0
	for _, res := range results {
		rec.Stages = append(rec.Stages, res)
		if res.Status == StageFailed {
			failures++
		}
	}
	if len(stages) > 0 && failures == len(stages) {
		return nil, ErrAllInputsFailed
	}

	// Concatenate in declared input order; execution order is irrelevant.
	var merged []model.Playlist
	for _, list := range lists {
		merged = append(merged, list...)
	}
	return merged, nil
}

func (e *Engine) runModifier(ctx context.Context, st resolvedStage, current []model.Playlist, rec *RunRecord) ([]model.Playlist, error) {
	adapted, warnings := normalize.Adapt(current, st.info.Modes)
	rec.Warnings = append(rec.Warnings, prefixWarnings(st.name, warnings)...)

	start := time.Now()
	stageCtx, cancel := e.stageContext(ctx)
	defer cancel()

	replacement, err := st.modifier.Run(stageCtx, st.settings, adapted)
	if err != nil {
		rec.Stages = append(rec.Stages, failedStage(st, start, err))
		return nil, resonateerrors.NewStageError(string(st.category), st.name, err)
	}

	rec.Stages = append(rec.Stages, succeededStage(st, start, fmt.Sprintf("%d playlist(s), %d song(s)", len(replacement), model.TotalSongs(replacement))))
	return replacement, nil
}

// runOutputs executes all output stages concurrently against the final list.
// Outputs write to independent external services, so partial success is
// expected and recorded per stage rather than failing the run.
func (e *Engine) runOutputs(ctx context.Context, stages []resolvedStage, final []model.Playlist, rec *RunRecord) {
	results := make([]StageResult, len(stages))
	warnings := make([][]string, len(stages))

	var wg sync.WaitGroup
	for i, st := range stages {
		wg.Add(1)
		go func(i int, st resolvedStage) {
			defer wg.Done()
			if e.pool != nil {
				e.pool <- struct{}{}
				defer func() { <-e.pool }()
			}

			adapted, stageWarnings := normalize.Adapt(model.ClonePlaylists(final), st.info.Modes)
			warnings[i] = prefixWarnings(st.name, stageWarnings)

			start := time.Now()
			stageCtx, cancel := e.stageContext(ctx)
			defer cancel()

			if err := st.output.Run(stageCtx, st.settings, adapted); err != nil {
				results[i] = failedStage(st, start, err)
				return
			}
			results[i] = succeededStage(st, start, fmt.Sprintf("wrote %d playlist(s)", len(adapted)))
		}(i, st)
	}
	wg.Wait()

	for i, res := range results {
		rec.Warnings = append(rec.Warnings, warnings[i]...)
		rec.Stages = append(rec.Stages, res)
	}
}

// stageContext bounds one plugin invocation. It is detached from run
// cancellation on purpose: a cancelled run lets the current call finish and
// discards its result at the stage boundary.
func (e *Engine) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
}

func (e *Engine) skipRemaining(rec *RunRecord, groups ...[]resolvedStage) {
	for _, group := range groups {
		for _, st := range group {
			rec.Stages = append(rec.Stages, StageResult{
				Category: st.category,
				Plugin:   st.name,
				Status:   StageSkipped,
				Message:  "not executed",
			})
		}
	}
}

func (e *Engine) finish(rec *RunRecord, playlists []model.Playlist, runErr error) (*RunRecord, error) {
	rec.EndedAt = time.Now()

	switch {
	case runErr == nil:
		rec.State = StateCompleted
		rec.Playlists = playlists
	case errors.Is(runErr, context.Canceled):
		rec.State = StateCancelled
		rec.Error = "run cancelled"
	default:
		rec.State = StateFailed
		rec.Error = runErr.Error()
	}

	if e.records != nil {
		if err := e.records.AppendRunRecord(rec); err != nil {
			e.logError(rec.AppletID, err, "failed to persist run record")
			return rec, fmt.Errorf("persist run record: %w", err)
		}
	}

	e.logInfo(rec.AppletID, fmt.Sprintf("run %s finished: %s", rec.ID, rec.State))
	return rec, nil
}

func failedStage(st resolvedStage, start time.Time, err error) StageResult {
	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		message = "timeout exceeded"
	}
	return StageResult{
		Category: st.category,
		Plugin:   st.name,
		Status:   StageFailed,
		Message:  message,
		Duration: time.Since(start),
	}
}

func succeededStage(st resolvedStage, start time.Time, message string) StageResult {
	return StageResult{
		Category: st.category,
		Plugin:   st.name,
		Status:   StageSucceeded,
		Message:  message,
		Duration: time.Since(start),
	}
}

func prefixWarnings(pluginName string, warnings []string) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = fmt.Sprintf("[%s] %s", pluginName, w)
	}
	return out
}

func (e *Engine) logInfo(appletID, msg string) {
	if e.logger == nil {
		return
	}
	e.logger.WithApplet(appletID).Info(msg)
}

func (e *Engine) logWarn(appletID, msg string) {
	if e.logger == nil {
		return
	}
	e.logger.WithApplet(appletID).Warn(msg)
}

func (e *Engine) logError(appletID string, err error, msg string) {
	if e.logger == nil {
		return
	}
	e.logger.WithApplet(appletID).Error(err, msg)
}
