package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"inkwell/internal/events"
	"inkwell/internal/gate"
	"inkwell/internal/model"
	"inkwell/internal/plan"
)

type LogLevel int32

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Executor walks a plan and drives its producers. Execute never returns an
// error: every failure mode is folded into the Result so callers get one
// uniform record regardless of how the run ended.
//
// Strictness and log level are atomics because the daemon flips them on
// config reload while runs are in flight.
type Executor struct {
	cfg      model.Config
	registry *Registry
	bus      *events.Bus
	logger   *log.Logger
	logLevel atomic.Int32
	strict   atomic.Bool
	metrics  *gate.Metrics
}

// NewExecutor wires an executor. bus may be nil for callers that do not
// observe run events.
func NewExecutor(cfg model.Config, registry *Registry, bus *events.Bus, logger *log.Logger) *Executor {
	e := &Executor{
		cfg:      cfg,
		registry: registry,
		bus:      bus,
		logger:   logger,
		metrics:  gate.NewMetrics(),
	}
	e.logLevel.Store(int32(ParseLogLevel(cfg.Logging.Level)))
	e.strict.Store(cfg.Pipeline.StrictGates)
	return e
}

// SetStrict switches gate enforcement for subsequent gate evaluations.
func (e *Executor) SetStrict(strict bool) {
	e.strict.Store(strict)
}

// SetLogLevel switches the executor's log threshold.
func (e *Executor) SetLogLevel(level string) {
	e.logLevel.Store(int32(ParseLogLevel(level)))
}

// GateMetrics exposes the executor's gate evaluation counters.
func (e *Executor) GateMetrics() *gate.Metrics {
	return e.metrics
}

func (e *Executor) policy() gate.Policy {
	return gate.PolicyFor(e.strict.Load())
}

// runState accumulates artifacts across steps. The research brief is shared
// by every track; briefs, drafts and checks are per content kind.
type runState struct {
	req      model.Request
	format   string
	research *model.ResearchBrief
	tracks   map[model.ContentType]*trackState
}

type trackState struct {
	brief  *model.ContentBrief
	draft  *model.DraftContent
	voice  *model.VoiceCheckResult
	output *model.ProductionOutput
}

func newRunState(req model.Request, format string) *runState {
	s := &runState{
		req:    req,
		format: format,
		tracks: make(map[model.ContentType]*trackState, len(req.ContentTypes)),
	}
	for _, kind := range req.ContentTypes {
		s.tracks[kind] = &trackState{}
	}
	return s
}

func (s *runState) track(kind model.ContentType) *trackState {
	t, ok := s.tracks[kind]
	if !ok {
		t = &trackState{}
		s.tracks[kind] = t
	}
	return t
}

func (s *runState) input(kind model.ContentType) Input {
	t := s.track(kind)
	return Input{
		Request:     s.req,
		ContentType: kind,
		Research:    s.research,
		Brief:       t.brief,
		Draft:       t.draft,
		Format:      s.format,
		Tone:        s.tone(kind),
	}
}

// tone resolves the tone later steps judge drafts against. All tracks follow
// the first declared kind's brief; a track's own brief only applies when the
// first track has not produced one.
func (s *runState) tone(kind model.ContentType) model.ToneType {
	if first := s.track(s.req.ContentTypes[0]); first.brief != nil {
		return first.brief.Tone
	}
	if t := s.track(kind); t.brief != nil {
		return t.brief.Tone
	}
	return ""
}

func (s *runState) store(kind model.ContentType, artifact model.Artifact) {
	switch a := artifact.(type) {
	case *model.ResearchBrief:
		s.research = a
	case *model.ContentBrief:
		s.track(kind).brief = a
	case *model.DraftContent:
		s.track(kind).draft = a
	case *model.VoiceCheckResult:
		s.track(kind).voice = a
	case *model.ProductionOutput:
		s.track(kind).output = a
	}
}

// Execute classifies the request, builds its plan and runs it to a terminal
// status. All outcomes, including validation and configuration errors, are
// reported through the returned Result.
func (e *Executor) Execute(ctx context.Context, req model.Request) *Result {
	res := newResult()

	if err := req.Validate(); err != nil {
		e.log(LogLevelError, "request_rejected error=%v", err)
		res.Fail(model.StatusFailed, fmt.Sprintf("invalid request: %v", err))
		return res
	}

	shape := plan.Classify(req)
	p, err := plan.Build(shape, req)
	if err != nil {
		e.log(LogLevelError, "plan_build_failed workflow=%s error=%v", shape, err)
		res.Fail(model.StatusFailed, fmt.Sprintf("plan build: %v", err))
		return res
	}
	res.Shape = shape
	res.Status = model.StatusRunning

	format, ok := req.ContextString("format")
	if !ok || format == "" {
		format = e.cfg.Pipeline.DefaultFormat
	}
	state := newRunState(req, format)

	e.log(LogLevelInfo, "run_started workflow=%s topic=%q kinds=%d", shape, req.Topic, len(req.ContentTypes))
	e.publish(ctx, events.EventRunStarted, map[string]any{
		"workflow": string(shape),
		"topic":    req.Topic,
	})

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			e.finishRun(ctx, res, model.StatusCancelled, "run cancelled")
			return res
		}

		var stepErr error
		if step.FanOut() {
			stepErr = e.runFanOut(ctx, res, step, state)
		} else {
			stepErr = e.runSingle(ctx, res, step, state)
		}
		if stepErr != nil {
			status := model.StatusFailed
			if errors.Is(stepErr, context.Canceled) {
				status = model.StatusCancelled
			}
			e.finishRun(ctx, res, status, stepErr.Error())
			return res
		}
	}

	e.finishRun(ctx, res, model.StatusCompleted, "")
	return res
}

func (e *Executor) finishRun(ctx context.Context, res *Result, status model.RunStatus, errMsg string) {
	if errMsg != "" {
		res.Fail(status, errMsg)
	} else {
		res.finish(status)
	}
	e.log(LogLevelInfo, "run_finished workflow=%s status=%s steps=%d duration=%s",
		res.Shape, res.Status, len(res.Steps), res.Duration().Round(time.Millisecond))
	e.publish(ctx, events.EventRunFinished, map[string]any{
		"workflow": string(res.Shape),
		"status":   string(res.Status),
		"success":  res.Success,
		"steps":    len(res.Steps),
	})
}

// runSingle invokes a non-fan-out step once. The research step runs before
// any track exists and is recorded without a content kind.
func (e *Executor) runSingle(ctx context.Context, res *Result, step plan.Step, state *runState) error {
	kind := state.req.ContentTypes[0]
	recordKind := kind
	if step.Name == plan.StepResearch {
		recordKind = ""
	}

	artifact, err := e.invoke(ctx, step, state.input(kind))
	if err != nil {
		res.AddStep(step.Name, recordKind, false, err.Error())
		return fmt.Errorf("%s: %w", step.Name, err)
	}
	state.store(kind, artifact)
	e.storeOutputs(res, step, state)

	return e.evaluateGate(ctx, res, step, recordKind, artifact)
}

// runFanOut invokes one step concurrently across every track. Gates run only
// after all tracks have joined, in the order the kinds were declared, so the
// ledger stays deterministic under concurrency.
func (e *Executor) runFanOut(ctx context.Context, res *Result, step plan.Step, state *runState) error {
	artifacts := make([]model.Artifact, len(step.Tracks))
	invokeErrs := make([]error, len(step.Tracks))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range step.Tracks {
		g.Go(func() error {
			a, err := e.invoke(gctx, step, state.input(kind))
			if err != nil {
				invokeErrs[i] = err
				return fmt.Errorf("%s[%s]: %w", step.Name, kind, err)
			}
			artifacts[i] = a
			return nil
		})
	}
	groupErr := g.Wait()

	if groupErr != nil {
		// Tracks that finished before the failure keep their ledger entries.
		for i, kind := range step.Tracks {
			switch {
			case invokeErrs[i] != nil:
				res.AddStep(step.Name, kind, false, invokeErrs[i].Error())
			case artifacts[i] != nil:
				state.store(kind, artifacts[i])
				res.AddStep(step.Name, kind, true, "")
			}
		}
		return groupErr
	}

	for i, kind := range step.Tracks {
		state.store(kind, artifacts[i])
	}
	e.storeOutputs(res, step, state)

	for i, kind := range step.Tracks {
		if err := e.evaluateGate(ctx, res, step, kind, artifacts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) invoke(ctx context.Context, step plan.Step, in Input) (artifact model.Artifact, err error) {
	producer, ok := e.registry.Lookup(step.Role)
	if !ok {
		return nil, fmt.Errorf("no producer registered for role %q", step.Role)
	}

	// A panicking producer is an operational failure of that producer, not of
	// the run loop; Execute still returns a Result.
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("producer for role %q panicked: %v", step.Role, r)
			e.log(LogLevelError, "step_panicked step=%s kind=%s error=%v", step.Name, in.ContentType, r)
		}
	}()

	e.log(LogLevelDebug, "step_invoke step=%s role=%s kind=%s", step.Name, step.Role, in.ContentType)
	artifact, err = producer.Invoke(ctx, in)
	if err != nil {
		e.log(LogLevelError, "step_failed step=%s kind=%s error=%v", step.Name, in.ContentType, err)
		return nil, err
	}
	if artifact == nil {
		return nil, fmt.Errorf("producer for role %q returned no artifact", step.Role)
	}
	if artifact.Kind() != step.Output {
		return nil, fmt.Errorf("producer for role %q returned %s, expected %s",
			step.Role, artifact.Kind(), step.Output)
	}
	return artifact, nil
}

// evaluateGate records the step's ledger entry and applies the gate policy.
// Under lenient enforcement a failed gate is recorded and the run continues;
// under strict enforcement it ends the run.
func (e *Executor) evaluateGate(ctx context.Context, res *Result, step plan.Step, kind model.ContentType, artifact model.Artifact) error {
	if step.Gate == "" {
		// Ungated steps still validate their artifact, warn-only.
		if valid, problems := artifact.Validate(); !valid {
			e.log(LogLevelWarn, "artifact_warning step=%s kind=%s problems=%s",
				step.Name, kind, strings.Join(problems, "; "))
		}
		res.AddStep(step.Name, kind, true, "")
		e.publishStep(ctx, step, kind, true)
		return nil
	}

	start := time.Now()
	outcome := gate.Evaluate(step.Gate, artifact)
	e.metrics.Record(outcome.Passed, time.Since(start).Milliseconds())

	res.AddStep(step.Name, kind, outcome.Passed, outcome.Error())
	e.publishStep(ctx, step, kind, outcome.Passed)

	if !outcome.Passed {
		e.log(LogLevelWarn, "gate_failed gate=%s step=%s kind=%s problems=%d",
			step.Gate, step.Name, kind, len(outcome.Problems))
		e.publish(ctx, events.EventGateFailed, map[string]any{
			"gate":     outcome.Gate,
			"step":     string(step.Name),
			"kind":     string(kind),
			"problems": outcome.Problems,
		})
		if e.policy() == gate.PolicyStrict {
			return errors.New(outcome.Error())
		}
		// Lenient mode: the failure is still surfaced on the result's error
		// list, it just does not end the run.
		res.Errors = append(res.Errors, outcome.Error())
	}
	return nil
}

// storeOutputs writes the step's artifacts into the result's outputs map.
// Fan-out steps publish a list keyed by the plural name; production outputs
// are always a list so downstream consumers handle one shape.
func (e *Executor) storeOutputs(res *Result, step plan.Step, state *runState) {
	fanOut := step.FanOut()
	kinds := step.Tracks
	if !fanOut {
		kinds = state.req.ContentTypes[:1]
	}

	switch step.Name {
	case plan.StepResearch:
		res.Outputs["research_brief"] = state.research
	case plan.StepBrief:
		if fanOut {
			briefs := make([]*model.ContentBrief, len(kinds))
			for i, kind := range kinds {
				briefs[i] = state.track(kind).brief
			}
			res.Outputs["content_briefs"] = briefs
		} else {
			res.Outputs["content_brief"] = state.track(kinds[0]).brief
		}
	case plan.StepDraft:
		if fanOut {
			drafts := make([]*model.DraftContent, len(kinds))
			for i, kind := range kinds {
				drafts[i] = state.track(kind).draft
			}
			res.Outputs["drafts"] = drafts
		} else {
			res.Outputs["draft_content"] = state.track(kinds[0]).draft
		}
	case plan.StepVoiceCheck:
		if fanOut {
			checks := make([]*model.VoiceCheckResult, len(kinds))
			for i, kind := range kinds {
				checks[i] = state.track(kind).voice
			}
			res.Outputs["voice_check_results"] = checks
		} else {
			res.Outputs["voice_check_result"] = state.track(kinds[0]).voice
		}
	case plan.StepFormat:
		outputs := make([]*model.ProductionOutput, len(kinds))
		for i, kind := range kinds {
			outputs[i] = state.track(kind).output
		}
		res.Outputs["production_outputs"] = outputs
	}
}

func (e *Executor) publishStep(ctx context.Context, step plan.Step, kind model.ContentType, passed bool) {
	e.publish(ctx, events.EventStepCompleted, map[string]any{
		"step":   string(step.Name),
		"kind":   string(kind),
		"passed": passed,
	})
}

func (e *Executor) publish(ctx context.Context, eventType events.EventType, data map[string]any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventType, events.RunID(ctx), data)
}

func (e *Executor) log(level LogLevel, format string, args ...any) {
	if e.logger == nil || int32(level) < e.logLevel.Load() {
		return
	}
	levelStr := "INFO"
	switch level {
	case LogLevelDebug:
		levelStr = "DEBUG"
	case LogLevelWarn:
		levelStr = "WARN"
	case LogLevelError:
		levelStr = "ERROR"
	}
	msg := fmt.Sprintf(format, args...)
	e.logger.Printf("%s %s executor: %s", time.Now().Format(time.RFC3339), levelStr, msg)
}
