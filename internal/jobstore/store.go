// Package jobstore tracks asynchronous pipeline runs for the daemon. It owns
// run identifiers and run status; the executor itself never sees them. Jobs
// live in memory and terminal jobs are swept after a TTL.
package jobstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/lock"
	"inkwell/internal/model"
	"inkwell/internal/pipeline"
)

var (
	ErrNotFound        = errors.New("job not found")
	ErrAlreadyTerminal = errors.New("job already terminal")
)

// Job is a snapshot of one tracked run.
type Job struct {
	ID        string           `yaml:"id" json:"id"`
	Request   model.Request    `yaml:"request" json:"request"`
	Status    model.RunStatus  `yaml:"status" json:"status"`
	LastStep  string           `yaml:"last_step,omitempty" json:"last_step,omitempty"`
	StepsDone int              `yaml:"steps_done" json:"steps_done"`
	Result    *pipeline.Result `yaml:"result,omitempty" json:"result,omitempty"`
	CreatedAt time.Time        `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time        `yaml:"updated_at" json:"updated_at"`
}

type record struct {
	job    Job
	cancel context.CancelFunc
}

// Store runs submitted requests asynchronously and retains their results
// until the TTL janitor collects them.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record

	exec          *pipeline.Executor
	bus           *events.Bus
	locks         *lock.MutexMap
	ttl           time.Duration
	sweepInterval time.Duration
	logger        *log.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

func NewStore(cfg model.JobStoreConfig, exec *pipeline.Executor, bus *events.Bus, logger *log.Logger) *Store {
	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	sweep := time.Duration(cfg.SweepIntervalSec) * time.Second
	if sweep <= 0 {
		sweep = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		records:       make(map[string]*record),
		exec:          exec,
		bus:           bus,
		locks:         lock.NewMutexMap(),
		ttl:           ttl,
		sweepInterval: sweep,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start launches the TTL janitor and subscribes to step progress events.
func (s *Store) Start() {
	if s.bus != nil {
		s.unsubscribe = s.bus.Subscribe(events.EventStepCompleted, s.onStepCompleted)
	}
	s.wg.Add(1)
	go s.janitor()
}

// Close cancels running jobs and stops the janitor.
func (s *Store) Close() {
	s.cancel()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.wg.Wait()
}

// Submit validates and enqueues a request, returning its job ID. The run
// starts immediately on its own goroutine.
func (s *Store) Submit(req model.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid request: %w", err)
	}

	id, err := model.NewRunID()
	if err != nil {
		return "", fmt.Errorf("generate run ID: %w", err)
	}
	now := time.Now().UTC()
	rec := &record{
		job: Job{
			ID:        id,
			Request:   req,
			Status:    model.StatusPlanned,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	runCtx, runCancel := context.WithCancel(s.ctx)
	rec.cancel = runCancel

	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(runCtx, id, req)

	s.logf("job_submitted id=%s topic=%q kinds=%d", id, req.Topic, len(req.ContentTypes))
	return id, nil
}

func (s *Store) run(ctx context.Context, id string, req model.Request) {
	defer s.wg.Done()

	if !s.transition(id, model.StatusRunning) {
		// Cancelled before the first step.
		return
	}

	res := s.exec.Execute(events.WithRunID(ctx, id), req)

	s.withRecord(id, func(rec *record) {
		rec.job.Result = res
		rec.job.Status = res.Status
		rec.job.UpdatedAt = time.Now().UTC()
	})
	s.logf("job_finished id=%s status=%s", id, res.Status)
}

// transition moves a job to the given status if the run status table allows
// it.
func (s *Store) transition(id string, to model.RunStatus) bool {
	ok := false
	s.withRecord(id, func(rec *record) {
		if err := model.ValidateRunTransition(rec.job.Status, to); err != nil {
			return
		}
		rec.job.Status = to
		rec.job.UpdatedAt = time.Now().UTC()
		ok = true
	})
	return ok
}

// withRecord runs fn with the record's per-job lock held.
func (s *Store) withRecord(id string, fn func(*record)) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	s.mu.RLock()
	rec := s.records[id]
	s.mu.RUnlock()
	if rec == nil {
		return
	}
	fn(rec)
}

// Get returns a snapshot of one job.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)
	return rec.job, nil
}

// List returns snapshots of all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	jobs := make([]Job, 0, len(ids))
	for _, id := range ids {
		if job, err := s.Get(id); err == nil {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Cancel stops a job. A planned job is cancelled directly; a running job is
// cancelled through its context and reaches the cancelled status when the
// executor observes it.
func (s *Store) Cancel(id string) error {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var err error
	s.withRecord(id, func(rec *record) {
		if model.IsTerminal(rec.job.Status) {
			err = fmt.Errorf("%w: job %s is %s", ErrAlreadyTerminal, id, rec.job.Status)
			return
		}
		if rec.job.Status == model.StatusPlanned {
			rec.job.Status = model.StatusCancelled
			rec.job.UpdatedAt = time.Now().UTC()
		}
	})
	if err != nil {
		return err
	}

	rec.cancel()
	s.logf("job_cancel_requested id=%s", id)
	return nil
}

func (s *Store) onStepCompleted(e events.Event) {
	if e.RunID == "" {
		return
	}
	s.withRecord(e.RunID, func(rec *record) {
		if step, ok := e.Data["step"].(string); ok {
			rec.job.LastStep = step
		}
		rec.job.StepsDone++
		rec.job.UpdatedAt = time.Now().UTC()
	})
}

func (s *Store) janitor() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now().UTC())
		}
	}
}

// sweep removes terminal jobs whose last update is older than the TTL.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		if model.IsTerminal(rec.job.Status) && now.Sub(rec.job.UpdatedAt) > s.ttl {
			delete(s.records, id)
			removed++
		}
	}
	if removed > 0 {
		s.logf("jobs_swept count=%d", removed)
	}
	return removed
}

func (s *Store) logf(format string, args ...any) {
	if s.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("%s INFO jobstore: %s", time.Now().Format(time.RFC3339), msg)
}
