package pipeline

import (
	"time"

	"inkwell/internal/model"
	"inkwell/internal/plan"
)

// StepRecord is one entry in the run ledger: a single producer invocation and
// its gate verdict. A fan-out step contributes one record per track.
type StepRecord struct {
	Step        plan.StepName     `yaml:"step" json:"step"`
	ContentType model.ContentType `yaml:"content_type,omitempty" json:"content_type,omitempty"`
	Success     bool              `yaml:"success" json:"success"`
	Error       string            `yaml:"error,omitempty" json:"error,omitempty"`
	Timestamp   time.Time         `yaml:"timestamp" json:"timestamp"`
}

// Result is the full record of one run. Success means the pipeline ran to the
// end of its plan; under lenient gates that can include steps whose artifact
// failed its gate, so publishers must consult Steps, not just Success.
type Result struct {
	Shape     plan.Shape      `yaml:"workflow" json:"workflow"`
	Status    model.RunStatus `yaml:"status" json:"status"`
	Success   bool            `yaml:"success" json:"success"`
	Steps     []StepRecord    `yaml:"steps" json:"steps"`
	Outputs   map[string]any  `yaml:"outputs" json:"outputs"`
	Errors    []string        `yaml:"errors,omitempty" json:"errors,omitempty"`
	StartTime time.Time       `yaml:"start_time" json:"start_time"`
	EndTime   time.Time       `yaml:"end_time" json:"end_time"`
}

func newResult() *Result {
	return &Result{
		Status:    model.StatusPlanned,
		Outputs:   make(map[string]any),
		StartTime: time.Now().UTC(),
	}
}

// AddStep appends one ledger entry.
func (r *Result) AddStep(step plan.StepName, kind model.ContentType, success bool, errMsg string) {
	r.Steps = append(r.Steps, StepRecord{
		Step:        step,
		ContentType: kind,
		Success:     success,
		Error:       errMsg,
		Timestamp:   time.Now().UTC(),
	})
}

// Fail records a run-ending error and moves the run to a terminal status.
func (r *Result) Fail(status model.RunStatus, errMsg string) {
	r.Errors = append(r.Errors, errMsg)
	r.finish(status)
}

func (r *Result) finish(status model.RunStatus) {
	r.Status = status
	r.Success = status == model.StatusCompleted
	r.EndTime = time.Now().UTC()
}

// GateFailures returns the ledger entries whose gate did not pass.
func (r *Result) GateFailures() []StepRecord {
	var failed []StepRecord
	for _, s := range r.Steps {
		if !s.Success {
			failed = append(failed, s)
		}
	}
	return failed
}

// Duration is the wall-clock time the run took.
func (r *Result) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
