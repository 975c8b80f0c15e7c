// Package gate evaluates quality gates against pipeline artifacts and
// defines the enforcement policy for gate failures.
package gate

import (
	"fmt"
	"strings"
	"time"

	"inkwell/internal/model"
)

// Gate names, one per gated stage. Drafting has no gate; its validation
// problems surface as executor warnings only.
const (
	ResearchCompleteness = "research_completeness"
	BriefAlignment       = "brief_alignment"
	BrandConsistency     = "brand_consistency"
	FormatCompliance     = "format_compliance"
)

// Outcome records one gate evaluation.
type Outcome struct {
	Gate        string    `yaml:"gate" json:"gate"`
	Passed      bool      `yaml:"passed" json:"passed"`
	Problems    []string  `yaml:"problems,omitempty" json:"problems,omitempty"`
	EvaluatedAt time.Time `yaml:"evaluated_at" json:"evaluated_at"`
}

// Error renders the outcome as a single error string, or "" when passed.
func (o Outcome) Error() string {
	if o.Passed {
		return ""
	}
	return fmt.Sprintf("%s gate failed: %s", o.Gate, strings.Join(o.Problems, "; "))
}

// Evaluate runs an artifact's invariant check under the named gate.
// The artifact carries its own validation; the gate only records the verdict.
func Evaluate(name string, artifact model.Artifact) Outcome {
	ok, problems := artifact.Validate()
	return Outcome{
		Gate:        name,
		Passed:      ok,
		Problems:    problems,
		EvaluatedAt: time.Now().UTC(),
	}
}

// Policy controls what a gate failure does to the run.
type Policy string

const (
	// PolicyLenient records the failure and lets the run continue with the
	// invalid artifact. This is the default; "success" then means "the
	// pipeline completed", not "every artifact passed its gate".
	PolicyLenient Policy = "lenient"
	// PolicyStrict promotes a gate failure to a run-ending error.
	PolicyStrict Policy = "strict"
)

// PolicyFor maps the strict-gates config flag to a Policy.
func PolicyFor(strict bool) Policy {
	if strict {
		return PolicyStrict
	}
	return PolicyLenient
}
