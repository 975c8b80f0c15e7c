// Package plan classifies a request into a workflow shape and expands the
// shape into an ordered execution plan. Everything here is pure data and pure
// functions; the executor walks the plan but never mutates it.
package plan

import (
	"inkwell/internal/model"
)

// Shape is the enumerated route a request follows through the pipeline.
type Shape string

const (
	ShapeSingleTrack   Shape = "single_track"
	ShapeMultiTarget   Shape = "multi_target_campaign"
	ShapePresentation  Shape = "presentation"
	ShapeSocialOnly    Shape = "social_only"
	ShapeEmailSequence Shape = "email_sequence"
)

// StepName is the closed set of pipeline stages. Plans are built by matching
// on these constants, so an unrecognized step is a build-time error rather
// than a silent table miss.
type StepName string

const (
	StepResearch   StepName = "research"
	StepBrief      StepName = "brief"
	StepDraft      StepName = "draft"
	StepVoiceCheck StepName = "voice_check"
	StepFormat     StepName = "format"
)

// Role names the producer a step invokes. Producers are resolved by role at
// execution time; the plan holds no live references.
type Role string

const (
	RoleResearch   Role = "research"
	RoleBrief      Role = "brief"
	RoleDraft      Role = "draft"
	RoleVoiceCheck Role = "voice-check"
	RoleFormat     Role = "format"
)

// Step describes one stage of a plan: which producer it invokes, what
// artifact kinds it consumes and produces, and which gate (if any) validates
// the output. Fan-out steps carry one track per requested content kind and
// may be dispatched concurrently.
type Step struct {
	Name     StepName
	Role     Role
	Input    model.ArtifactKind
	Output   model.ArtifactKind
	Gate     string              // gate name, "" = no gate
	Parallel bool                // tracks may run concurrently
	Tracks   []model.ContentType // nil for single-track steps
}

// FanOut reports whether the step executes once per track.
func (s Step) FanOut() bool {
	return len(s.Tracks) > 0
}

// Plan is a workflow shape plus its ordered steps.
type Plan struct {
	Shape Shape
	Steps []Step
}
