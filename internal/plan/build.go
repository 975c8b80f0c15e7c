package plan

import (
	"fmt"

	"inkwell/internal/gate"
	"inkwell/internal/model"
)

// ErrUnknownStep marks a workflow table referencing a step the builder cannot
// expand. This is a configuration error and aborts plan construction; it is
// never treated as a quality-gate failure.
type ErrUnknownStep struct {
	Shape Shape
	Step  StepName
}

func (e *ErrUnknownStep) Error() string {
	return fmt.Sprintf("workflow %q references unknown step %q", e.Shape, e.Step)
}

// shapeSequences is the per-shape step ordering. The presentation workflow
// skips the voice check and the social-only workflow skips file production,
// matching each shape's declared sequence.
var shapeSequences = map[Shape][]StepName{
	ShapeSingleTrack:   {StepResearch, StepBrief, StepDraft, StepVoiceCheck, StepFormat},
	ShapeMultiTarget:   {StepResearch, StepBrief, StepDraft, StepVoiceCheck, StepFormat},
	ShapePresentation:  {StepResearch, StepBrief, StepDraft, StepFormat},
	ShapeSocialOnly:    {StepResearch, StepBrief, StepDraft, StepVoiceCheck},
	ShapeEmailSequence: {StepResearch, StepBrief, StepDraft, StepVoiceCheck, StepFormat},
}

// Build expands a workflow shape into an ordered plan for the given request.
// It is a pure function of its inputs: the same shape and request always
// yield the same plan. In a multi-target campaign every step after research
// fans out into one track per requested kind, in the order the kinds were
// declared on the request.
func Build(shape Shape, req model.Request) (Plan, error) {
	sequence, ok := shapeSequences[shape]
	if !ok {
		return Plan{}, fmt.Errorf("unknown workflow shape %q", shape)
	}

	fanOut := shape == ShapeMultiTarget

	steps := make([]Step, 0, len(sequence))
	for _, name := range sequence {
		step, err := newStep(shape, name)
		if err != nil {
			return Plan{}, err
		}
		if fanOut && name != StepResearch {
			step.Parallel = true
			step.Tracks = append([]model.ContentType(nil), req.ContentTypes...)
		}
		steps = append(steps, step)
	}

	return Plan{Shape: shape, Steps: steps}, nil
}

// newStep resolves a step name into its typed descriptor. The switch is the
// closed step table; a name outside it is a configuration error.
func newStep(shape Shape, name StepName) (Step, error) {
	switch name {
	case StepResearch:
		return Step{
			Name:   StepResearch,
			Role:   RoleResearch,
			Input:  model.KindRequest,
			Output: model.KindResearchBrief,
			Gate:   gate.ResearchCompleteness,
		}, nil
	case StepBrief:
		return Step{
			Name:   StepBrief,
			Role:   RoleBrief,
			Input:  model.KindResearchBrief,
			Output: model.KindContentBrief,
			Gate:   gate.BriefAlignment,
		}, nil
	// Drafting carries no gate: a draft outside its brief's targets is
	// logged as a warning and the voice check remains the next enforcement
	// point.
	case StepDraft:
		return Step{
			Name:   StepDraft,
			Role:   RoleDraft,
			Input:  model.KindContentBrief,
			Output: model.KindDraftContent,
		}, nil
	case StepVoiceCheck:
		return Step{
			Name:   StepVoiceCheck,
			Role:   RoleVoiceCheck,
			Input:  model.KindDraftContent,
			Output: model.KindVoiceCheckResult,
			Gate:   gate.BrandConsistency,
		}, nil
	case StepFormat:
		return Step{
			Name:   StepFormat,
			Role:   RoleFormat,
			Input:  model.KindDraftContent,
			Output: model.KindProductionOutput,
			Gate:   gate.FormatCompliance,
		}, nil
	default:
		return Step{}, &ErrUnknownStep{Shape: shape, Step: name}
	}
}

// Sequences returns the shape → step-name table for display surfaces
// (the workflows CLI command and the UDS boundary).
func Sequences() map[Shape][]StepName {
	out := make(map[Shape][]StepName, len(shapeSequences))
	for shape, seq := range shapeSequences {
		out[shape] = append([]StepName(nil), seq...)
	}
	return out
}
