package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/gate"
	"inkwell/internal/model"
)

func request(kinds ...model.ContentType) model.Request {
	return model.Request{
		Topic:        "sustainable packaging",
		ContentTypes: kinds,
		Priority:     model.PriorityNormal,
	}
}

func TestClassify_MultipleKindsAlwaysMultiTarget(t *testing.T) {
	tests := [][]model.ContentType{
		{model.ContentTypeArticle, model.ContentTypeSocialPost},
		{model.ContentTypeEmail, model.ContentTypeNewsletter},
		{model.ContentTypePresentation, model.ContentTypeWhitepaper, model.ContentTypeBlogPost},
	}
	for _, kinds := range tests {
		assert.Equal(t, ShapeMultiTarget, Classify(request(kinds...)), "kinds: %v", kinds)
	}
}

func TestClassify_SingleKind(t *testing.T) {
	tests := []struct {
		kind  model.ContentType
		shape Shape
	}{
		{model.ContentTypeArticle, ShapeSingleTrack},
		{model.ContentTypeBlogPost, ShapeSingleTrack},
		{model.ContentTypeWhitepaper, ShapeSingleTrack},
		{model.ContentTypeCaseStudy, ShapeSingleTrack},
		{model.ContentTypePresentation, ShapePresentation},
		{model.ContentTypeSocialPost, ShapeSocialOnly},
		{model.ContentTypeEmail, ShapeEmailSequence},
		{model.ContentTypeNewsletter, ShapeEmailSequence},
		// Unrecognized kinds fall back to single-track production.
		{model.ContentTypeVideoScript, ShapeSingleTrack},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.shape, Classify(request(tt.kind)))
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	req := request(model.ContentTypeArticle, model.ContentTypeEmail)
	assert.Equal(t, Classify(req), Classify(req))
}

func TestBuild_SingleTrackSequence(t *testing.T) {
	p, err := Build(ShapeSingleTrack, request(model.ContentTypeArticle))
	require.NoError(t, err)

	var names []StepName
	for _, s := range p.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []StepName{StepResearch, StepBrief, StepDraft, StepVoiceCheck, StepFormat}, names)

	for _, s := range p.Steps {
		assert.False(t, s.FanOut(), "single-track step %s must not fan out", s.Name)
	}
}

func TestBuild_StepDescriptors(t *testing.T) {
	p, err := Build(ShapeSingleTrack, request(model.ContentTypeArticle))
	require.NoError(t, err)

	want := Step{
		Name:   StepResearch,
		Role:   RoleResearch,
		Input:  model.KindRequest,
		Output: model.KindResearchBrief,
		Gate:   gate.ResearchCompleteness,
	}
	if diff := cmp.Diff(want, p.Steps[0]); diff != "" {
		t.Errorf("research step mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, p.Steps[2].Gate, "drafting has no gate")
	assert.Equal(t, gate.BrandConsistency, p.Steps[3].Gate)
	assert.Equal(t, model.KindDraftContent, p.Steps[3].Input)
	assert.Equal(t, model.KindProductionOutput, p.Steps[4].Output)
}

func TestBuild_MultiTargetFanOut(t *testing.T) {
	kinds := []model.ContentType{model.ContentTypeArticle, model.ContentTypeSocialPost, model.ContentTypeEmail}
	p, err := Build(ShapeMultiTarget, request(kinds...))
	require.NoError(t, err)
	require.Len(t, p.Steps, 5)

	assert.False(t, p.Steps[0].FanOut(), "research is shared, not fanned out")
	for _, s := range p.Steps[1:] {
		assert.True(t, s.FanOut(), "step %s should fan out", s.Name)
		assert.True(t, s.Parallel)
		// Track order must match request declaration order.
		assert.Equal(t, kinds, s.Tracks)
	}
}

func TestBuild_PresentationSkipsVoiceCheck(t *testing.T) {
	p, err := Build(ShapePresentation, request(model.ContentTypePresentation))
	require.NoError(t, err)

	for _, s := range p.Steps {
		assert.NotEqual(t, StepVoiceCheck, s.Name)
	}
	assert.Len(t, p.Steps, 4)
}

func TestBuild_SocialOnlySkipsFormat(t *testing.T) {
	p, err := Build(ShapeSocialOnly, request(model.ContentTypeSocialPost))
	require.NoError(t, err)

	for _, s := range p.Steps {
		assert.NotEqual(t, StepFormat, s.Name)
	}
	assert.Len(t, p.Steps, 4)
}

func TestBuild_UnknownShape(t *testing.T) {
	_, err := Build(Shape("interpretive_dance"), request(model.ContentTypeArticle))
	assert.Error(t, err)
}

func TestBuild_Deterministic(t *testing.T) {
	req := request(model.ContentTypeArticle, model.ContentTypeEmail)
	a, err := Build(ShapeMultiTarget, req)
	require.NoError(t, err)
	b, err := Build(ShapeMultiTarget, req)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Build is not deterministic (-first +second):\n%s", diff)
	}
}

func TestBuild_TracksAreCopied(t *testing.T) {
	req := request(model.ContentTypeArticle, model.ContentTypeEmail)
	p, err := Build(ShapeMultiTarget, req)
	require.NoError(t, err)

	req.ContentTypes[0] = model.ContentTypeSocialPost
	assert.Equal(t, model.ContentTypeArticle, p.Steps[1].Tracks[0],
		"plan must not alias the request's kind slice")
}

func TestErrUnknownStep_Message(t *testing.T) {
	err := &ErrUnknownStep{Shape: ShapeSingleTrack, Step: StepName("publish")}
	assert.Contains(t, err.Error(), "publish")
	assert.Contains(t, err.Error(), string(ShapeSingleTrack))
}

func TestSequences_ReturnsCopies(t *testing.T) {
	seqs := Sequences()
	require.Contains(t, seqs, ShapeSingleTrack)
	seqs[ShapeSingleTrack][0] = StepName("mutated")

	again := Sequences()
	assert.Equal(t, StepResearch, again[ShapeSingleTrack][0])
}
