package producer

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/model"
	"inkwell/internal/pipeline"
)

var testLogger = log.New(io.Discard, "", 0)

func testRequest(kinds ...model.ContentType) model.Request {
	return model.Request{
		Topic:        "developer productivity",
		ContentTypes: kinds,
	}
}

// produceDraft runs the research, brief and draft producers in sequence.
func produceDraft(t *testing.T, req model.Request, kind model.ContentType) (*model.ResearchBrief, *model.ContentBrief, *model.DraftContent) {
	t.Helper()
	ctx := context.Background()

	researched, err := NewResearcher(model.DefaultConfig().Producers.Research, testLogger).
		Invoke(ctx, Input{Request: req, ContentType: kind})
	require.NoError(t, err)
	research := researched.(*model.ResearchBrief)

	briefed, err := NewBriefMaker(testLogger).
		Invoke(ctx, Input{Request: req, ContentType: kind, Research: research})
	require.NoError(t, err)
	brief := briefed.(*model.ContentBrief)

	drafted, err := NewDrafter(testLogger).
		Invoke(ctx, Input{Request: req, ContentType: kind, Research: research, Brief: brief})
	require.NoError(t, err)
	return research, brief, drafted.(*model.DraftContent)
}

func TestResearcherProducesValidBrief(t *testing.T) {
	req := testRequest(model.ContentTypeArticle)
	artifact, err := NewResearcher(model.DefaultConfig().Producers.Research, testLogger).
		Invoke(context.Background(), Input{Request: req, ContentType: model.ContentTypeArticle})
	require.NoError(t, err)

	brief, ok := artifact.(*model.ResearchBrief)
	require.True(t, ok)
	assert.Equal(t, req.Topic, brief.Topic)

	valid, problems := brief.Validate()
	assert.True(t, valid, "problems: %v", problems)
	assert.GreaterOrEqual(t, len(brief.Sources), 2)
	assert.NotEmpty(t, brief.KeyFindings)
}

func TestResearcherSourceBounds(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.ResearchConfig
		want    int
		minCred float64
	}{
		{
			name: "defaults stop at credibility floor",
			cfg:  model.ResearchConfig{MinSources: 3, MaxSources: 10, MinCredibility: 0.5},
			want: 5,
		},
		{
			name: "max caps the count",
			cfg:  model.ResearchConfig{MinSources: 2, MaxSources: 2, MinCredibility: 0.5},
			want: 2,
		},
		{
			name: "minimum wins over a high floor",
			cfg:  model.ResearchConfig{MinSources: 3, MaxSources: 10, MinCredibility: 0.7},
			want: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := NewResearcher(tt.cfg, testLogger).
				Invoke(context.Background(), Input{Request: testRequest(model.ContentTypeArticle)})
			require.NoError(t, err)
			brief := artifact.(*model.ResearchBrief)
			assert.Len(t, brief.Sources, tt.want)
		})
	}
}

func TestResearcherIsDeterministic(t *testing.T) {
	r := NewResearcher(model.DefaultConfig().Producers.Research, testLogger)
	in := Input{Request: testRequest(model.ContentTypeArticle)}

	a, err := r.Invoke(context.Background(), in)
	require.NoError(t, err)
	b, err := r.Invoke(context.Background(), in)
	require.NoError(t, err)

	first, second := a.(*model.ResearchBrief), b.(*model.ResearchBrief)
	assert.Equal(t, first.Sources, second.Sources)
	assert.Equal(t, first.KeyFindings, second.KeyFindings)
}

func TestBriefMakerDefaults(t *testing.T) {
	research, brief, _ := produceDraft(t, testRequest(model.ContentTypeArticle), model.ContentTypeArticle)

	assert.Equal(t, model.ContentTypeArticle, brief.ContentType)
	assert.Equal(t, model.ToneEducational, brief.Tone)
	assert.Equal(t, model.WordCountRange{Min: 800, Max: 1500}, brief.WordCount)
	assert.Equal(t, research.KeyFindings, brief.KeyMessages)
	assert.NotEmpty(t, brief.SEOKeywords)
	assert.Same(t, research, brief.Research)

	valid, problems := brief.Validate()
	assert.True(t, valid, "problems: %v", problems)
}

func TestBriefMakerContextOverrides(t *testing.T) {
	req := testRequest(model.ContentTypeArticle)
	req.Context = map[string]any{
		"target_audience": "platform engineers",
		"tone":            "technical",
	}
	_, brief, _ := produceDraft(t, req, model.ContentTypeArticle)

	assert.Equal(t, "platform engineers", brief.TargetAudience)
	assert.Equal(t, model.ToneTechnical, brief.Tone)
}

func TestBriefMakerIgnoresInvalidTone(t *testing.T) {
	req := testRequest(model.ContentTypeBlogPost)
	req.Context = map[string]any{"tone": "sarcastic"}
	_, brief, _ := produceDraft(t, req, model.ContentTypeBlogPost)

	assert.Equal(t, model.ToneConversational, brief.Tone, "falls back to the template tone")
}

func TestBriefMakerRequiresResearch(t *testing.T) {
	_, err := NewBriefMaker(testLogger).Invoke(context.Background(),
		Input{Request: testRequest(model.ContentTypeArticle), ContentType: model.ContentTypeArticle})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "research brief required")
}

func TestDrafterStaysInWordRange(t *testing.T) {
	for _, kind := range []model.ContentType{
		model.ContentTypeArticle,
		model.ContentTypeSocialPost,
		model.ContentTypeWhitepaper,
		model.ContentTypeEmail,
	} {
		t.Run(string(kind), func(t *testing.T) {
			_, brief, draft := produceDraft(t, testRequest(kind), kind)

			assert.Equal(t, len(strings.Fields(draft.Text)), draft.WordCount)
			assert.True(t, brief.WordCount.Contains(draft.WordCount),
				"word count %d outside %d-%d", draft.WordCount, brief.WordCount.Min, brief.WordCount.Max)

			valid, problems := draft.Validate()
			assert.True(t, valid, "problems: %v", problems)
		})
	}
}

func TestDrafterRequiresBrief(t *testing.T) {
	_, err := NewDrafter(testLogger).Invoke(context.Background(),
		Input{Request: testRequest(model.ContentTypeArticle), ContentType: model.ContentTypeArticle})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content brief required")
}

func TestVoiceCheckerPassesCleanDraft(t *testing.T) {
	_, brief, draft := produceDraft(t, testRequest(model.ContentTypeArticle), model.ContentTypeArticle)

	artifact, err := NewVoiceChecker(model.DefaultConfig().Producers.Voice, testLogger).
		Invoke(context.Background(), Input{Brief: brief, Draft: draft})
	require.NoError(t, err)

	check := artifact.(*model.VoiceCheckResult)
	assert.True(t, check.Passed, "issues: %v", check.Issues)
	assert.GreaterOrEqual(t, check.Score, model.VoiceScoreThreshold)
}

func TestVoiceCheckerFlagsViolations(t *testing.T) {
	longSentence := "This revolutionary product is the best and it " +
		strings.Repeat("keeps going and going ", 8) + "without a single pause in sight."
	draft := &model.DraftContent{
		Text:        longSentence,
		ContentType: model.ContentTypeArticle,
		WordCount:   len(strings.Fields(longSentence)),
		Format:      "markdown",
	}

	artifact, err := NewVoiceChecker(model.DefaultConfig().Producers.Voice, testLogger).
		Invoke(context.Background(), Input{Draft: draft})
	require.NoError(t, err)

	check := artifact.(*model.VoiceCheckResult)
	assert.False(t, check.Passed)
	assert.NotEmpty(t, check.Issues)

	joined := strings.Join(check.Issues, " ")
	assert.Contains(t, joined, `"revolutionary"`)
	assert.Contains(t, joined, "exceed 30 words")
}

func TestVoiceCheckerUsesGoverningTone(t *testing.T) {
	text := "You and we can simply streamline this together. " +
		"Let's just keep each customer solution in focus."
	draft := &model.DraftContent{
		Text:        text,
		ContentType: model.ContentTypeSocialPost,
		WordCount:   len(strings.Fields(text)),
		Format:      "markdown",
	}
	brief := &model.ContentBrief{ContentType: model.ContentTypeSocialPost, Tone: model.ToneTechnical}
	checker := NewVoiceChecker(model.DefaultConfig().Producers.Voice, testLogger)

	// The executor's governing tone wins over the track's own brief.
	artifact, err := checker.Invoke(context.Background(),
		Input{Brief: brief, Draft: draft, Tone: model.ToneConversational})
	require.NoError(t, err)
	check := artifact.(*model.VoiceCheckResult)
	assert.True(t, check.Passed, "issues: %v", check.Issues)

	// Without a governing tone the brief's technical tone applies and this
	// copy scores below threshold.
	artifact, err = checker.Invoke(context.Background(), Input{Brief: brief, Draft: draft})
	require.NoError(t, err)
	check = artifact.(*model.VoiceCheckResult)
	assert.False(t, check.Passed)
}

func TestVoiceCheckerRequiresDraft(t *testing.T) {
	_, err := NewVoiceChecker(model.DefaultConfig().Producers.Voice, testLogger).
		Invoke(context.Background(), Input{})
	require.Error(t, err)
}

func TestFormatterWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	req := testRequest(model.ContentTypeArticle)
	_, _, draft := produceDraft(t, req, model.ContentTypeArticle)

	artifact, err := NewFormatter(dir, testLogger).Invoke(context.Background(),
		Input{Request: req, ContentType: model.ContentTypeArticle, Draft: draft, Format: "markdown"})
	require.NoError(t, err)

	out := artifact.(*model.ProductionOutput)
	assert.Equal(t, "markdown", out.Format)
	assert.Equal(t, filepath.Join(dir, "developer-productivity-article.md"), out.Path)

	content, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, draft.Text, string(content))

	valid, problems := out.Validate()
	assert.True(t, valid, "problems: %v", problems)
}

func TestFormatterRendersHTML(t *testing.T) {
	dir := t.TempDir()
	req := testRequest(model.ContentTypeBlogPost)
	_, _, draft := produceDraft(t, req, model.ContentTypeBlogPost)

	artifact, err := NewFormatter(dir, testLogger).Invoke(context.Background(),
		Input{Request: req, ContentType: model.ContentTypeBlogPost, Draft: draft, Format: "html"})
	require.NoError(t, err)

	out := artifact.(*model.ProductionOutput)
	content, err := os.ReadFile(out.Path)
	require.NoError(t, err)

	html := string(content)
	assert.Contains(t, html, "<h1>")
	assert.Contains(t, html, "<h2>")
	assert.Contains(t, html, "<title>developer productivity</title>")
}

func TestFormatterRejectsUnknownFormat(t *testing.T) {
	req := testRequest(model.ContentTypeArticle)
	_, _, draft := produceDraft(t, req, model.ContentTypeArticle)

	_, err := NewFormatter(t.TempDir(), testLogger).Invoke(context.Background(),
		Input{Request: req, ContentType: model.ContentTypeArticle, Draft: draft, Format: "docx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "docx"`)
}

func TestFormatterCapabilities(t *testing.T) {
	f := NewFormatter(t.TempDir(), testLogger)
	assert.True(t, f.Supports("markdown"))
	assert.True(t, f.Supports("html"))
	assert.False(t, f.Supports("docx"))
	assert.Equal(t, []string{"html", "markdown", "text"}, f.Formats())
}

func TestDefaultRegistryEndToEnd(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Pipeline.OutputDir = t.TempDir()

	reg := DefaultRegistry(cfg, testLogger)
	exec := pipeline.NewExecutor(cfg, reg, nil, testLogger)

	res := exec.Execute(context.Background(), testRequest(model.ContentTypeArticle))

	require.Equal(t, model.StatusCompleted, res.Status)
	assert.True(t, res.Success)
	assert.Empty(t, res.GateFailures(), "every artifact should clear its gate")

	outputs := res.Outputs["production_outputs"].([]*model.ProductionOutput)
	require.Len(t, outputs, 1)
	_, err := os.Stat(outputs[0].Path)
	assert.NoError(t, err)
}
