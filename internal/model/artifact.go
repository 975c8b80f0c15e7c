package model

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactKind identifies which artifact type a pipeline step consumes or
// produces. The request itself is the input of the first step.
type ArtifactKind string

const (
	KindRequest          ArtifactKind = "request"
	KindResearchBrief    ArtifactKind = "research_brief"
	KindContentBrief     ArtifactKind = "content_brief"
	KindDraftContent     ArtifactKind = "draft_content"
	KindVoiceCheckResult ArtifactKind = "voice_check_result"
	KindProductionOutput ArtifactKind = "production_output"
)

// Artifact is implemented by every value passed between pipeline stages.
// Validate is the quality gate: it reports whether the artifact satisfies its
// own invariants and lists every violated one.
type Artifact interface {
	Kind() ArtifactKind
	Validate() (bool, []string)
}

// HighCredibility is the minimum credibility score for a source to count as
// high quality in the research gate.
const HighCredibility = 0.7

// VoiceScoreThreshold is the minimum brand-voice score for the voice gate.
const VoiceScoreThreshold = 0.7

// minDraftChars is the minimum trimmed length for draft text.
const minDraftChars = 100

// Source is a research source with credibility metadata.
type Source struct {
	URL         string   `yaml:"url" json:"url"`
	Title       string   `yaml:"title" json:"title"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	PublishedAt string   `yaml:"published_at,omitempty" json:"published_at,omitempty"`
	Credibility float64  `yaml:"credibility" json:"credibility"`
	KeyQuotes   []string `yaml:"key_quotes,omitempty" json:"key_quotes,omitempty"`
	KeyFacts    []string `yaml:"key_facts,omitempty" json:"key_facts,omitempty"`
}

// ResearchBrief is the research producer's output and the drafting chain's
// shared input.
type ResearchBrief struct {
	Topic       string         `yaml:"topic" json:"topic"`
	Sources     []Source       `yaml:"sources" json:"sources"`
	KeyFindings []string       `yaml:"key_findings" json:"key_findings"`
	DataPoints  map[string]any `yaml:"data_points,omitempty" json:"data_points,omitempty"`
	Gaps        []string       `yaml:"gaps,omitempty" json:"gaps,omitempty"`
	CreatedAt   time.Time      `yaml:"created_at" json:"created_at"`
}

func (b *ResearchBrief) Kind() ArtifactKind { return KindResearchBrief }

func (b *ResearchBrief) Validate() (bool, []string) {
	var problems []string
	if b.Topic == "" {
		problems = append(problems, "topic is required")
	}
	if len(b.Sources) < 2 {
		problems = append(problems, "at least 2 sources required")
	}
	if len(b.KeyFindings) == 0 {
		problems = append(problems, "key findings cannot be empty")
	}
	highQuality := 0
	for _, s := range b.Sources {
		if s.Credibility >= HighCredibility {
			highQuality++
		}
	}
	if highQuality < 1 {
		problems = append(problems, fmt.Sprintf("at least 1 source with credibility >= %.1f required", HighCredibility))
	}
	return len(problems) == 0, problems
}

// WordCountRange is an inclusive [Min, Max] target for draft length.
type WordCountRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

func (w WordCountRange) Valid() bool { return w.Min > 0 && w.Max >= w.Min }

func (w WordCountRange) Contains(n int) bool { return n >= w.Min && n <= w.Max }

// ContentBrief guides content creation for one content type.
type ContentBrief struct {
	ContentType      ContentType    `yaml:"content_type" json:"content_type"`
	TargetAudience   string         `yaml:"target_audience" json:"target_audience"`
	KeyMessages      []string       `yaml:"key_messages" json:"key_messages"`
	Tone             ToneType       `yaml:"tone" json:"tone"`
	RequiredSections []string       `yaml:"required_sections" json:"required_sections"`
	WordCount        WordCountRange `yaml:"word_count" json:"word_count"`
	SEOKeywords      []string       `yaml:"seo_keywords,omitempty" json:"seo_keywords,omitempty"`
	Research         *ResearchBrief `yaml:"-" json:"-"`
}

func (b *ContentBrief) Kind() ArtifactKind { return KindContentBrief }

func (b *ContentBrief) Validate() (bool, []string) {
	var problems []string
	if b.TargetAudience == "" {
		problems = append(problems, "target audience must be defined")
	}
	if len(b.KeyMessages) == 0 {
		problems = append(problems, "at least 1 key message required")
	}
	if len(b.RequiredSections) == 0 {
		problems = append(problems, "required sections must be defined")
	}
	if !b.WordCount.Valid() {
		problems = append(problems, fmt.Sprintf("invalid word count range [%d, %d]", b.WordCount.Min, b.WordCount.Max))
	}
	return len(problems) == 0, problems
}

// DraftContent is the drafting producer's output.
type DraftContent struct {
	Text        string        `yaml:"text" json:"text"`
	ContentType ContentType   `yaml:"content_type" json:"content_type"`
	WordCount   int           `yaml:"word_count" json:"word_count"`
	Format      string        `yaml:"format" json:"format"`
	Brief       *ContentBrief `yaml:"-" json:"-"`
}

func (d *DraftContent) Kind() ArtifactKind { return KindDraftContent }

func (d *DraftContent) Validate() (bool, []string) {
	var problems []string
	if len(strings.TrimSpace(d.Text)) < minDraftChars {
		problems = append(problems, "content is too short or empty")
	}
	if d.WordCount <= 0 {
		problems = append(problems, "invalid word count")
	}
	if d.Brief != nil && !d.Brief.WordCount.Contains(d.WordCount) {
		problems = append(problems, fmt.Sprintf("word count %d outside target range %d-%d",
			d.WordCount, d.Brief.WordCount.Min, d.Brief.WordCount.Max))
	}
	return len(problems) == 0, problems
}

// VoiceCheckResult is the voice-check producer's verdict on a draft.
type VoiceCheckResult struct {
	Passed      bool     `yaml:"passed" json:"passed"`
	Score       float64  `yaml:"score" json:"score"`
	Issues      []string `yaml:"issues,omitempty" json:"issues,omitempty"`
	Suggestions []string `yaml:"suggestions,omitempty" json:"suggestions,omitempty"`
}

func (v *VoiceCheckResult) Kind() ArtifactKind { return KindVoiceCheckResult }

func (v *VoiceCheckResult) Validate() (bool, []string) {
	var problems []string
	if v.Score < VoiceScoreThreshold {
		problems = append(problems, fmt.Sprintf("voice score %.2f below threshold %.1f", v.Score, VoiceScoreThreshold))
	}
	if !v.Passed {
		problems = append(problems, "voice check did not pass")
	}
	return len(problems) == 0, problems
}

// ProductionOutput is the final rendered file reference.
type ProductionOutput struct {
	Path        string      `yaml:"path" json:"path"`
	Format      string      `yaml:"format" json:"format"`
	ContentType ContentType `yaml:"content_type" json:"content_type"`
	CreatedAt   time.Time   `yaml:"created_at" json:"created_at"`
}

func (p *ProductionOutput) Kind() ArtifactKind { return KindProductionOutput }

func (p *ProductionOutput) Validate() (bool, []string) {
	var problems []string
	if p.Path == "" {
		problems = append(problems, "output path is required")
	}
	if p.Format == "" {
		problems = append(problems, "output format is required")
	}
	return len(problems) == 0, problems
}
