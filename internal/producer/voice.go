package producer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"inkwell/internal/model"
)

// Brand vocabulary. Avoided terms are substring matches against the lowered
// draft text.
var (
	preferredTerms = []string{"customer", "solution", "innovative", "data-driven", "streamline"}
	avoidedTerms   = []string{"cheap", "easy", "best", "revolutionary", "game-changing"}
)

// toneKeywords is the vocabulary expected for each tone.
var toneKeywords = map[model.ToneType][]string{
	model.ToneProfessional:   {"implement", "strategy", "optimize", "analyze", "framework"},
	model.ToneConversational: {"you", "we", "let's", "simply", "just"},
	model.ToneTechnical:      {"algorithm", "architecture", "protocol", "implementation", "system"},
	model.ToneEducational:    {"learn", "understand", "example", "step", "guide"},
	model.TonePersuasive:     {"proven", "results", "transform", "success", "effective"},
	model.ToneInspirational:  {"achieve", "potential", "vision", "innovate", "empower"},
}

const (
	recommendedAvgSentenceWords = 15
	longSentenceThreshold       = 30
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// VoiceChecker scores a draft against brand voice guidelines: vocabulary,
// sentence structure and tone alignment. The overall score is the mean of the
// three checks; a draft passes when the score clears the configured threshold
// and no hard issues were raised.
type VoiceChecker struct {
	threshold float64
	logger    *log.Logger
}

func NewVoiceChecker(cfg model.VoiceConfig, logger *log.Logger) *VoiceChecker {
	threshold := cfg.PassThreshold
	if threshold <= 0 {
		threshold = model.VoiceScoreThreshold
	}
	return &VoiceChecker{threshold: threshold, logger: logger}
}

func (p *VoiceChecker) Invoke(ctx context.Context, in Input) (model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Draft == nil {
		return nil, errors.New("draft content required")
	}

	// The executor sets Tone to the campaign's governing tone; fall back to
	// the draft's own brief for direct invocations.
	tone := in.Tone
	if tone == "" && in.Brief != nil {
		tone = in.Brief.Tone
	}
	if tone == "" && in.Draft.Brief != nil {
		tone = in.Draft.Brief.Tone
	}

	var issues, suggestions []string
	var scores []float64
	record := func(score float64, checkIssues, checkSuggestions []string) {
		scores = append(scores, score)
		issues = append(issues, checkIssues...)
		suggestions = append(suggestions, checkSuggestions...)
	}

	record(checkVocabulary(in.Draft.Text))
	record(checkSentenceLength(in.Draft.Text))
	record(checkToneAlignment(in.Draft.Text, tone))

	total := 0.0
	for _, s := range scores {
		total += s
	}
	score := total / float64(len(scores))
	passed := score >= p.threshold && len(issues) == 0

	logf(p.logger, "INFO", "voice", "check_done kind=%s score=%.2f passed=%v issues=%d",
		in.ContentType, score, passed, len(issues))
	return &model.VoiceCheckResult{
		Passed:      passed,
		Score:       score,
		Issues:      issues,
		Suggestions: suggestions,
	}, nil
}

func checkVocabulary(text string) (float64, []string, []string) {
	lower := strings.ToLower(text)
	var issues, suggestions []string

	avoided := 0
	for _, term := range avoidedTerms {
		if strings.Contains(lower, term) {
			avoided++
			issues = append(issues, fmt.Sprintf("avoid using %q", term))
			suggestions = append(suggestions, fmt.Sprintf("replace %q with brand-preferred terminology", term))
		}
	}
	preferred := 0
	for _, term := range preferredTerms {
		if strings.Contains(lower, term) {
			preferred++
		}
	}

	total := avoided + preferred
	if total == 0 {
		total = 1
	}
	return 1.0 - float64(avoided)/float64(total), issues, suggestions
}

func checkSentenceLength(text string) (float64, []string, []string) {
	var lengths []int
	for _, raw := range sentenceSplit.Split(text, -1) {
		if s := strings.TrimSpace(raw); s != "" {
			lengths = append(lengths, len(strings.Fields(s)))
		}
	}
	if len(lengths) == 0 {
		return 1.0, nil, nil
	}

	totalWords, long := 0, 0
	for _, n := range lengths {
		totalWords += n
		if n > longSentenceThreshold {
			long++
		}
	}
	avg := float64(totalWords) / float64(len(lengths))

	var issues, suggestions []string
	if long > 0 {
		issues = append(issues, fmt.Sprintf("%d sentence(s) exceed %d words", long, longSentenceThreshold))
		suggestions = append(suggestions, "break long sentences into shorter ones")
	}
	if avg > recommendedAvgSentenceWords*1.5 {
		suggestions = append(suggestions, fmt.Sprintf("average sentence length %.1f words is high, aim for %d",
			avg, recommendedAvgSentenceWords))
	}

	score := 1.0 - (avg-recommendedAvgSentenceWords)/20
	return clamp01(score), issues, suggestions
}

func checkToneAlignment(text string, tone model.ToneType) (float64, []string, []string) {
	keywords, ok := toneKeywords[tone]
	if !ok {
		return 1.0, nil, nil
	}
	lower := strings.ToLower(text)

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	expected := float64(len(keywords)) * 0.3
	if expected < 1 {
		expected = 1
	}
	score := clamp01(float64(matches) / expected)

	var suggestions []string
	if score < 0.5 {
		suggestions = append(suggestions, fmt.Sprintf("content may not match %s tone, consider using: %s",
			tone, strings.Join(keywords[:3], ", ")))
	}
	return score, nil, suggestions
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
