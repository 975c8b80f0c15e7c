// Package producer implements the five pipeline roles: research, brief
// creation, drafting, voice checking and output production. Every producer is
// deterministic: the same input always yields the same artifact, so runs are
// repeatable and testable without external services.
package producer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"inkwell/internal/model"
)

// sourceProfile is one rung of the credibility ladder research draws from.
// Profiles are ordered most to least credible.
type sourceProfile struct {
	kind        string
	credibility float64
}

var sourceLadder = []sourceProfile{
	{"journal", 0.9},
	{"industry-report", 0.8},
	{"practitioner-blog", 0.65},
	{"conference-talk", 0.6},
	{"vendor-docs", 0.55},
	{"community-thread", 0.45},
	{"forum-post", 0.4},
	{"press-release", 0.35},
	{"aggregator", 0.3},
	{"social-repost", 0.25},
}

// Researcher synthesizes a research brief for a topic. Source count and the
// credibility floor come from configuration.
type Researcher struct {
	cfg    model.ResearchConfig
	logger *log.Logger
}

func NewResearcher(cfg model.ResearchConfig, logger *log.Logger) *Researcher {
	if cfg.MinSources < 2 {
		cfg.MinSources = 2
	}
	if cfg.MaxSources < cfg.MinSources {
		cfg.MaxSources = cfg.MinSources
	}
	return &Researcher{cfg: cfg, logger: logger}
}

func (r *Researcher) Invoke(ctx context.Context, in Input) (model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topic := in.Request.Topic
	slug := slugify(topic)

	var sources []model.Source
	for i, profile := range sourceLadder {
		if len(sources) >= r.cfg.MaxSources {
			break
		}
		if profile.credibility < r.cfg.MinCredibility && len(sources) >= r.cfg.MinSources {
			break
		}
		sources = append(sources, model.Source{
			URL:         fmt.Sprintf("https://research.example.com/%s/%s-%d", profile.kind, slug, i+1),
			Title:       fmt.Sprintf("%s on %s", labelFor(profile.kind), topic),
			Credibility: profile.credibility,
			KeyFacts: []string{
				fmt.Sprintf("Adoption of %s grew year over year", topic),
			},
		})
	}

	brief := &model.ResearchBrief{
		Topic:   topic,
		Sources: sources,
		KeyFindings: []string{
			fmt.Sprintf("%s is moving from early adoption into mainstream practice", topic),
			fmt.Sprintf("Teams investing in %s report measurable gains within two quarters", topic),
			fmt.Sprintf("The main blocker for %s remains organizational buy-in, not tooling", topic),
		},
		DataPoints: map[string]any{
			"source_count":           len(sources),
			"high_credibility_count": countHighCredibility(sources),
		},
		Gaps:      []string{"no longitudinal data beyond two years"},
		CreatedAt: time.Now().UTC(),
	}

	logf(r.logger, "INFO", "research", "brief_created topic=%q sources=%d", topic, len(sources))
	return brief, nil
}

func countHighCredibility(sources []model.Source) int {
	n := 0
	for _, s := range sources {
		if s.Credibility >= model.HighCredibility {
			n++
		}
	}
	return n
}

func labelFor(kind string) string {
	return titleCase(strings.ReplaceAll(kind, "-", " "))
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 48 {
		slug = slug[:48]
	}
	if slug == "" {
		slug = "topic"
	}
	return slug
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
