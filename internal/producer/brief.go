package producer

import (
	"context"
	"errors"
	"log"
	"strings"

	"inkwell/internal/model"
)

// briefTemplate is the per-kind starting point for a content brief.
type briefTemplate struct {
	audience string
	tone     model.ToneType
	sections []string
	words    model.WordCountRange
}

var briefTemplates = map[model.ContentType]briefTemplate{
	model.ContentTypeArticle: {
		audience: "General professional audience",
		tone:     model.ToneEducational,
		sections: []string{"Engaging hook", "Problem statement", "Main content", "Examples", "Conclusion with key takeaways"},
		words:    model.WordCountRange{Min: 800, Max: 1500},
	},
	model.ContentTypeBlogPost: {
		audience: "General professional audience",
		tone:     model.ToneConversational,
		sections: []string{"Catchy intro", "Main points", "Practical tips", "Call to action"},
		words:    model.WordCountRange{Min: 600, Max: 1200},
	},
	model.ContentTypeSocialPost: {
		audience: "Social followers",
		tone:     model.ToneConversational,
		sections: []string{"Hook", "Main message", "Call to action"},
		words:    model.WordCountRange{Min: 50, Max: 300},
	},
	model.ContentTypeWhitepaper: {
		audience: "Business leaders and decision-makers",
		tone:     model.ToneProfessional,
		sections: []string{"Executive summary", "Problem analysis", "Solution framework", "Case studies", "Implementation guidance", "Conclusion"},
		words:    model.WordCountRange{Min: 2000, Max: 5000},
	},
	model.ContentTypeEmail: {
		audience: "Subscribers",
		tone:     model.ToneConversational,
		sections: []string{"Subject line", "Body", "Call to action"},
		words:    model.WordCountRange{Min: 100, Max: 400},
	},
	model.ContentTypeNewsletter: {
		audience: "Subscribers",
		tone:     model.ToneConversational,
		sections: []string{"Headline", "Top story", "Roundup", "Call to action"},
		words:    model.WordCountRange{Min: 300, Max: 800},
	},
	model.ContentTypePresentation: {
		audience: "Business leaders and decision-makers",
		tone:     model.ToneProfessional,
		sections: []string{"Title slide", "Agenda", "Key points", "Supporting data", "Next steps"},
		words:    model.WordCountRange{Min: 500, Max: 1000},
	},
	model.ContentTypeVideoScript: {
		audience: "General professional audience",
		tone:     model.ToneEducational,
		sections: []string{"Cold open", "Core walkthrough", "Recap", "Outro"},
		words:    model.WordCountRange{Min: 600, Max: 1200},
	},
	model.ContentTypeCaseStudy: {
		audience: "Business leaders and decision-makers",
		tone:     model.ToneProfessional,
		sections: []string{"Customer background", "Challenge", "Approach", "Results", "Takeaways"},
		words:    model.WordCountRange{Min: 800, Max: 2000},
	},
}

// BriefMaker turns a research brief into a content brief for one content
// kind. Request context can override the template's audience and tone.
type BriefMaker struct {
	logger *log.Logger
}

func NewBriefMaker(logger *log.Logger) *BriefMaker {
	return &BriefMaker{logger: logger}
}

func (p *BriefMaker) Invoke(ctx context.Context, in Input) (model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Research == nil {
		return nil, errors.New("research brief required")
	}

	tpl, ok := briefTemplates[in.ContentType]
	if !ok {
		tpl = briefTemplates[model.ContentTypeArticle]
	}

	audience := tpl.audience
	if v, ok := in.Request.ContextString("target_audience"); ok && v != "" {
		audience = v
	}

	tone := tpl.tone
	if v, ok := in.Request.ContextString("tone"); ok && v != "" {
		parsed, err := model.ParseToneType(v)
		if err != nil {
			logf(p.logger, "WARN", "brief", "tone_override_ignored kind=%s error=%v", in.ContentType, err)
		} else {
			tone = parsed
		}
	}

	brief := &model.ContentBrief{
		ContentType:      in.ContentType,
		TargetAudience:   audience,
		KeyMessages:      keyMessages(in.Research),
		Tone:             tone,
		RequiredSections: append([]string(nil), tpl.sections...),
		WordCount:        tpl.words,
		SEOKeywords:      seoKeywords(in.Research),
		Research:         in.Research,
	}

	logf(p.logger, "INFO", "brief", "brief_created kind=%s messages=%d tone=%s",
		in.ContentType, len(brief.KeyMessages), tone)
	return brief, nil
}

// keyMessages takes the top research findings, falling back to source facts
// when research produced no findings.
func keyMessages(research *model.ResearchBrief) []string {
	messages := research.KeyFindings
	if len(messages) > 5 {
		messages = messages[:5]
	}
	if len(messages) > 0 {
		return append([]string(nil), messages...)
	}
	for _, src := range research.Sources {
		if len(src.KeyFacts) > 0 {
			messages = append(messages, src.KeyFacts[0])
		}
		if len(messages) == 3 {
			break
		}
	}
	if len(messages) == 0 {
		messages = []string{"No key messages extracted, requires manual input"}
	}
	return messages
}

// seoKeywords pulls distinct keywords from the topic and findings, longest
// words first heuristic, capped at 10.
func seoKeywords(research *model.ResearchBrief) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(word string, minLen int) {
		word = strings.ToLower(strings.Trim(word, ".,;:!?"))
		if len(word) <= minLen || seen[word] {
			return
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	for _, w := range strings.Fields(research.Topic) {
		add(w, 3)
	}
	for _, finding := range research.KeyFindings {
		for _, w := range strings.Fields(finding) {
			add(w, 5)
		}
	}
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	return keywords
}
