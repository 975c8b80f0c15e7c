// Package model defines the data structures passed between pipeline stages:
// the inbound request, the artifacts each producer emits, and run bookkeeping.
package model

import (
	"fmt"
	"time"
)

// ContentType identifies a kind of content a request can ask for.
type ContentType string

const (
	ContentTypeArticle      ContentType = "article"
	ContentTypeBlogPost     ContentType = "blog_post"
	ContentTypeSocialPost   ContentType = "social_post"
	ContentTypePresentation ContentType = "presentation"
	ContentTypeEmail        ContentType = "email"
	ContentTypeNewsletter   ContentType = "newsletter"
	ContentTypeVideoScript  ContentType = "video_script"
	ContentTypeWhitepaper   ContentType = "whitepaper"
	ContentTypeCaseStudy    ContentType = "case_study"
)

var validContentTypes = map[ContentType]bool{
	ContentTypeArticle:      true,
	ContentTypeBlogPost:     true,
	ContentTypeSocialPost:   true,
	ContentTypePresentation: true,
	ContentTypeEmail:        true,
	ContentTypeNewsletter:   true,
	ContentTypeVideoScript:  true,
	ContentTypeWhitepaper:   true,
	ContentTypeCaseStudy:    true,
}

// ParseContentType validates a raw string into a ContentType.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(s)
	if !validContentTypes[ct] {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return ct, nil
}

// ToneType is the voice a piece of content is written in.
type ToneType string

const (
	ToneProfessional   ToneType = "professional"
	ToneConversational ToneType = "conversational"
	ToneTechnical      ToneType = "technical"
	TonePersuasive     ToneType = "persuasive"
	ToneEducational    ToneType = "educational"
	ToneInspirational  ToneType = "inspirational"
)

var validTones = map[ToneType]bool{
	ToneProfessional:   true,
	ToneConversational: true,
	ToneTechnical:      true,
	TonePersuasive:     true,
	ToneEducational:    true,
	ToneInspirational:  true,
}

// ParseToneType validates a raw string into a ToneType.
func ParseToneType(s string) (ToneType, error) {
	t := ToneType(s)
	if !validTones[t] {
		return "", fmt.Errorf("unknown tone %q", s)
	}
	return t, nil
}

// Priority tags for requests. Priority does not change execution order
// within a run; it is carried for the job-status boundary.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Request is a user request to produce content. It is immutable once
// submitted; the executor only reads it.
type Request struct {
	Topic        string         `yaml:"topic" json:"topic"`
	ContentTypes []ContentType  `yaml:"content_types" json:"content_types"`
	Priority     string         `yaml:"priority" json:"priority"`
	Deadline     *time.Time     `yaml:"deadline,omitempty" json:"deadline,omitempty"`
	Context      map[string]any `yaml:"context,omitempty" json:"context,omitempty"`
}

// Validate checks that the request is well-formed enough to be planned.
func (r Request) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("request topic is required")
	}
	if len(r.ContentTypes) == 0 {
		return fmt.Errorf("request needs at least one content type")
	}
	for _, ct := range r.ContentTypes {
		if !validContentTypes[ct] {
			return fmt.Errorf("unknown content type %q", ct)
		}
	}
	return nil
}

// ContextString returns a string value from the free-form context map.
func (r Request) ContextString(key string) (string, bool) {
	if r.Context == nil {
		return "", false
	}
	v, ok := r.Context[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
