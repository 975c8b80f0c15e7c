// Package pipeline executes a plan step by step: it resolves each step's
// producer, invokes it with the accumulated run state, evaluates the step's
// quality gate, and records every invocation in the run ledger.
package pipeline

import (
	"context"
	"sort"

	"inkwell/internal/model"
	"inkwell/internal/plan"
)

// Input carries everything a producer may need for one invocation. Each
// producer reads the fields its stage consumes and ignores the rest.
type Input struct {
	Request     model.Request
	ContentType model.ContentType
	Research    *model.ResearchBrief
	Brief       *model.ContentBrief
	Draft       *model.DraftContent
	Format      string
	// Tone is the governing tone for voice checks. In a multi-target
	// campaign every track is judged against the first declared kind's
	// brief so the campaign reads as one voice.
	Tone model.ToneType
}

// Producer turns an Input into the artifact its stage is responsible for.
// A returned error is operational (the producer could not do its work) and
// ends the run; artifact quality problems are the gate's concern, not the
// producer's.
type Producer interface {
	Invoke(ctx context.Context, in Input) (model.Artifact, error)
}

// Registry resolves producers by role. Registration happens at startup;
// lookups during a run are read-only.
type Registry struct {
	producers map[plan.Role]Producer
}

func NewRegistry() *Registry {
	return &Registry{producers: make(map[plan.Role]Producer)}
}

// Register binds a producer to a role, replacing any previous binding.
func (r *Registry) Register(role plan.Role, p Producer) {
	r.producers[role] = p
}

// Lookup returns the producer for a role.
func (r *Registry) Lookup(role plan.Role) (Producer, bool) {
	p, ok := r.producers[role]
	return p, ok
}

// Roles returns the registered roles in sorted order.
func (r *Registry) Roles() []plan.Role {
	roles := make([]plan.Role, 0, len(r.producers))
	for role := range r.producers {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
