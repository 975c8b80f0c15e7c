package producer

import (
	"fmt"
	"log"
	"time"

	"inkwell/internal/model"
	"inkwell/internal/pipeline"
	"inkwell/internal/plan"
)

// Input aliases the executor's invocation payload so producer signatures stay
// short.
type Input = pipeline.Input

// DefaultRegistry wires a producer for every pipeline role from
// configuration.
func DefaultRegistry(cfg model.Config, logger *log.Logger) *pipeline.Registry {
	reg := pipeline.NewRegistry()
	reg.Register(plan.RoleResearch, NewResearcher(cfg.Producers.Research, logger))
	reg.Register(plan.RoleBrief, NewBriefMaker(logger))
	reg.Register(plan.RoleDraft, NewDrafter(logger))
	reg.Register(plan.RoleVoiceCheck, NewVoiceChecker(cfg.Producers.Voice, logger))
	reg.Register(plan.RoleFormat, NewFormatter(cfg.Pipeline.OutputDir, logger))
	return reg
}

func logf(logger *log.Logger, level, role, format string, args ...any) {
	if logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	logger.Printf("%s %s %s: %s", time.Now().Format(time.RFC3339), level, role, msg)
}
