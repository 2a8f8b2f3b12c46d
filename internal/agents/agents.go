// Package agents implements the research pipeline capabilities: query
// planning, simulated web search, synthesis, and output validation. Each
// agent satisfies the runner.Agent contract and owns its recovery policy;
// the runtime never recovers on an agent's behalf.
package agents

import (
	"context"

	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/runner"
	"github.com/fyrsmithlabs/researchd/internal/tracing"
)

// Agent names as registered with the runner.
const (
	NamePlanner    = "query_planner"
	NameSearcher   = "web_searcher"
	NameSynthesis  = "synthesis"
	NameGuardrails = "output_guardrails"
)

// Completer is the completion surface the agents need. *llm.Client
// satisfies it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Deps carries the collaborators the agents are built from.
type Deps struct {
	// Chat backs the planner, searcher, and synthesis agents.
	Chat Completer

	// Validator backs the output guardrails agent. Falls back to Chat
	// when nil.
	Validator Completer

	// MaxSearches caps the number of queries the planner produces.
	MaxSearches int

	// Tracer, when set, wraps each agent in a span keyed by its name.
	Tracer *tracing.Tracer

	Logger *logging.Logger
}

// RegisterAll builds the four pipeline agents and registers them with r.
func RegisterAll(r *runner.Runner, deps Deps) {
	if deps.Validator == nil {
		deps.Validator = deps.Chat
	}
	if deps.MaxSearches < 1 {
		deps.MaxSearches = 2
	}
	log := deps.Logger
	if log == nil {
		log = logging.NewNop()
	}

	register := func(name string, a runner.Agent) {
		if deps.Tracer != nil {
			a = runner.Traced(deps.Tracer, a)
		}
		r.Register(name, a)
	}

	register(NamePlanner, NewPlanner(deps.Chat, deps.MaxSearches))
	register(NameSearcher, NewSearcher(NewSearchTool(deps.Chat)))
	register(NameSynthesis, NewSynthesizer(deps.Chat, log.Named("synthesis")))
	register(NameGuardrails, NewGuardrails(deps.Validator, log.Named("guardrails")))
}
