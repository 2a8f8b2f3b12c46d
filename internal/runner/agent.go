package runner

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/researchd/internal/tracing"
)

// ErrUnknownAgent indicates a dispatch target that was never registered.
var ErrUnknownAgent = errors.New("agent not registered")

// Agent is the contract every capability in the pipeline satisfies: one
// input, one output, an error on failure. Name and Description exist for
// introspection only and never influence dispatch.
type Agent interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input any) (any, error)
}

// funcAgent adapts a closure into an Agent.
type funcAgent struct {
	name        string
	description string
	fn          func(ctx context.Context, input any) (any, error)
}

// NewAgent builds an Agent from a name, description, and invocation
// function. This is the explicit-composition replacement for decorator
// metadata tagging.
func NewAgent(name, description string, fn func(ctx context.Context, input any) (any, error)) Agent {
	return &funcAgent{name: name, description: description, fn: fn}
}

func (a *funcAgent) Name() string        { return a.name }
func (a *funcAgent) Description() string { return a.description }

func (a *funcAgent) Execute(ctx context.Context, input any) (any, error) {
	return a.fn(ctx, input)
}

// Traced decorates an agent so every Execute runs inside a span keyed by
// the agent's own name. Decoration policy, not part of the contract: the
// dispatcher already brackets the whole dispatch in its own span.
func Traced(tracer *tracing.Tracer, a Agent) Agent {
	return &tracedAgent{inner: a, tracer: tracer}
}

type tracedAgent struct {
	inner  Agent
	tracer *tracing.Tracer
}

func (a *tracedAgent) Name() string        { return a.inner.Name() }
func (a *tracedAgent) Description() string { return a.inner.Description() }

func (a *tracedAgent) Execute(ctx context.Context, input any) (out any, err error) {
	ctx, span := a.tracer.Span(ctx, a.inner.Name())
	defer func() { span.End(err) }()
	return a.inner.Execute(ctx, input)
}
