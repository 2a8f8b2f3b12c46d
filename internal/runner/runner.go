// Package runner implements the agent orchestration runtime: a registry of
// named agents, a dispatcher that records every invocation in an append-only
// execution history, and sequential and parallel execution helpers.
//
// The history is a pure audit trail. It is never consulted to alter dispatch
// behavior, and recording is never allowed to mask the real outcome of a
// call: the caller always sees the agent's true result or error.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/tracing"
)

// summaryLimit bounds the input/result snapshots stored per record, keeping
// the history bounded in memory regardless of payload size.
const summaryLimit = 500

// Status is the recorded outcome of a dispatch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Record is an immutable snapshot of one dispatch attempt. Result holds the
// truncated string form of the output on success and the error message on
// failure.
type Record struct {
	Agent  string `json:"agent_name"`
	Input  string `json:"input_data"`
	Result string `json:"result"`
	Status Status `json:"status"`
}

// Step names an agent and the input to dispatch to it.
type Step struct {
	Agent string
	Input any
}

// Options configures a Runner. All fields are optional.
type Options struct {
	Tracer  *tracing.Tracer
	Logger  *logging.Logger
	Metrics *Metrics
}

// Runner dispatches named agents and records every attempt.
type Runner struct {
	tracer  *tracing.Tracer
	log     *logging.Logger
	metrics *Metrics

	regMu  sync.RWMutex
	agents map[string]Agent

	histMu  sync.Mutex
	history []Record
}

// New creates a Runner.
func New(opts Options) *Runner {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.NewNop()
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{
		tracer:  tracer,
		log:     log,
		metrics: opts.Metrics,
		agents:  make(map[string]Agent),
	}
}

// Register stores an agent under name. Re-registering an existing name
// silently overwrites; a warning is logged for visibility.
func (r *Runner) Register(name string, agent Agent) {
	r.regMu.Lock()
	_, exists := r.agents[name]
	r.agents[name] = agent
	r.regMu.Unlock()

	if exists {
		r.log.Warn(context.Background(), "agent re-registered, previous implementation replaced",
			zap.String("agent", name))
	}
}

// Lookup returns the agent registered under name. Absence is not an error
// here; Run converts it into ErrUnknownAgent.
func (r *Runner) Lookup(name string) (Agent, bool) {
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	agent, ok := r.agents[name]
	return agent, ok
}

// Agents returns the registered agent names, for introspection.
func (r *Runner) Agents() []string {
	r.regMu.RLock()
	defer r.regMu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	return names
}

// Run dispatches one agent by name.
//
// Every call, successful or not, appends exactly one Record to the history,
// and the caller always receives the true outcome: the agent's output, the
// agent's error unchanged, or ErrUnknownAgent when the name is not
// registered (in which case no agent is ever invoked).
func (r *Runner) Run(ctx context.Context, name string, input any) (out any, err error) {
	ctx, span := r.tracer.Span(ctx, "run "+name)
	defer func() { span.End(err) }()
	start := time.Now()

	agent, ok := r.Lookup(name)
	if !ok {
		err = fmt.Errorf("%w: %q", ErrUnknownAgent, name)
		r.append(Record{
			Agent:  name,
			Input:  summarize(input),
			Result: truncate(err.Error()),
			Status: StatusError,
		})
		r.metrics.observe(name, StatusError, time.Since(start))
		return nil, err
	}

	out, err = agent.Execute(ctx, input)
	if err != nil {
		r.append(Record{
			Agent:  name,
			Input:  summarize(input),
			Result: truncate(err.Error()),
			Status: StatusError,
		})
		r.metrics.observe(name, StatusError, time.Since(start))
		return nil, err
	}

	r.append(Record{
		Agent:  name,
		Input:  summarize(input),
		Result: summarize(out),
		Status: StatusSuccess,
	})
	r.metrics.observe(name, StatusSuccess, time.Since(start))
	return out, nil
}

// RunSequence dispatches steps strictly in order and collects results in
// call order. The first failure aborts the sequence: later steps are never
// attempted and the original error propagates. Records for completed steps
// remain in the history.
func (r *Runner) RunSequence(ctx context.Context, steps []Step) (results []any, err error) {
	ctx, span := r.tracer.Span(ctx, "run sequence")
	defer func() { span.End(err) }()

	results = make([]any, 0, len(steps))
	for _, step := range steps {
		out, runErr := r.Run(ctx, step.Agent, step.Input)
		if runErr != nil {
			return nil, runErr
		}
		results = append(results, out)
	}
	return results, nil
}

// RunParallel dispatches all tasks concurrently and waits for all of them.
// Results come back indexed by task position, not completion order. If any
// task fails the whole batch fails with the first observed error and no
// partial results are returned — though every launched task still runs to
// completion and leaves its record in the history.
func (r *Runner) RunParallel(ctx context.Context, tasks []Step) (results []any, err error) {
	ctx, span := r.tracer.Span(ctx, "run parallel")
	defer func() { span.End(err) }()

	results = make([]any, len(tasks))

	// Zero-value group: no context cancellation, so a sibling failure does
	// not cut short tasks already in flight and each one gets its record.
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			out, runErr := r.Run(ctx, task.Agent, task.Input)
			if runErr != nil {
				return runErr
			}
			results[i] = out
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// History returns a copy of the execution history in call order.
func (r *Runner) History() []Record {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	return append([]Record(nil), r.history...)
}

// ClearHistory empties the execution history.
func (r *Runner) ClearHistory() {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	r.history = nil
}

func (r *Runner) append(rec Record) {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	r.history = append(r.history, rec)
}

// summarize renders a value as a string bounded by summaryLimit.
func summarize(v any) string {
	return truncate(fmt.Sprintf("%v", v))
}

// truncate cuts s to summaryLimit bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= summaryLimit {
		return s
	}
	cut := summaryLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
