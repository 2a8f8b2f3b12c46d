// Package orchestrator drives the research pipeline: plan queries, search,
// synthesize, validate, format. It is the sole consumer a front end should
// depend on.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/researchd/internal/agents"
	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/models"
	"github.com/fyrsmithlabs/researchd/internal/report"
	"github.com/fyrsmithlabs/researchd/internal/runner"
	"github.com/fyrsmithlabs/researchd/internal/tracing"
)

// Options configures a Driver.
type Options struct {
	// Runner dispatches the pipeline agents. Required; the agents named in
	// package agents must already be registered.
	Runner *runner.Runner

	Tracer *tracing.Tracer
	Logger *logging.Logger

	// MaxSearches caps the number of searches per run.
	MaxSearches int

	// IncludeValidation runs the guardrails agent on the report.
	IncludeValidation bool

	// ParallelSearch dispatches the planned searches concurrently instead
	// of one at a time.
	ParallelSearch bool

	// StepTimeout bounds each agent dispatch. Zero disables it.
	StepTimeout time.Duration
}

// Driver runs the fixed research pipeline and streams progress.
type Driver struct {
	runner            *runner.Runner
	tracer            *tracing.Tracer
	log               *logging.Logger
	maxSearches       int
	includeValidation bool
	parallelSearch    bool
	stepTimeout       time.Duration
}

// New creates a Driver.
func New(opts Options) *Driver {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.NewNop()
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	maxSearches := opts.MaxSearches
	if maxSearches < 1 {
		maxSearches = 2
	}
	return &Driver{
		runner:            opts.Runner,
		tracer:            tracer,
		log:               log,
		maxSearches:       maxSearches,
		includeValidation: opts.IncludeValidation,
		parallelSearch:    opts.ParallelSearch,
		stepTimeout:       opts.StepTimeout,
	}
}

// Run starts a research run for query and returns its progress stream.
//
// The stream is lazy and single-pass: lines arrive as the pipeline
// advances, and the final element(s) carry the formatted report, which
// starts with report.Header. On failure the terminal element is a single
// "research failed: ..." line — the stream never ends silently on error.
// Each call produces a fresh, independent stream.
func (d *Driver) Run(ctx context.Context, query string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		d.run(ctx, query, out)
	}()
	return out
}

func (d *Driver) run(ctx context.Context, query string, out chan<- string) {
	emit := func(line string) bool {
		select {
		case out <- line:
			return true
		case <-ctx.Done():
			return false
		}
	}

	ctx = logging.WithRequestID(ctx, tracing.NewTraceID())
	ctx, span := d.tracer.Span(ctx, "research orchestration")
	var err error
	defer func() { span.End(err) }()

	req := models.NewResearchRequest(query)
	req.MaxSearches = d.maxSearches
	req.IncludeValidation = d.includeValidation

	if !emit(fmt.Sprintf("starting research for: %s", query)) {
		err = ctx.Err()
		return
	}

	// Stage 1: plan search queries.
	emit("planning: building search strategy")
	planned, err := d.step(ctx, agents.NamePlanner, query)
	if err != nil {
		emit(failLine(err))
		return
	}
	queries, ok := planned.([]models.SearchQuery)
	if !ok || len(queries) == 0 {
		err = fmt.Errorf("planner returned no usable queries")
		emit(failLine(err))
		return
	}
	for _, q := range queries {
		emit(fmt.Sprintf("planning: planned query: %s", clip(q.Query, 50)))
	}

	// Stage 2: run the searches.
	results, err := d.search(ctx, queries, emit)
	if err != nil {
		emit(failLine(err))
		return
	}

	// Stage 3: synthesize.
	emit("synthesis: merging research findings")
	synthesized, err := d.step(ctx, agents.NameSynthesis, models.SynthesisInput{
		Query:   query,
		Results: results,
	})
	if err != nil {
		emit(failLine(err))
		return
	}
	rep, ok := synthesized.(models.ResearchReport)
	if !ok {
		err = fmt.Errorf("synthesis returned unexpected type %T", synthesized)
		emit(failLine(err))
		return
	}
	emit(fmt.Sprintf("synthesis: report generated: %s", rep.Title))

	// Stage 4: validate (optional).
	var validation *models.ValidationResult
	if d.includeValidation {
		emit("validation: checking content safety")
		validated, stepErr := d.step(ctx, agents.NameGuardrails, rep)
		if stepErr != nil {
			err = stepErr
			emit(failLine(err))
			return
		}
		if v, ok := validated.(models.ValidationResult); ok {
			validation = &v
			verdict := "clean"
			if !v.Clean {
				verdict = "issues detected"
			}
			emit(fmt.Sprintf("validation: completed: %s", verdict))
		}
		rep.Validation = validation
	}

	// Stage 5: format and stream the report body.
	emit("formatting: compiling final report")
	emit(report.Format(req, rep, validation))
}

// search runs the planned queries, sequentially or concurrently, and
// collects results in query order.
func (d *Driver) search(ctx context.Context, queries []models.SearchQuery, emit func(string) bool) ([]models.SearchResult, error) {
	if len(queries) > d.maxSearches {
		queries = queries[:d.maxSearches]
	}

	if d.parallelSearch {
		emit(fmt.Sprintf("search: running %d searches concurrently", len(queries)))
		tasks := make([]runner.Step, len(queries))
		for i, q := range queries {
			tasks[i] = runner.Step{Agent: agents.NameSearcher, Input: q}
		}
		raw, err := d.runner.RunParallel(ctx, tasks)
		if err != nil {
			return nil, err
		}
		results := make([]models.SearchResult, len(raw))
		for i, r := range raw {
			res, ok := r.(models.SearchResult)
			if !ok {
				return nil, fmt.Errorf("searcher returned unexpected type %T", r)
			}
			results[i] = res
			emit(fmt.Sprintf("search %d/%d: completed: %s", i+1, len(raw), res.Status))
		}
		return results, nil
	}

	results := make([]models.SearchResult, 0, len(queries))
	for i, q := range queries {
		emit(fmt.Sprintf("search %d/%d: %s", i+1, len(queries), clip(q.Query, 50)))
		raw, err := d.step(ctx, agents.NameSearcher, q)
		if err != nil {
			return nil, err
		}
		res, ok := raw.(models.SearchResult)
		if !ok {
			return nil, fmt.Errorf("searcher returned unexpected type %T", raw)
		}
		results = append(results, res)
		emit(fmt.Sprintf("search %d/%d: completed: %s", i+1, len(queries), res.Status))
	}
	return results, nil
}

// step dispatches one agent, applying the per-step timeout when configured.
func (d *Driver) step(ctx context.Context, agent string, input any) (any, error) {
	if d.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.stepTimeout)
		defer cancel()
	}
	return d.runner.Run(ctx, agent, input)
}

func failLine(err error) string {
	return fmt.Sprintf("research failed: %v", err)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
