package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/researchd/internal/agents"
	"github.com/fyrsmithlabs/researchd/internal/models"
	"github.com/fyrsmithlabs/researchd/internal/report"
	"github.com/fyrsmithlabs/researchd/internal/runner"
)

// pipelineRunner registers stub agents for a full happy-path pipeline. Each
// stub can be overridden per test before building the driver.
type pipelineStubs struct {
	plan       func(ctx context.Context, input any) (any, error)
	search     func(ctx context.Context, input any) (any, error)
	synthesize func(ctx context.Context, input any) (any, error)
	validate   func(ctx context.Context, input any) (any, error)
}

func defaultStubs() *pipelineStubs {
	return &pipelineStubs{
		plan: func(ctx context.Context, input any) (any, error) {
			query := input.(string)
			return []models.SearchQuery{
				{Query: query, Priority: 1},
				{Query: query + " latest developments", Priority: 2},
			}, nil
		},
		search: func(ctx context.Context, input any) (any, error) {
			q := input.(models.SearchQuery)
			return models.SearchResult{
				Query:     q.Query,
				Results:   "findings for " + q.Query,
				Status:    models.SearchSuccess,
				Timestamp: time.Now(),
			}, nil
		},
		synthesize: func(ctx context.Context, input any) (any, error) {
			in := input.(models.SynthesisInput)
			return models.ResearchReport{
				Title:            "Report on " + in.Query,
				ExecutiveSummary: "summary",
				KeyFindings:      []string{"finding"},
				Confidence:       0.9,
				GeneratedAt:      time.Now(),
			}, nil
		},
		validate: func(ctx context.Context, input any) (any, error) {
			return models.ValidationResult{
				Clean:      true,
				Message:    "Content validation completed",
				Confidence: 0.95,
				Timestamp:  time.Now(),
			}, nil
		},
	}
}

func (s *pipelineStubs) runner() *runner.Runner {
	r := runner.New(runner.Options{})
	r.Register(agents.NamePlanner, runner.NewAgent(agents.NamePlanner, "", s.plan))
	r.Register(agents.NameSearcher, runner.NewAgent(agents.NameSearcher, "", s.search))
	r.Register(agents.NameSynthesis, runner.NewAgent(agents.NameSynthesis, "", s.synthesize))
	r.Register(agents.NameGuardrails, runner.NewAgent(agents.NameGuardrails, "", s.validate))
	return r
}

func collect(t *testing.T, stream <-chan string) []string {
	t.Helper()
	var lines []string
	for line := range stream {
		lines = append(lines, line)
	}
	require.NotEmpty(t, lines, "stream must carry at least one element")
	return lines
}

func TestRunStreamsProgressAndReport(t *testing.T) {
	stubs := defaultStubs()
	d := New(Options{
		Runner:            stubs.runner(),
		MaxSearches:       2,
		IncludeValidation: true,
	})

	lines := collect(t, d.Run(context.Background(), "go concurrency"))

	assert.Equal(t, "starting research for: go concurrency", lines[0])

	// The report body is the terminal element and is distinguishable from
	// progress lines by its header.
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, report.Header))
	assert.Contains(t, last, "Report on go concurrency")
	assert.Contains(t, last, "**Status**: Clean")
	for _, line := range lines[:len(lines)-1] {
		assert.False(t, strings.HasPrefix(line, report.Header))
	}

	// Progress covers every stage.
	joined := strings.Join(lines[:len(lines)-1], "\n")
	assert.Contains(t, joined, "planning:")
	assert.Contains(t, joined, "search 1/2")
	assert.Contains(t, joined, "search 2/2")
	assert.Contains(t, joined, "synthesis:")
	assert.Contains(t, joined, "validation:")
	assert.Contains(t, joined, "formatting:")
}

func TestRunSkipsValidationWhenDisabled(t *testing.T) {
	stubs := defaultStubs()
	validated := false
	stubs.validate = func(ctx context.Context, input any) (any, error) {
		validated = true
		return models.ValidationResult{Clean: true}, nil
	}
	d := New(Options{Runner: stubs.runner(), MaxSearches: 2})

	lines := collect(t, d.Run(context.Background(), "topic"))

	assert.False(t, validated, "guardrails must not run when validation is off")
	assert.NotContains(t, strings.Join(lines, "\n"), "validation:")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], report.Header))
}

func TestRunFailureIsTerminal(t *testing.T) {
	stubs := defaultStubs()
	stubs.search = func(ctx context.Context, input any) (any, error) {
		return nil, errors.New("search backend down")
	}
	d := New(Options{Runner: stubs.runner(), MaxSearches: 2})

	lines := collect(t, d.Run(context.Background(), "topic"))

	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "research failed:"))
	assert.Contains(t, last, "search backend down")
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, report.Header), "no report on failure")
	}
}

func TestRunPlannerFailure(t *testing.T) {
	stubs := defaultStubs()
	stubs.plan = func(ctx context.Context, input any) (any, error) {
		return nil, errors.New("planner exploded")
	}
	d := New(Options{Runner: stubs.runner(), MaxSearches: 2})

	lines := collect(t, d.Run(context.Background(), "topic"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "research failed:"))
}

func TestRunIsRestartable(t *testing.T) {
	stubs := defaultStubs()
	d := New(Options{Runner: stubs.runner(), MaxSearches: 2})

	first := collect(t, d.Run(context.Background(), "topic"))
	second := collect(t, d.Run(context.Background(), "topic"))

	assert.True(t, strings.HasPrefix(first[len(first)-1], report.Header))
	assert.True(t, strings.HasPrefix(second[len(second)-1], report.Header))
	assert.Equal(t, first[0], second[0])
}

func TestRunParallelSearchPath(t *testing.T) {
	stubs := defaultStubs()
	d := New(Options{
		Runner:         stubs.runner(),
		MaxSearches:    2,
		ParallelSearch: true,
	})

	lines := collect(t, d.Run(context.Background(), "topic"))

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "running 2 searches concurrently")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], report.Header))
}

func TestRunCapsSearchesAtMax(t *testing.T) {
	stubs := defaultStubs()
	stubs.plan = func(ctx context.Context, input any) (any, error) {
		return []models.SearchQuery{
			{Query: "a", Priority: 1},
			{Query: "b", Priority: 2},
			{Query: "c", Priority: 3},
			{Query: "d", Priority: 4},
		}, nil
	}
	var searches int
	inner := stubs.search
	stubs.search = func(ctx context.Context, input any) (any, error) {
		searches++
		return inner(ctx, input)
	}
	d := New(Options{Runner: stubs.runner(), MaxSearches: 2})

	collect(t, d.Run(context.Background(), "topic"))
	assert.Equal(t, 2, searches)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	stubs := defaultStubs()
	ctx, cancel := context.WithCancel(context.Background())
	stubs.search = func(ctx context.Context, input any) (any, error) {
		cancel()
		return nil, ctx.Err()
	}
	d := New(Options{Runner: stubs.runner(), MaxSearches: 2, StepTimeout: time.Second})

	stream := d.Run(ctx, "topic")
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				return // stream closed, no deadlock
			}
		case <-deadline:
			t.Fatal("stream did not close after cancellation")
		}
	}
}
