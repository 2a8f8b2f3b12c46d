// Package models defines the data types exchanged between research agents.
package models

import "time"

// SearchQuery is a single planned search query with reasoning.
type SearchQuery struct {
	Query     string `json:"query"`
	Reasoning string `json:"reasoning"`
	QueryType string `json:"query_type"`
	Priority  int    `json:"priority"`
}

// SearchStatus reports whether a search attempt succeeded.
type SearchStatus string

const (
	SearchSuccess SearchStatus = "success"
	SearchError   SearchStatus = "error"
)

// SearchResult holds the outcome of one web search.
type SearchResult struct {
	Query     string            `json:"query"`
	Results   string            `json:"results"`
	Status    SearchStatus      `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ValidationResult holds the outcome of content validation.
type ValidationResult struct {
	Clean      bool      `json:"is_clean"`
	Issues     []string  `json:"issues,omitempty"`
	Message    string    `json:"message"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// ResearchReport is the final synthesized report.
type ResearchReport struct {
	Title            string            `json:"title"`
	ExecutiveSummary string            `json:"executive_summary"`
	KeyFindings      []string          `json:"key_findings,omitempty"`
	Insights         []string          `json:"insights,omitempty"`
	Recommendations  []string          `json:"recommendations,omitempty"`
	Sources          []string          `json:"sources,omitempty"`
	Confidence       float64           `json:"confidence_score"`
	GeneratedAt      time.Time         `json:"generated_at"`
	Validation       *ValidationResult `json:"validation_result,omitempty"`
}

// ResearchRequest describes one research run.
type ResearchRequest struct {
	Query             string    `json:"query"`
	MaxSearches       int       `json:"max_searches"`
	IncludeValidation bool      `json:"include_validation"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewResearchRequest builds a request with defaults applied.
func NewResearchRequest(query string) ResearchRequest {
	return ResearchRequest{
		Query:             query,
		MaxSearches:       2,
		IncludeValidation: true,
		CreatedAt:         time.Now(),
	}
}

// SynthesisInput bundles search results with the originating query for the
// synthesis agent.
type SynthesisInput struct {
	Query   string         `json:"user_query"`
	Results []SearchResult `json:"search_results"`
}
