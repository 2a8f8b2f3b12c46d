package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/researchd/internal/models"
)

const plannerSystemPrompt = "You are an expert research strategist who plans comprehensive search strategies. Always respond with valid JSON."

const plannerPromptTemplate = `You are an expert research strategist. Given the user query: %q

Plan exactly %d intelligent web search queries that will provide comprehensive coverage of this topic.
For each query, provide:
1. The search query text
2. Reasoning for why this query is important
3. What type of information it will likely uncover
4. Priority (1-%d)

Respond in JSON format:
{
  "queries": [
    {
      "query": "search text",
      "reasoning": "why this query is important",
      "query_type": "type of information",
      "priority": 1
    }
  ]
}`

// Planner turns a research question into a small set of search queries.
type Planner struct {
	chat       Completer
	maxQueries int
}

// NewPlanner creates the query planning agent.
func NewPlanner(chat Completer, maxQueries int) *Planner {
	return &Planner{chat: chat, maxQueries: maxQueries}
}

func (p *Planner) Name() string { return NamePlanner }

func (p *Planner) Description() string {
	return "Plans intelligent search queries with reasoning"
}

// Execute expects the user's research question as a string and returns
// []models.SearchQuery. A malformed model response falls back to a
// deterministic query pair rather than failing the pipeline.
func (p *Planner) Execute(ctx context.Context, input any) (any, error) {
	query, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("query_planner: expected string input, got %T", input)
	}

	prompt := fmt.Sprintf(plannerPromptTemplate, query, p.maxQueries, p.maxQueries)
	response, err := p.chat.Complete(ctx, plannerSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("query_planner: %w", err)
	}

	queries, err := parseQueries(response)
	if err != nil || len(queries) == 0 {
		return fallbackQueries(query), nil
	}
	if len(queries) > p.maxQueries {
		queries = queries[:p.maxQueries]
	}
	for i := range queries {
		if queries[i].Priority < 1 {
			queries[i].Priority = i + 1
		}
	}
	return queries, nil
}

func parseQueries(response string) ([]models.SearchQuery, error) {
	var payload struct {
		Queries []models.SearchQuery `json:"queries"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &payload); err != nil {
		return nil, err
	}
	return payload.Queries, nil
}

// fallbackQueries is the deterministic plan used when the model response
// cannot be parsed: the topic itself plus a recent-developments variant.
func fallbackQueries(query string) []models.SearchQuery {
	return []models.SearchQuery{
		{
			Query:     query,
			Reasoning: "Direct search for the main topic",
			QueryType: "Primary information",
			Priority:  1,
		},
		{
			Query:     query + " latest developments",
			Reasoning: "Search for recent updates and developments",
			QueryType: "Recent developments",
			Priority:  2,
		},
	}
}
