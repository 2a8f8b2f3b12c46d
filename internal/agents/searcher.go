package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/researchd/internal/models"
)

const searchSystemPrompt = "You are a web search expert. Provide comprehensive search results."

const searchPromptTemplate = `Search the web for: %s

Provide comprehensive information including:
- Key findings and insights
- Recent developments
- Expert opinions
- Statistical data if available
- Multiple perspectives on the topic

Format your response as a detailed research summary.`

// SearchTool simulates a web search with a text completion. A real search
// backend would satisfy the same surface.
type SearchTool struct {
	chat Completer
}

// NewSearchTool creates the simulated search backend.
func NewSearchTool(chat Completer) *SearchTool {
	return &SearchTool{chat: chat}
}

// Search runs one simulated search and returns the summary text.
func (t *SearchTool) Search(ctx context.Context, query string) (string, error) {
	return t.chat.Complete(ctx, searchSystemPrompt, fmt.Sprintf(searchPromptTemplate, query))
}

// Searcher executes planned search queries against the search tool.
type Searcher struct {
	tool *SearchTool
}

// NewSearcher creates the web searcher agent.
func NewSearcher(tool *SearchTool) *Searcher {
	return &Searcher{tool: tool}
}

func (s *Searcher) Name() string { return NameSearcher }

func (s *Searcher) Description() string {
	return "Performs intelligent web searches"
}

// Execute expects a models.SearchQuery and returns a models.SearchResult.
// A failed search yields an error-status result instead of failing the
// dispatch, so one bad search does not sink the whole pipeline.
func (s *Searcher) Execute(ctx context.Context, input any) (any, error) {
	query, ok := input.(models.SearchQuery)
	if !ok {
		return nil, fmt.Errorf("web_searcher: expected models.SearchQuery input, got %T", input)
	}

	content, err := s.tool.Search(ctx, query.Query)
	if err != nil {
		return models.SearchResult{
			Query:     query.Query,
			Results:   fmt.Sprintf("Error performing search: %v", err),
			Status:    models.SearchError,
			Timestamp: time.Now(),
			Metadata:  map[string]string{"error": err.Error()},
		}, nil
	}

	return models.SearchResult{
		Query:     query.Query,
		Results:   content,
		Status:    models.SearchSuccess,
		Timestamp: time.Now(),
		Metadata: map[string]string{
			"reasoning":  query.Reasoning,
			"query_type": query.QueryType,
			"priority":   fmt.Sprintf("%d", query.Priority),
		},
	}, nil
}
