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

// maxValidationContent bounds the report excerpt sent to the validation
// model.
const maxValidationContent = 2000

const guardrailsSystemPrompt = "You are a careful content safety reviewer. Always respond with valid JSON."

const guardrailsPromptTemplate = `Analyze the following research report content for inappropriate language, profanity, offensive content, or harmful information.

Content to analyze:
%s

Please provide a comprehensive analysis in JSON format:
{
  "is_clean": true,
  "issues": ["list of any specific issues found"],
  "message": "brief assessment message",
  "confidence": 0.95
}

Be thorough but fair in your assessment.`

// Guardrails validates report content for safety before formatting.
type Guardrails struct {
	validator Completer
	log       *logging.Logger
}

// NewGuardrails creates the output validation agent.
func NewGuardrails(validator Completer, log *logging.Logger) *Guardrails {
	if log == nil {
		log = logging.NewNop()
	}
	return &Guardrails{validator: validator, log: log}
}

func (g *Guardrails) Name() string { return NameGuardrails }

func (g *Guardrails) Description() string {
	return "Validates content for profanity and inappropriate content"
}

// Execute expects a models.ResearchReport and returns a
// models.ValidationResult. Validation never blocks the pipeline: an
// upstream failure yields a clean result with low confidence.
func (g *Guardrails) Execute(ctx context.Context, input any) (any, error) {
	report, ok := input.(models.ResearchReport)
	if !ok {
		return nil, fmt.Errorf("output_guardrails: expected models.ResearchReport input, got %T", input)
	}

	content := validationContent(report)
	prompt := fmt.Sprintf(guardrailsPromptTemplate, content)

	response, err := g.validator.Complete(ctx, guardrailsSystemPrompt, prompt)
	if err != nil {
		g.log.Warn(ctx, "validation model failed, defaulting to clean", zap.Error(err))
		return models.ValidationResult{
			Clean:      true,
			Message:    fmt.Sprintf("Validation error: %v", err),
			Confidence: 0.5,
			Timestamp:  time.Now(),
		}, nil
	}

	result, err := parseValidation(response)
	if err != nil {
		result = keywordValidation(response)
	}
	result.Timestamp = time.Now()
	return result, nil
}

// validationContent assembles the report sections to validate, capped at
// maxValidationContent bytes.
func validationContent(report models.ResearchReport) string {
	content := fmt.Sprintf(
		"Title: %s\nExecutive Summary: %s\nKey Findings: %s\nInsights: %s\nRecommendations: %s",
		report.Title,
		report.ExecutiveSummary,
		strings.Join(report.KeyFindings, ", "),
		strings.Join(report.Insights, ", "),
		strings.Join(report.Recommendations, ", "),
	)
	if len(content) > maxValidationContent {
		content = content[:maxValidationContent]
	}
	return content
}

func parseValidation(response string) (models.ValidationResult, error) {
	var payload struct {
		Clean      bool     `json:"is_clean"`
		Issues     []string `json:"issues"`
		Message    string   `json:"message"`
		Confidence float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &payload); err != nil {
		return models.ValidationResult{}, err
	}
	result := models.ValidationResult{
		Clean:      payload.Clean,
		Issues:     payload.Issues,
		Message:    payload.Message,
		Confidence: payload.Confidence,
	}
	if result.Message == "" {
		result.Message = "Content validation completed"
	}
	if result.Confidence == 0 {
		result.Confidence = 0.9
	}
	return result, nil
}

// keywordValidation is the parse-failure fallback: scan the raw response
// for a verdict.
func keywordValidation(response string) models.ValidationResult {
	lower := strings.ToLower(response)
	clean := strings.Contains(lower, "clean") && !strings.Contains(lower, "inappropriate")

	result := models.ValidationResult{
		Clean:      clean,
		Confidence: 0.8,
	}
	if clean {
		result.Message = "Content validation completed"
	} else {
		result.Message = "Content validation detected potential issues"
		result.Issues = []string{"Content validation flagged potential issues"}
	}
	return result
}
