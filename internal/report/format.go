// Package report renders the final research report as Markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/researchd/internal/models"
)

// Header is the first line of every formatted report. Consumers of the
// progress stream split log lines from the report body on it.
const Header = "# Research Report"

const timeLayout = "2006-01-02 15:04:05"

// Format renders the report, its validation outcome, and request metadata
// into a single Markdown document starting with Header.
func Format(req models.ResearchRequest, rep models.ResearchReport, validation *models.ValidationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", Header)
	fmt.Fprintf(&b, "**Query**: %s\n", req.Query)
	fmt.Fprintf(&b, "**Generated**: %s\n\n---\n\n", rep.GeneratedAt.Format(timeLayout))

	fmt.Fprintf(&b, "## %s\n\n", rep.Title)
	fmt.Fprintf(&b, "### Executive Summary\n\n%s\n", rep.ExecutiveSummary)

	writeList(&b, "Key Findings", rep.KeyFindings)
	writeList(&b, "Insights", rep.Insights)
	writeList(&b, "Recommendations", rep.Recommendations)
	writeList(&b, "Sources", rep.Sources)

	if validation != nil {
		b.WriteString("\n---\n\n### Content Validation\n\n")
		status := "Clean"
		if !validation.Clean {
			status = "Issues Detected"
		}
		fmt.Fprintf(&b, "**Status**: %s\n", status)
		fmt.Fprintf(&b, "**Confidence**: %.2f\n", validation.Confidence)
		fmt.Fprintf(&b, "**Message**: %s\n", validation.Message)
		if len(validation.Issues) > 0 {
			fmt.Fprintf(&b, "**Issues**: %s\n", strings.Join(validation.Issues, ", "))
		}
	}

	b.WriteString("\n---\n\n### Report Metadata\n\n")
	fmt.Fprintf(&b, "- **Confidence Score**: %.2f\n", rep.Confidence)
	fmt.Fprintf(&b, "- **Generated by**: researchd\n")
	fmt.Fprintf(&b, "- **Requested**: %s\n", req.CreatedAt.Format(timeLayout))

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
