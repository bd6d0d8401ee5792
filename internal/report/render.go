package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/redline/internal/model"
)

const footer = "Automated analysis for review prioritization only. Not legal advice."

// RenderJSON serializes the full report.
func RenderJSON(r model.AnalysisReport) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderMarkdown produces the review document: contract verdict first,
// then ranked findings, then the per-clause walkthrough.
func RenderMarkdown(r model.AnalysisReport, includeFooter bool) string {
	var b strings.Builder

	name := r.DocumentName
	if name == "" {
		name = r.DocumentID
	}
	fmt.Fprintf(&b, "# Contract Risk Report: %s\n\n", name)
	fmt.Fprintf(&b, "**Risk score:** %.2f (%s)\n\n", r.ContractScore, strings.ToUpper(string(r.RiskLevel)))
	if !r.AnalyzedAt.IsZero() {
		fmt.Fprintf(&b, "Analyzed %s\n\n", r.AnalyzedAt.Format("2006-01-02 15:04 MST"))
	}
	if r.DegradedSegmentation {
		b.WriteString("> Note: no section structure was detected; the document was segmented by sentence groups.\n\n")
	}

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Clauses analyzed: %d\n", r.Summary.ClauseCount)
	fmt.Fprintf(&b, "- Flags raised: %d\n", len(r.Flags))
	fmt.Fprintf(&b, "- Ambiguous clauses: %d\n", r.Summary.AmbiguousClauses)
	fmt.Fprintf(&b, "- Risk distribution: %d high, %d medium, %d low\n\n",
		r.Summary.RiskDistribution[model.RiskHigh],
		r.Summary.RiskDistribution[model.RiskMedium],
		r.Summary.RiskDistribution[model.RiskLow])

	if len(r.Flags) > 0 {
		b.WriteString("## Findings\n\n")
		b.WriteString("| # | Clause | Category | Severity | Matched |\n")
		b.WriteString("|---|--------|----------|----------|--------|\n")
		for i, f := range r.Flags {
			fmt.Fprintf(&b, "| %d | %d | %s | %.2f | %s |\n",
				i+1, f.ClauseIndex, f.CategoryID, f.Severity, escapePipes(f.Matched))
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(r.Explanations) > 0 {
		b.WriteString("## Explanations\n\n")
		for _, e := range r.Explanations {
			fmt.Fprintf(&b, "**Clause %d (%s, via %s):** %s\n\n", e.ClauseIndex, e.CategoryID, e.Provider, e.Text)
		}
	}

	b.WriteString("## Clauses\n\n")
	for _, c := range r.Clauses {
		label := c.Clause.Label
		if label == "" {
			label = fmt.Sprintf("Clause %d", c.Clause.Index+1)
		}
		fmt.Fprintf(&b, "### %s\n\n", label)
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(c.Clause.Text))
		fmt.Fprintf(&b, "- Category: %s", c.Classification.Category)
		if c.Classification.Ambiguous {
			b.WriteString(" (ambiguous)")
		}
		b.WriteString("\n")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "- Flag: %s (%.2f). %s\n", f.CategoryID, f.Severity, f.Rationale)
		}
		if c.Match.TemplateID != "" {
			fmt.Fprintf(&b, "- Closest standard clause: %s (%.0f%% similar)\n", c.Match.Title, c.Match.Similarity*100)
			if c.Match.Gap != "" {
				fmt.Fprintf(&b, "- Gap: %s\n", c.Match.Gap)
			}
		} else if c.Match.Gap != "" {
			fmt.Fprintf(&b, "- %s\n", c.Match.Gap)
		}
		b.WriteString("\n")
	}

	if includeFooter {
		fmt.Fprintf(&b, "---\n\n%s\n", footer)
	}
	return b.String()
}

// RenderSummary is the compact console verdict for one document.
func RenderSummary(r model.AnalysisReport) string {
	var b strings.Builder

	name := r.DocumentName
	if name == "" {
		name = r.DocumentID
	}
	fmt.Fprintf(&b, "%s: score %.2f (%s), %d clauses, %d flags\n",
		name, r.ContractScore, r.RiskLevel, r.Summary.ClauseCount, len(r.Flags))

	for i, f := range r.Flags {
		if i >= 5 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(r.Flags)-i)
			break
		}
		fmt.Fprintf(&b, "  [%.2f] clause %d: %s\n", f.Severity, f.ClauseIndex, f.Rationale)
	}
	return b.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
