package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/redline/internal/model"
	"golang.org/x/time/rate"
)

// Explainer drives a Provider over a finished report's flags. Requests
// are rate limited and capped per document; a failed explanation skips
// that flag and moves on, it never fails the analysis.
type Explainer struct {
	provider Provider
	limiter  *rate.Limiter
	maxPer   int
}

// NewExplainer wraps a provider with the configured rate limit and
// per-document cap. Returns nil for a nil provider.
func NewExplainer(provider Provider, cfg model.LLMConfig) *Explainer {
	if provider == nil {
		return nil
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxPer := cfg.MaxExplanations
	if maxPer <= 0 {
		maxPer = 10
	}
	return &Explainer{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		maxPer:   maxPer,
	}
}

// Explain generates explanations for the report's highest-ranked flags.
// The report's flags are already sorted by severity, so the cap keeps
// the worst findings.
func (e *Explainer) Explain(ctx context.Context, report model.AnalysisReport, labels map[string]string) []model.Explanation {
	if e == nil {
		return nil
	}

	clauseText := make(map[int]string, len(report.Clauses))
	for _, c := range report.Clauses {
		clauseText[c.Clause.Index] = c.Clause.Text
	}

	var explanations []model.Explanation
	for _, flag := range report.Flags {
		if len(explanations) >= e.maxPer {
			break
		}
		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		label := labels[flag.CategoryID]
		if label == "" {
			label = flag.CategoryID
		}
		resp, err := e.provider.Explain(ctx, ExplainRequest{
			ClauseText:    clauseText[flag.ClauseIndex],
			CategoryLabel: label,
			Matched:       flag.Matched,
			Rationale:     flag.Rationale,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "explanation for clause %d skipped: %v\n", flag.ClauseIndex, err)
			continue
		}

		explanations = append(explanations, model.Explanation{
			ClauseIndex: flag.ClauseIndex,
			CategoryID:  flag.CategoryID,
			Provider:    e.provider.Name(),
			Model:       resp.Model,
			Text:        resp.Text,
		})
	}
	return explanations
}
