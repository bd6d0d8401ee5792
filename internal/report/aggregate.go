package report

import (
	"fmt"
	"sort"

	"github.com/ppiankov/redline/internal/model"
)

// Aggregate folds per-clause results into the contract-level report.
// Pure function of its inputs: same clauses and catalog always produce
// a byte-identical report. The analysis timestamp is stamped by the
// caller afterwards so repeated aggregation stays comparable.
func Aggregate(doc model.Document, results []model.ClauseResult, catalog []model.RiskCategory, topK int, degraded bool) model.AnalysisReport {
	weights := make(map[string]float64, len(catalog))
	labels := make(map[string]string, len(catalog))
	for _, c := range catalog {
		weights[c.ID] = c.Weight
		labels[c.ID] = c.Label
	}

	// Clause order in the report follows document position, not the order
	// results happened to arrive in.
	sorted := make([]model.ClauseResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Clause.Index < sorted[j].Clause.Index
	})
	results = sorted

	report := model.AnalysisReport{
		DocumentID:           doc.ID,
		DocumentName:         doc.Name,
		Language:             doc.Language,
		Clauses:              results,
		DegradedSegmentation: degraded,
		Summary: model.Summary{
			ClauseCount:      len(results),
			CategoryCounts:   make(map[model.Category]int),
			FlagCounts:       make(map[string]int),
			RiskDistribution: make(map[model.RiskLevel]int),
		},
	}

	// clauseRisk is the worst category score a clause received, paired
	// with that category's weight for the contract-level mean.
	type clauseRisk struct {
		index    int
		severity float64
		weight   float64
	}
	var risks []clauseRisk

	for _, r := range results {
		report.Summary.CategoryCounts[r.Classification.Category]++
		if r.Classification.Ambiguous {
			report.Summary.AmbiguousClauses++
		}

		// Category ids are walked in sorted order so an equal-severity tie
		// always resolves to the same weight.
		ids := make([]string, 0, len(r.Scores))
		for id := range r.Scores {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		worst := clauseRisk{index: r.Clause.Index}
		for _, id := range ids {
			if sev := r.Scores[id]; sev > worst.severity {
				worst.severity = sev
				worst.weight = weights[id]
			}
		}
		if worst.severity > 0 {
			risks = append(risks, worst)
		}
		report.Summary.RiskDistribution[model.LevelForScore(worst.severity)]++

		for _, f := range r.Flags {
			report.Summary.FlagCounts[f.CategoryID]++
			report.Flags = append(report.Flags, f)
		}
	}

	// Worst clauses dominate: the contract score is the weighted mean of
	// the top-K clause severities, so one toxic clause in a long, benign
	// contract is not averaged away.
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].severity != risks[j].severity {
			return risks[i].severity > risks[j].severity
		}
		return risks[i].index < risks[j].index
	})
	if topK > 0 && len(risks) > topK {
		risks = risks[:topK]
	}
	var num, den float64
	for _, r := range risks {
		w := r.weight
		if w == 0 {
			w = 1
		}
		num += r.severity * w
		den += w
	}
	if den > 0 {
		report.ContractScore = num / den
	}
	report.RiskLevel = model.LevelForScore(report.ContractScore)

	sort.SliceStable(report.Flags, func(i, j int) bool {
		a, b := report.Flags[i], report.Flags[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.ClauseIndex != b.ClauseIndex {
			return a.ClauseIndex < b.ClauseIndex
		}
		return a.CategoryID < b.CategoryID
	})

	report.Recommendations = recommendations(report.Flags, labels)
	return report
}

// recommendationByCategory maps risk categories to the standard
// negotiation alternative an SME can ask for.
var recommendationByCategory = map[string]string{
	"unlimited-liability":          "Negotiate a liability cap, for example the fees paid in the preceding 12 months, and exclude consequential damages mutually.",
	"unilateral-termination":       "Ask for mutual termination rights with a defined written notice period and an opportunity to cure breaches.",
	"broad-ip-transfer":            "Retain ownership of pre-existing intellectual property and limit any transfer to deliverables created under this engagement.",
	"one-sided-indemnification":    "Make indemnification mutual and cap it at the agreed liability limit.",
	"auto-renewal":                 "Replace automatic renewal with renewal by mutual written consent before each term ends.",
	"excessive-restraint-duration": "Narrow the restraint to a reasonable duration, territory, and scope of activity.",
	"penalty-clause":               "Replace penalties with liquidated damages that reflect a genuine pre-estimate of loss.",
	"waiver-of-rights":             "Strike broad waivers; if a waiver is unavoidable, limit it to specific, named rights.",
	"unilateral-amendment":         "Require amendments to be in writing and signed by both parties.",
	"no-warranty":                  "Ask for a basic warranty of professional, workmanlike performance with a defined conformance period.",
	"indefinite-term":              "Fix a definite term with clearly stated renewal conditions.",
	"broad-assignment":             "Require prior written consent for assignment by either party, not to be unreasonably withheld.",
	"lock-in":                      "Shorten the lock-in period and add an early exit for material breach.",
	"ambiguous-payment":            "State the payment amount, due date, and late-payment consequences explicitly.",
}

// recommendations derives one suggestion per flagged category, in flag
// rank order.
func recommendations(flags []model.RiskFlag, labels map[string]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range flags {
		if seen[f.CategoryID] {
			continue
		}
		seen[f.CategoryID] = true
		if rec, ok := recommendationByCategory[f.CategoryID]; ok {
			out = append(out, rec)
			continue
		}
		label := labels[f.CategoryID]
		if label == "" {
			label = f.CategoryID
		}
		out = append(out, fmt.Sprintf("Review the clause flagged for %s with counsel.", label))
	}
	return out
}
