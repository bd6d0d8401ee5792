package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ppiankov/redline/internal/catalog"
	"github.com/ppiankov/redline/internal/model"
)

func sampleResults() []model.ClauseResult {
	return []model.ClauseResult{
		{
			Clause:         model.Clause{Index: 0, Text: "The Client shall pay within 30 days."},
			Classification: model.Classification{Category: model.CategoryObligation},
		},
		{
			Clause:         model.Clause{Index: 1, Text: "The Provider shall not be liable for any damages whatsoever."},
			Classification: model.Classification{Category: model.CategoryProhibition},
			Scores:         map[string]float64{"unlimited-liability": 0.95},
			Flags: []model.RiskFlag{{
				ClauseIndex: 1, CategoryID: "unlimited-liability", Severity: 0.95,
				Matched: "any damages whatsoever", Rationale: "Unlimited Liability: clause contains \"any damages whatsoever\"",
			}},
		},
		{
			Clause:         model.Clause{Index: 2, Text: "This Agreement shall automatically renew annually."},
			Classification: model.Classification{Category: model.CategoryObligation, Ambiguous: true},
			Scores:         map[string]float64{"auto-renewal": 0.7},
			Flags: []model.RiskFlag{{
				ClauseIndex: 2, CategoryID: "auto-renewal", Severity: 0.7,
				Matched: "automatically renew", Rationale: "Automatic Renewal: clause contains \"automatically renew\"",
			}},
		},
	}
}

func TestAggregateContractScore(t *testing.T) {
	doc := model.Document{ID: "doc-1", Name: "msa.txt"}
	r := Aggregate(doc, sampleResults(), catalog.DefaultRiskCatalog(), 5, false)

	if r.DocumentID != "doc-1" || r.DocumentName != "msa.txt" {
		t.Errorf("document identity not carried: %+v", r)
	}
	// Weighted mean of 0.95 (weight .95) and 0.7 (weight .7):
	// (0.95*0.95 + 0.7*0.7) / (0.95 + 0.7) = 0.844
	if r.ContractScore < 0.8 || r.ContractScore > 0.9 {
		t.Errorf("contract score = %.3f, want around 0.84", r.ContractScore)
	}
	if r.RiskLevel != model.RiskHigh {
		t.Errorf("risk level = %s, want high", r.RiskLevel)
	}
	if !r.AnalyzedAt.IsZero() {
		t.Error("aggregation must not stamp a timestamp")
	}
}

func TestAggregateFlagRanking(t *testing.T) {
	r := Aggregate(model.Document{ID: "d"}, sampleResults(), catalog.DefaultRiskCatalog(), 5, false)

	if len(r.Flags) != 2 {
		t.Fatalf("flag count = %d, want 2", len(r.Flags))
	}
	if r.Flags[0].CategoryID != "unlimited-liability" || r.Flags[1].CategoryID != "auto-renewal" {
		t.Errorf("flags not ranked by severity: %+v", r.Flags)
	}
}

func TestAggregateSummaryCounts(t *testing.T) {
	r := Aggregate(model.Document{ID: "d"}, sampleResults(), catalog.DefaultRiskCatalog(), 5, false)

	s := r.Summary
	if s.ClauseCount != 3 {
		t.Errorf("clause count = %d", s.ClauseCount)
	}
	if s.CategoryCounts[model.CategoryObligation] != 2 || s.CategoryCounts[model.CategoryProhibition] != 1 {
		t.Errorf("category counts = %v", s.CategoryCounts)
	}
	if s.AmbiguousClauses != 1 {
		t.Errorf("ambiguous clauses = %d", s.AmbiguousClauses)
	}
	if s.FlagCounts["unlimited-liability"] != 1 {
		t.Errorf("flag counts = %v", s.FlagCounts)
	}
	if s.RiskDistribution[model.RiskHigh] != 2 || s.RiskDistribution[model.RiskLow] != 1 {
		t.Errorf("risk distribution = %v", s.RiskDistribution)
	}
}

func TestAggregateTopKBias(t *testing.T) {
	// Eleven clean clauses around one toxic clause must not dilute the
	// contract score below the high band.
	results := []model.ClauseResult{{
		Clause:         model.Clause{Index: 0, Text: "toxic"},
		Classification: model.Classification{Category: model.CategoryProhibition},
		Scores:         map[string]float64{"unlimited-liability": 1.0},
	}}
	for i := 1; i <= 11; i++ {
		results = append(results, model.ClauseResult{
			Clause:         model.Clause{Index: i, Text: "benign"},
			Classification: model.Classification{Category: model.CategoryObligation},
		})
	}

	r := Aggregate(model.Document{ID: "d"}, results, catalog.DefaultRiskCatalog(), 5, false)
	if r.ContractScore != 1.0 {
		t.Errorf("contract score = %.2f, want 1.0 (clean clauses must not dilute)", r.ContractScore)
	}
	if r.RiskLevel != model.RiskHigh {
		t.Errorf("risk level = %s, want high", r.RiskLevel)
	}
}

func TestAggregateEmptyResults(t *testing.T) {
	r := Aggregate(model.Document{ID: "d"}, nil, catalog.DefaultRiskCatalog(), 5, false)
	if r.ContractScore != 0 || r.RiskLevel != model.RiskLow {
		t.Errorf("empty document: score %.2f level %s, want 0 low", r.ContractScore, r.RiskLevel)
	}
}

func TestAggregateBitIdentical(t *testing.T) {
	doc := model.Document{ID: "doc-1", Name: "msa.txt"}
	cats := catalog.DefaultRiskCatalog()

	a := Aggregate(doc, sampleResults(), cats, 5, false)
	b := Aggregate(doc, sampleResults(), cats, 5, false)

	ja, err := RenderJSON(a)
	if err != nil {
		t.Fatal(err)
	}
	jb, err := RenderJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ja, jb) {
		t.Error("repeated aggregation produced different bytes")
	}
}

func TestAggregateOrderInvariant(t *testing.T) {
	doc := model.Document{ID: "doc-1", Name: "msa.txt"}
	cats := catalog.DefaultRiskCatalog()

	ordered := sampleResults()
	shuffled := make([]model.ClauseResult, len(ordered))
	for i, r := range ordered {
		shuffled[len(ordered)-1-i] = r
	}

	a := Aggregate(doc, ordered, cats, 5, false)
	b := Aggregate(doc, shuffled, cats, 5, false)

	if a.ContractScore != b.ContractScore {
		t.Errorf("score depends on result order: %.4f vs %.4f", a.ContractScore, b.ContractScore)
	}

	ja, err := RenderJSON(a)
	if err != nil {
		t.Fatal(err)
	}
	jb, err := RenderJSON(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ja, jb) {
		t.Error("reordered clause results produced different report bytes")
	}
}

func TestAggregateRecommendations(t *testing.T) {
	r := Aggregate(model.Document{ID: "d"}, sampleResults(), catalog.DefaultRiskCatalog(), 5, false)

	if len(r.Recommendations) != 2 {
		t.Fatalf("recommendations = %v", r.Recommendations)
	}
	if !strings.Contains(r.Recommendations[0], "liability cap") {
		t.Errorf("first recommendation should address the liability flag: %q", r.Recommendations[0])
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := Aggregate(model.Document{ID: "d", Name: "msa.txt"}, sampleResults(), catalog.DefaultRiskCatalog(), 5, true)

	md := RenderMarkdown(r, true)
	for _, want := range []string{
		"# Contract Risk Report: msa.txt",
		"## Findings",
		"unlimited-liability",
		"## Recommendations",
		"segmented by sentence groups",
		"Not legal advice",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	noFooter := RenderMarkdown(r, false)
	if strings.Contains(noFooter, "Not legal advice") {
		t.Error("footer rendered when disabled")
	}
}

func TestRenderSummary(t *testing.T) {
	r := Aggregate(model.Document{ID: "d", Name: "msa.txt"}, sampleResults(), catalog.DefaultRiskCatalog(), 5, false)
	out := RenderSummary(r)
	if !strings.Contains(out, "msa.txt") || !strings.Contains(out, "2 flags") {
		t.Errorf("summary = %q", out)
	}
}
