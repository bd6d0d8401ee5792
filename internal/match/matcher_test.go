package match

import (
	"strings"
	"testing"

	"github.com/ppiankov/redline/internal/catalog"
	"github.com/ppiankov/redline/internal/model"
)

func newTestMatcher() *Matcher {
	return New(catalog.DefaultTemplates(), 0.2)
}

func TestMatchTerminationClause(t *testing.T) {
	m := newTestMatcher()

	clause := model.Clause{
		Index: 1,
		Text:  "Either party may terminate this Agreement by providing 30 days written notice to the other party.",
	}
	res := m.Match(clause, model.CategoryRight)

	if res.TemplateID != "termination" {
		t.Fatalf("matched %q, want termination (similarity %.2f)", res.TemplateID, res.Similarity)
	}
	if res.Similarity < 0.2 {
		t.Errorf("similarity %.2f below floor", res.Similarity)
	}
	if res.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestMatchBelowFloorReportsGapOnly(t *testing.T) {
	m := newTestMatcher()

	clause := model.Clause{
		Index: 7,
		Text:  "Quarterly reports summarizing aggregate throughput metrics are archived in the shared repository.",
	}
	res := m.Match(clause, model.CategoryOther)

	if res.TemplateID != "" {
		t.Errorf("unexpected match %q for unrelated text", res.TemplateID)
	}
	if res.Gap != noMatchGap {
		t.Errorf("gap = %q, want %q", res.Gap, noMatchGap)
	}
	if res.Similarity != 0 {
		t.Errorf("similarity = %.2f, want 0", res.Similarity)
	}
}

func TestMatchGapNamesMissingProtections(t *testing.T) {
	m := newTestMatcher()

	// One-sided termination with no notice period or cure opportunity.
	clause := model.Clause{
		Index: 2,
		Text:  "The Company may terminate this Agreement at its sole discretion at any time and the Contractor may not terminate.",
	}
	res := m.Match(clause, model.CategoryRight)

	if res.TemplateID != "termination" {
		t.Fatalf("matched %q, want termination", res.TemplateID)
	}
	if !strings.Contains(res.Gap, "written notice") {
		t.Errorf("gap %q should mention the missing written notice requirement", res.Gap)
	}
}

func TestMatchFallsBackToFullCorpus(t *testing.T) {
	m := newTestMatcher()

	// Definition-categorized clause about liability still finds the
	// liability template through the full-corpus fallback.
	clause := model.Clause{
		Text: "Total liability of either party shall not exceed the total amount paid under this Agreement.",
	}
	res := m.Match(clause, model.CategoryOther)

	if res.TemplateID != "limitation-of-liability" {
		t.Errorf("matched %q, want limitation-of-liability", res.TemplateID)
	}
}

func TestMatchVariantBeatsCanonical(t *testing.T) {
	m := newTestMatcher()

	clause := model.Clause{
		Text: "Either party may terminate this agreement for convenience upon 60 days prior written notice.",
	}
	res := m.Match(clause, model.CategoryRight)

	if res.TemplateID != "termination" {
		t.Fatalf("matched %q, want termination", res.TemplateID)
	}
	if res.Similarity < 0.5 {
		t.Errorf("near-verbatim variant similarity %.2f, want high", res.Similarity)
	}
}

func TestJaccard(t *testing.T) {
	a := significantTerms("terminate agreement written notice")
	b := significantTerms("terminate agreement verbal approval")
	sim := jaccard(a, b)
	// "agreement" is a stopword; overlap is {terminate} of
	// {terminate, written, notice, verbal, approval}.
	if sim <= 0 || sim >= 1 {
		t.Errorf("jaccard = %.2f, want partial overlap", sim)
	}
	if jaccard(a, a) != 1.0 {
		t.Error("identical sets must score 1.0")
	}
	if jaccard(a, map[string]bool{}) != 0 {
		t.Error("empty set must score 0")
	}
}
