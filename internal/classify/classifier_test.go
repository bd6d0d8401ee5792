package classify

import (
	"strings"
	"testing"

	"github.com/ppiankov/redline/internal/model"
)

func TestClassifyCategories(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		want model.Category
	}{
		{
			name: "prohibition outranks obligation",
			text: "The Service Provider shall not be liable for any damages arising from the Services.",
			want: model.CategoryProhibition,
		},
		{
			name: "obligation with named subject",
			text: "The Contractor shall deliver the final report within 30 days of project completion.",
			want: model.CategoryObligation,
		},
		{
			name: "permissive right",
			text: "Either party may terminate this Agreement upon 30 days written notice to the other party.",
			want: model.CategoryRight,
		},
		{
			name: "definitional shall is not an obligation",
			text: "\"Confidential Information\" shall mean any non-public information disclosed by either party.",
			want: model.CategoryDefinition,
		},
		{
			name: "plain definition",
			text: "Effective Date means the date on which both parties have executed this Agreement.",
			want: model.CategoryDefinition,
		},
		{
			name: "boilerplate falls through to other",
			text: "This Agreement constitutes the entire understanding between the parties hereto.",
			want: model.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(model.Clause{Text: tt.text})
			if got.Category != tt.want {
				t.Errorf("category = %s, want %s (rule %q)", got.Category, tt.want, got.Rule)
			}
		})
	}
}

func TestClassifyRecordsFiredRule(t *testing.T) {
	c := New()

	got := c.Classify(model.Clause{Text: "The Supplier shall not assign this Agreement without prior written consent."})
	if got.Category != model.CategoryProhibition {
		t.Fatalf("category = %s", got.Category)
	}
	if !strings.HasPrefix(got.Rule, "modal:prohibition:") {
		t.Errorf("rule = %q, want modal:prohibition prefix", got.Rule)
	}
	if !strings.Contains(got.Rule, "shall not") {
		t.Errorf("rule = %q, want matched phrase recorded", got.Rule)
	}
}

func TestClassifyObligationNeedsSubject(t *testing.T) {
	c := New()

	// A modal with no named subject anywhere before it cannot anchor an
	// obligation.
	got := c.Classify(model.Clause{Text: "goods shall be delivered promptly to the designated warehouse location."})
	if got.Category == model.CategoryObligation {
		t.Errorf("subjectless modal classified as obligation (rule %q)", got.Rule)
	}
}

func TestClassifyAmbiguity(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "hedge without standard",
			text: "The Contractor shall use reasonable efforts to maintain the hosted systems.",
			want: true,
		},
		{
			name: "hedge anchored by standard",
			text: "The Supplier shall use commercially reasonable efforts in accordance with Section 4.",
			want: false,
		},
		{
			name: "mixed modal families",
			text: "The Client shall pay the fees and may suspend the Services at any time.",
			want: true,
		},
		{
			name: "single clear obligation",
			text: "The Client shall pay each invoice within thirty days of the invoice date.",
			want: false,
		},
		{
			name: "prose that matched no rule",
			text: "This Agreement constitutes the entire understanding between the parties hereto.",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(model.Clause{Text: tt.text})
			if got.Ambiguous != tt.want {
				t.Errorf("ambiguous = %v, want %v (category %s)", got.Ambiguous, tt.want, got.Category)
			}
		})
	}
}

func TestClassifyNegatedModalNotDoubleCounted(t *testing.T) {
	// "shall not" must not also register as an obligation modal; a pure
	// prohibition is a single modal family, not a mix.
	got := New().Classify(model.Clause{Text: "The Receiving Party shall not disclose Confidential Information to any third party."})
	if got.Category != model.CategoryProhibition {
		t.Fatalf("category = %s", got.Category)
	}
	if got.Ambiguous {
		t.Error("single prohibition flagged as ambiguous")
	}
}

func TestClassifyNonLinguisticInput(t *testing.T) {
	c := New()

	for _, text := range []string{"", "42 17 99", "| 1 | 2 | 3 |", "$$$ ---"} {
		got := c.Classify(model.Clause{Text: text})
		if got.Category != model.CategoryOther {
			t.Errorf("text %q: category = %s, want other", text, got.Category)
		}
		if len(got.Entities) != 0 {
			t.Errorf("text %q: got %d entities, want none", text, len(got.Entities))
		}
	}
}

func TestExtractEntities(t *testing.T) {
	text := `The Client shall pay the Service Provider $5,000 no later than March 15, 2024, and "Confidential Information" is retained for 5 years.`

	byKind := make(map[model.EntityKind][]string)
	for _, e := range extractEntities(text) {
		byKind[e.Kind] = append(byKind[e.Kind], e.Text)
		if e.Text != text[e.Start:e.End] {
			t.Errorf("entity %q: span [%d,%d) does not match text", e.Text, e.Start, e.End)
		}
	}

	checks := []struct {
		kind model.EntityKind
		want string
	}{
		{model.EntityParty, "The Client"},
		{model.EntityParty, "Service Provider"},
		{model.EntityAmount, "$5,000"},
		{model.EntityDate, "March 15, 2024"},
		{model.EntityDuration, "5 years"},
		{model.EntityDefinedTerm, "Confidential Information"},
		{model.EntityObligationVerb, "shall"},
	}
	for _, ch := range checks {
		found := false
		for _, got := range byKind[ch.kind] {
			if strings.Contains(got, ch.want) || strings.Contains(ch.want, got) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %s entity %q, got %v", ch.kind, ch.want, byKind[ch.kind])
		}
	}
}

func TestExtractEntitiesDurationNotAmount(t *testing.T) {
	// The number inside "30 days" belongs to the duration; it must not
	// surface as a standalone amount.
	for _, e := range extractEntities("Payment is due within 30 days of the invoice date.") {
		if e.Kind == model.EntityAmount {
			t.Errorf("duration number extracted as amount: %q", e.Text)
		}
	}
}

func TestExtractEntitiesSorted(t *testing.T) {
	ents := extractEntities("The Contractor shall notify the Client within 10 business days before December 1, 2025.")
	if len(ents) < 4 {
		t.Fatalf("got %d entities, want at least 4", len(ents))
	}
	for i := 1; i < len(ents); i++ {
		if ents[i].Start < ents[i-1].Start {
			t.Errorf("entities out of order at %d: %d < %d", i, ents[i].Start, ents[i-1].Start)
		}
	}
}
