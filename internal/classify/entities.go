package classify

import (
	"regexp"
	"sort"

	"github.com/ppiankov/redline/internal/model"
)

// Entity extraction is pattern-driven: capitalization for parties and
// defined terms, numeric shapes for dates, amounts, and durations,
// modal phrases for obligation verbs. No external NLP model; the
// patterns are compiled once at package init and shared read-only.

var (
	dateRe = regexp.MustCompile(`(?i)\b(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}(?:st|nd|rd|th)?\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4})\b`)

	amountRe = regexp.MustCompile(`(?:₹|Rs\.?|INR|\$|USD|EUR|GBP)\s*\d+(?:,\d{3})*(?:\.\d+)?|\b\d+(?:,\d{3})*(?:\.\d+)?\s*(?:percent|%)`)

	durationRe = regexp.MustCompile(`(?i)\b\d+\s*(?:calendar\s+|business\s+|working\s+)?(?:day|week|month|year)s?\b`)

	modalRe = regexp.MustCompile(`(?i)\b(?:shall not|must not|may not|will not|is prohibited from|agrees not to|shall|must|is required to|is obligated to|undertakes to|may|is entitled to|has the right to|reserves the right)\b`)

	quotedTermRe = regexp.MustCompile(`[“"']([A-Z][A-Za-z][A-Za-z\s-]{1,40})[”"']`)
	definedAsRe  = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,3})\s+(?:means|refers to|shall mean|is defined as)\b`)

	partyRe = regexp.MustCompile(`\b(?:[Tt]he\s+)?(Service Provider|Disclosing Party|Receiving Party|Client|Company|Contractor|Supplier|Vendor|Employer|Employee|Consultant|Customer|Licensor|Licensee|Lessor|Lessee|Provider|Recipient|Agency|Buyer|Seller)\b|\b([Ee]ither\s+[Pp]arty|[Bb]oth\s+[Pp]arties|[Ee]ach\s+[Pp]arty|[Tt]he\s+[Pp]arties)\b`)
)

// extractEntities locates parties, dates, amounts, durations, modal
// verbs, and defined terms in the clause text. Spans are byte offsets
// into the clause. Output is sorted by start offset for determinism.
func extractEntities(text string) []model.Entity {
	var entities []model.Entity

	add := func(kind model.EntityKind, locs [][]int) {
		for _, loc := range locs {
			if loc[0] < 0 || loc[1] <= loc[0] {
				continue
			}
			entities = append(entities, model.Entity{
				Kind:  kind,
				Text:  text[loc[0]:loc[1]],
				Start: loc[0],
				End:   loc[1],
			})
		}
	}

	add(model.EntityDate, dateRe.FindAllStringIndex(text, -1))
	add(model.EntityDuration, durationRe.FindAllStringIndex(text, -1))
	add(model.EntityObligationVerb, modalRe.FindAllStringIndex(text, -1))
	add(model.EntityParty, partyRe.FindAllStringIndex(text, -1))

	// Amounts overlapping a duration ("30 days") are the duration's
	// number, not money; drop them.
	durs := durationRe.FindAllStringIndex(text, -1)
	for _, loc := range amountRe.FindAllStringIndex(text, -1) {
		if overlapsAny(loc, durs) {
			continue
		}
		entities = append(entities, model.Entity{
			Kind:  model.EntityAmount,
			Text:  text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}

	for _, m := range quotedTermRe.FindAllStringSubmatchIndex(text, -1) {
		entities = append(entities, model.Entity{
			Kind:  model.EntityDefinedTerm,
			Text:  text[m[2]:m[3]],
			Start: m[2],
			End:   m[3],
		})
	}
	for _, m := range definedAsRe.FindAllStringSubmatchIndex(text, -1) {
		entities = append(entities, model.Entity{
			Kind:  model.EntityDefinedTerm,
			Text:  text[m[2]:m[3]],
			Start: m[2],
			End:   m[3],
		})
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Start != entities[j].Start {
			return entities[i].Start < entities[j].Start
		}
		return entities[i].Kind < entities[j].Kind
	})
	return entities
}

func overlapsAny(loc []int, others [][]int) bool {
	for _, o := range others {
		if loc[0] < o[1] && o[0] < loc[1] {
			return true
		}
	}
	return false
}
