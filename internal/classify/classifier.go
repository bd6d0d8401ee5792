package classify

import (
	"regexp"
	"strings"

	"github.com/ppiankov/redline/internal/model"
)

// Classifier assigns each clause a functional category using an ordered
// rule table. First matching rule wins: Prohibition outranks Obligation
// because restrictive clauses usually also contain obligation modals,
// and under-flagging restrictive language is the worse failure.
type Classifier struct {
	rules []rule
}

// rule is one classification record: a pattern, the category it
// assigns, and a name recorded on the classification for transparency.
type rule struct {
	name     string
	category model.Category
	re       *regexp.Regexp
	// needsSubject requires a named subject (party entity or leading
	// capitalized token) before the match.
	needsSubject bool
}

var (
	prohibitionRe = regexp.MustCompile(`(?i)\b(shall not|must not|may not|will not|is prohibited from|agrees not to|is not permitted to)\b`)
	obligationRe  = regexp.MustCompile(`(?i)\b(shall|must|is required to|is obligated to|agrees to|undertakes to)\b`)
	rightRe       = regexp.MustCompile(`(?i)\b(may|is entitled to|has the right to|reserves the right)\b`)
	definitionRe  = regexp.MustCompile(`(?i)\b(means|refers to|shall mean|is defined as|shall have the meaning)\b`)

	// Definitional uses of "shall" that must not read as obligations.
	definitionalModalRe = regexp.MustCompile(`(?i)\bshall (?:mean|have the meaning)\b`)

	hedgeRe = regexp.MustCompile(`(?i)\b(reasonable|as needed|at (?:its|his|her|their) (?:sole )?discretion|best efforts|commercially reasonable|from time to time|as appropriate|where applicable|as necessary)\b`)

	// Standards that anchor otherwise-hedged language.
	standardRe = regexp.MustCompile(`(?i)\b(as defined|specified in|set (?:forth|out) in|in accordance with|pursuant to|means)\b`)

	wordRe = regexp.MustCompile(`[A-Za-z]{2,}`)
)

// New creates a classifier with the built-in ordered rule table.
func New() *Classifier {
	return &Classifier{
		rules: []rule{
			{name: "modal:prohibition", category: model.CategoryProhibition, re: prohibitionRe},
			{name: "modal:obligation", category: model.CategoryObligation, re: obligationRe, needsSubject: true},
			{name: "modal:permissive", category: model.CategoryRight, re: rightRe},
			{name: "structure:definition", category: model.CategoryDefinition, re: definitionRe},
		},
	}
}

// Classify extracts entities, assigns the functional category, and
// raises the ambiguity flag. Malformed or non-linguistic input yields
// CategoryOther with no entities; classification never fails.
func (c *Classifier) Classify(clause model.Clause) model.Classification {
	text := clause.Text

	if !isLinguistic(text) {
		return model.Classification{Category: model.CategoryOther}
	}

	entities := extractEntities(text)

	// Obligation and Right rules run against a masked copy so negated
	// ("shall not") and definitional ("shall mean") modals cannot
	// satisfy them. Masking preserves length, so offsets stay valid.
	masked := maskPhrases(text, prohibitionRe, definitionalModalRe)

	category := model.CategoryOther
	firedRule := ""
	for _, r := range c.rules {
		subject := text
		if r.category == model.CategoryObligation || r.category == model.CategoryRight {
			subject = masked
		}
		loc := r.re.FindStringIndex(subject)
		if loc == nil {
			continue
		}
		if r.needsSubject && !hasNamedSubject(text, loc[0], entities) {
			continue
		}
		category = r.category
		firedRule = r.name + ":" + strings.ToLower(strings.TrimSpace(subject[loc[0]:loc[1]]))
		break
	}

	return model.Classification{
		Category:  category,
		Entities:  entities,
		Ambiguous: isAmbiguous(text, category),
		Rule:      firedRule,
	}
}

// isLinguistic filters out tables of numbers and other non-prose input:
// at least three plain words are required before any rule applies.
func isLinguistic(text string) bool {
	return len(wordRe.FindAllString(text, 4)) >= 3
}

// hasNamedSubject reports whether a named subject precedes the modal at
// offset: a party entity ending before it, or any capitalized word in
// the text leading up to it.
func hasNamedSubject(text string, offset int, entities []model.Entity) bool {
	for _, e := range entities {
		if e.Kind == model.EntityParty && e.End <= offset {
			return true
		}
	}
	prefix := text[:offset]
	for _, w := range wordRe.FindAllString(prefix, -1) {
		if w[0] >= 'A' && w[0] <= 'Z' {
			return true
		}
	}
	return false
}

// isAmbiguous raises the ambiguity flag when the clause hedges without a
// defined standard, mixes modal types, or fell through to Other despite
// being real prose.
func isAmbiguous(text string, category model.Category) bool {
	if hedgeRe.MatchString(text) && !standardRe.MatchString(text) {
		return true
	}
	if modalTypeCount(text) > 1 {
		return true
	}
	return category == model.CategoryOther
}

// modalTypeCount counts distinct modal families present. Negated and
// definitional forms are masked first so "shall not" does not also
// count as an obligation modal.
func modalTypeCount(text string) int {
	masked := maskPhrases(text, prohibitionRe, definitionalModalRe)
	n := 0
	if prohibitionRe.MatchString(text) {
		n++
	}
	if obligationRe.MatchString(masked) {
		n++
	}
	if rightRe.MatchString(masked) {
		n++
	}
	return n
}

// maskPhrases blanks every match of the given patterns with same-length
// spaces, keeping byte offsets stable.
func maskPhrases(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return strings.Repeat(" ", len(m))
		})
	}
	return text
}
