package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/redline/internal/model"
)

// Matcher compares clauses against a reference corpus of balanced
// standard clauses. Similarity is Jaccard overlap of significant terms;
// the approach is crude but fully explainable, which matters more here
// than recall.
type Matcher struct {
	corpus        []model.TemplateClause
	byCategory    map[model.Category][]int
	minSimilarity float64
}

const noMatchGap = "no comparable standard clause found"

// New indexes the corpus by functional category. minSimilarity is the
// floor below which no match is reported.
func New(corpus []model.TemplateClause, minSimilarity float64) *Matcher {
	m := &Matcher{
		corpus:        corpus,
		byCategory:    make(map[model.Category][]int),
		minSimilarity: minSimilarity,
	}
	for i, t := range corpus {
		m.byCategory[t.Category] = append(m.byCategory[t.Category], i)
	}
	return m
}

// Match finds the best reference clause for the given clause. The
// candidate pool is narrowed to the clause's functional category when
// the corpus has templates for it; Other and uncovered categories fall
// back to the full corpus. A result below the similarity floor carries
// only the gap description.
func (m *Matcher) Match(clause model.Clause, category model.Category) model.MatchResult {
	result := model.MatchResult{ClauseIndex: clause.Index}

	pool := m.byCategory[category]
	if len(pool) == 0 || category == model.CategoryOther {
		pool = make([]int, len(m.corpus))
		for i := range m.corpus {
			pool[i] = i
		}
	}

	clauseTerms := significantTerms(clause.Text)

	best := -1
	bestSim := 0.0
	for _, i := range pool {
		sim := templateSimilarity(clauseTerms, m.corpus[i])
		if sim > bestSim {
			best, bestSim = i, sim
		}
	}

	if best < 0 || bestSim < m.minSimilarity {
		result.Gap = noMatchGap
		return result
	}

	t := m.corpus[best]
	result.TemplateID = t.ID
	result.Title = t.Title
	result.Similarity = bestSim
	result.Suggestion = suggestion(t)
	result.Gap = describeGap(clause.Text, t)
	return result
}

// templateSimilarity is the best Jaccard score across the template's
// canonical text and variants.
func templateSimilarity(clauseTerms map[string]bool, t model.TemplateClause) float64 {
	best := jaccard(clauseTerms, significantTerms(t.Canonical))
	for _, v := range t.Variants {
		if s := jaccard(clauseTerms, significantTerms(v)); s > best {
			best = s
		}
	}
	return best
}

var termRe = regexp.MustCompile(`[a-z][a-z-]{2,}`)

// significantTerms tokenizes to lowercase words of three letters or
// more, minus stopwords.
func significantTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range termRe.FindAllString(strings.ToLower(text), -1) {
		if !stopwords[w] {
			terms[w] = true
		}
	}
	return terms
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func suggestion(t model.TemplateClause) string {
	if len(t.KeyPoints) > 0 {
		return fmt.Sprintf("Compare with %q: %s.", t.Title, strings.Join(t.KeyPoints, "; "))
	}
	return fmt.Sprintf("Compare with %q.", t.Title)
}

// gapChecks are the protective elements the gap analysis looks for.
// Each one fires when the matched template carries the element and the
// clause under review does not.
var gapChecks = []struct {
	name string
	re   *regexp.Regexp
}{
	{"a defined time period", regexp.MustCompile(`(?i)\b\d+\s*(?:day|week|month|year)s?\b`)},
	{"a liability cap", regexp.MustCompile(`(?i)\b(?:not exceed|capped|limited to|cap\b)`)},
	{"a written notice requirement", regexp.MustCompile(`(?i)\bwritten notice\b`)},
	{"mutual application to both parties", regexp.MustCompile(`(?i)\b(?:either party|each party|both parties|mutual)\b`)},
	{"an opportunity to cure", regexp.MustCompile(`(?i)\b(?:cure|remedy|rectif)`)},
}

// describeGap lists the template's protective elements missing from the
// clause. Empty when nothing is missing.
func describeGap(clauseText string, t model.TemplateClause) string {
	var missing []string
	for _, check := range gapChecks {
		if check.re.MatchString(t.Canonical) && !check.re.MatchString(clauseText) {
			missing = append(missing, check.name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return fmt.Sprintf("Unlike the standard clause, this clause lacks %s.", strings.Join(missing, ", "))
}
