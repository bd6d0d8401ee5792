package score

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/redline/internal/model"
)

// Scorer evaluates clauses against a risk catalog. Every score is
// reproducible from the catalog alone: severity is the clamped sum of
// matched trigger strengths times the category weight, and each flag
// carries the trigger that fired. No opaque model in the loop.
type Scorer struct {
	categories []compiledCategory
}

type compiledCategory struct {
	model.RiskCategory
	triggers []compiledTrigger
}

type compiledTrigger struct {
	model.Trigger
	phrase string // lowercased literal, empty when Pattern is set
	re     *regexp.Regexp
}

// NewScorer compiles the catalog's triggers. The catalog must already
// have passed validation; a compile failure here is still reported.
func NewScorer(catalog []model.RiskCategory) (*Scorer, error) {
	s := &Scorer{categories: make([]compiledCategory, 0, len(catalog))}
	for _, cat := range catalog {
		cc := compiledCategory{RiskCategory: cat}
		for _, tr := range cat.Triggers {
			ct := compiledTrigger{Trigger: tr}
			if tr.Pattern != "" {
				re, err := regexp.Compile(tr.Pattern)
				if err != nil {
					return nil, fmt.Errorf("category %q: compile trigger pattern: %w", cat.ID, err)
				}
				ct.re = re
			} else {
				ct.phrase = strings.ToLower(tr.Phrase)
			}
			cc.triggers = append(cc.triggers, ct)
		}
		s.categories = append(s.categories, cc)
	}
	return s, nil
}

// Score evaluates one clause against every applicable category and
// returns the per-category severity map plus the flags whose severity
// crossed the category threshold. Deterministic for identical input.
func (s *Scorer) Score(clause model.Clause, cls model.Classification) (map[string]float64, []model.RiskFlag) {
	scores := make(map[string]float64, len(s.categories))
	var flags []model.RiskFlag

	lower := strings.ToLower(clause.Text)

	for _, cat := range s.categories {
		if !applies(cat.AppliesTo, cls.Category) {
			continue
		}

		var sum float64
		matched := ""
		for _, tr := range cat.triggers {
			var hit string
			if tr.re != nil {
				hit = tr.re.FindString(clause.Text)
			} else if idx := strings.Index(lower, tr.phrase); idx >= 0 {
				hit = clause.Text[idx : idx+len(tr.phrase)]
			}
			if hit == "" {
				continue
			}
			sum += tr.Strength * cat.Weight
			if matched == "" {
				matched = hit
			}
		}
		if matched == "" {
			continue
		}

		severity := clamp01(sum)
		scores[cat.ID] = severity

		if severity > cat.Threshold {
			flags = append(flags, model.RiskFlag{
				ClauseIndex: clause.Index,
				CategoryID:  cat.ID,
				Severity:    severity,
				Matched:     matched,
				Rationale:   rationale(cat.RiskCategory, matched, cls.Entities),
			})
		}
	}
	return scores, flags
}

// applies reports whether a category with the given restriction list
// covers a clause of the given functional category. An empty list
// covers everything.
func applies(restrict []model.Category, category model.Category) bool {
	if len(restrict) == 0 {
		return true
	}
	for _, c := range restrict {
		if c == category {
			return true
		}
	}
	return false
}

// rationale builds the human-readable explanation for a flag, folding
// in amount and duration entities so the reviewer sees the concrete
// terms the clause commits to.
func rationale(cat model.RiskCategory, matched string, entities []model.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: clause contains %q", cat.Label, matched)

	var context []string
	for _, e := range entities {
		if e.Kind == model.EntityAmount || e.Kind == model.EntityDuration {
			context = append(context, e.Text)
		}
	}
	if len(context) > 0 {
		fmt.Fprintf(&b, " (terms: %s)", strings.Join(context, ", "))
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
