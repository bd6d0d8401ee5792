package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"

	"github.com/ppiankov/redline/internal/model"
	"gopkg.in/yaml.v3"
)

// The catalogs are the only process-wide shared state: loaded once at
// startup, validated, and handed to every pipeline as an immutable
// snapshot. A load failure or an empty catalog is fatal; scoring is
// meaningless without it.

// riskFile is the YAML shape of an external risk catalog.
type riskFile struct {
	Categories []model.RiskCategory `yaml:"categories"`
}

// LoadRiskCatalog reads a risk catalog from path, or returns the
// built-in defaults when path is empty. The returned slice is validated
// and must be treated as read-only.
func LoadRiskCatalog(path string) ([]model.RiskCategory, error) {
	if path == "" {
		return DefaultRiskCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read risk catalog: %w", err)
	}

	var file riskFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse risk catalog: %w", err)
	}

	if err := ValidateRiskCatalog(file.Categories); err != nil {
		return nil, fmt.Errorf("risk catalog %s: %w", path, err)
	}
	return file.Categories, nil
}

// ValidateRiskCatalog checks catalog invariants: non-empty, unique ids,
// weights and strengths in range, patterns compilable.
func ValidateRiskCatalog(categories []model.RiskCategory) error {
	if len(categories) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			return fmt.Errorf("category with empty id")
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = true

		if c.Weight < 0 || c.Weight > 1 {
			return fmt.Errorf("category %q: weight %.2f outside [0,1]", c.ID, c.Weight)
		}
		if c.Threshold <= 0 || c.Threshold > 1 {
			return fmt.Errorf("category %q: threshold %.2f outside (0,1]", c.ID, c.Threshold)
		}
		if len(c.Triggers) == 0 {
			return fmt.Errorf("category %q has no triggers", c.ID)
		}
		for i, tr := range c.Triggers {
			if tr.Phrase == "" && tr.Pattern == "" {
				return fmt.Errorf("category %q trigger %d: neither phrase nor pattern", c.ID, i)
			}
			if tr.Strength <= 0 || tr.Strength > 1 {
				return fmt.Errorf("category %q trigger %d: strength %.2f outside (0,1]", c.ID, i, tr.Strength)
			}
			if tr.Pattern != "" {
				if _, err := regexp.Compile(tr.Pattern); err != nil {
					return fmt.Errorf("category %q trigger %d: %w", c.ID, i, err)
				}
			}
		}
	}
	return nil
}

// Fingerprint produces a stable hash of the loaded catalogs, used to
// key the report cache so a catalog change invalidates cached reports.
func Fingerprint(categories []model.RiskCategory, templates []model.TemplateClause) string {
	h := sha256.New()
	enc := yaml.NewEncoder(h)
	_ = enc.Encode(riskFile{Categories: categories})
	_ = enc.Encode(templateFile{Templates: templates})
	_ = enc.Close()
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// DefaultRiskCatalog returns the built-in unfavorable-term catalog.
// Weights and keyword sets follow the curated set the project started
// from; thresholds are per-category flag floors.
func DefaultRiskCatalog() []model.RiskCategory {
	return []model.RiskCategory{
		{
			ID: "unlimited-liability", Label: "Unlimited Liability", Weight: 0.95, Threshold: 0.5,
			Triggers: []model.Trigger{
				{Phrase: "unlimited liability", Strength: 1.0},
				{Phrase: "no cap on liability", Strength: 1.0},
				{Phrase: "any damages whatsoever", Strength: 1.0},
				{Phrase: "without limit", Strength: 0.9},
				{Pattern: `(?i)liable for any (?:and all )?(?:damages|losses|claims)`, Strength: 0.9},
			},
		},
		{
			ID: "unilateral-termination", Label: "Unilateral Termination", Weight: 0.95, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "terminate at will", Strength: 1.0},
				{Phrase: "sole discretion", Strength: 0.9},
				{Phrase: "without cause", Strength: 0.8},
				{Pattern: `(?i)terminate .{0,40}(?:immediately|at any time) without`, Strength: 0.8},
			},
		},
		{
			ID: "broad-ip-transfer", Label: "Broad IP Transfer", Weight: 0.9, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "assigns all", Strength: 0.9},
				{Phrase: "transfers all", Strength: 0.9},
				{Phrase: "work for hire", Strength: 0.7},
				{Pattern: `(?i)all right,? title,? and interest`, Strength: 0.9},
				{Pattern: `(?i)ownership of (?:all )?intellectual property`, Strength: 0.8},
			},
		},
		{
			ID: "one-sided-indemnification", Label: "One-Sided Indemnification", Weight: 0.85, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "indemnify and hold harmless", Strength: 0.8},
				{Phrase: "hold harmless", Strength: 0.7},
				{Pattern: `(?i)indemnif\w+ .{0,60}any and all`, Strength: 0.9},
				{Phrase: "defend, indemnify", Strength: 0.8},
			},
		},
		{
			ID: "auto-renewal", Label: "Automatic Renewal", Weight: 0.7, Threshold: 0.35,
			Triggers: []model.Trigger{
				{Phrase: "automatically renew", Strength: 1.0},
				{Phrase: "automatic renewal", Strength: 1.0},
				{Phrase: "auto-renew", Strength: 1.0},
				{Phrase: "evergreen", Strength: 0.8},
			},
		},
		{
			ID: "excessive-restraint-duration", Label: "Excessive Restraint of Trade", Weight: 0.85, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "non-compete", Strength: 0.9},
				{Phrase: "non-competition", Strength: 0.9},
				{Phrase: "restraint of trade", Strength: 0.9},
				{Phrase: "exclusivity", Strength: 0.6},
				{Pattern: `(?i)shall not .{0,40}engage in any`, Strength: 0.7},
			},
		},
		{
			ID: "penalty-clause", Label: "Penalty Provisions", Weight: 0.9, Threshold: 0.45,
			Triggers: []model.Trigger{
				{Phrase: "liquidated damages", Strength: 0.9},
				{Phrase: "penalty", Strength: 0.7},
				{Phrase: "forfeit", Strength: 0.8},
			},
		},
		{
			ID: "waiver-of-rights", Label: "Waiver of Rights", Weight: 0.9, Threshold: 0.45,
			Triggers: []model.Trigger{
				{Phrase: "waives all", Strength: 1.0},
				{Phrase: "waiver of rights", Strength: 0.9},
				{Pattern: `(?i)waives? (?:any|all) (?:rights?|claims?|defenses?)`, Strength: 0.9},
				{Phrase: "foregoes any right", Strength: 0.9},
			},
		},
		{
			ID: "unilateral-amendment", Label: "Unilateral Amendment", Weight: 0.85, Threshold: 0.45,
			Triggers: []model.Trigger{
				{Pattern: `(?i)(?:may amend|may modify|right to change).{0,50}(?:at any time|without)`, Strength: 0.9},
				{Phrase: "may amend", Strength: 0.6},
				{Phrase: "may modify", Strength: 0.6},
			},
		},
		{
			ID: "no-warranty", Label: "Warranty Disclaimer", Weight: 0.7, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "disclaims all warranties", Strength: 1.0},
				{Phrase: "without warranty", Strength: 0.9},
				{Phrase: `"as is"`, Strength: 0.8},
				{Phrase: "as-is", Strength: 0.8},
			},
		},
		{
			ID: "indefinite-term", Label: "Indefinite Term", Weight: 0.75, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "in perpetuity", Strength: 1.0},
				{Phrase: "no expiration", Strength: 0.9},
				{Phrase: "perpetual", Strength: 0.8},
				{Phrase: "indefinite", Strength: 0.7},
			},
		},
		{
			ID: "broad-assignment", Label: "Broad Assignment", Weight: 0.7, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "freely assign", Strength: 0.9},
				{Pattern: `(?i)may assign .{0,50}without (?:the )?(?:prior )?(?:written )?consent`, Strength: 0.9},
			},
		},
		{
			ID: "lock-in", Label: "Lock-In Period", Weight: 0.8, Threshold: 0.4,
			Triggers: []model.Trigger{
				{Phrase: "lock-in", Strength: 0.9},
				{Phrase: "cannot terminate", Strength: 0.9},
				{Phrase: "binding period", Strength: 0.7},
				{Phrase: "minimum period", Strength: 0.6},
			},
		},
		{
			ID: "ambiguous-payment", Label: "Ambiguous Payment Terms", Weight: 0.6, Threshold: 0.45,
			AppliesTo: []model.Category{model.CategoryObligation, model.CategoryOther},
			Triggers: []model.Trigger{
				{Pattern: `(?i)payment .{0,60}(?:as (?:may be )?determined|at .{0,25}discretion)`, Strength: 0.9},
				{Phrase: "payment terms to be agreed", Strength: 0.9},
				{Pattern: `(?i)(?:fees?|compensation) .{0,40}to be (?:agreed|determined)`, Strength: 0.8},
			},
		},
	}
}
