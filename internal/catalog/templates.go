package catalog

import (
	"fmt"
	"os"

	"github.com/ppiankov/redline/internal/model"
	"gopkg.in/yaml.v3"
)

// templateFile is the YAML shape of an external template corpus.
type templateFile struct {
	Templates []model.TemplateClause `yaml:"templates"`
}

// LoadTemplates reads a reference clause corpus from path, or returns
// the built-in defaults when path is empty.
func LoadTemplates(path string) ([]model.TemplateClause, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template corpus: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template corpus: %w", err)
	}

	if err := ValidateTemplates(file.Templates); err != nil {
		return nil, fmt.Errorf("template corpus %s: %w", path, err)
	}
	return file.Templates, nil
}

// ValidateTemplates checks corpus invariants.
func ValidateTemplates(templates []model.TemplateClause) error {
	if len(templates) == 0 {
		return fmt.Errorf("corpus is empty")
	}
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			return fmt.Errorf("template with empty id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
		if t.Canonical == "" {
			return fmt.Errorf("template %q has no canonical text", t.ID)
		}
	}
	return nil
}

// DefaultTemplates returns the built-in SME-friendly reference corpus.
func DefaultTemplates() []model.TemplateClause {
	return []model.TemplateClause{
		{
			ID: "payment-terms", Category: model.CategoryObligation, Title: "Balanced Payment Terms",
			Canonical: "Payment shall be made within 30 days of receipt of invoice. Late payments shall accrue interest at a stated rate per month. The Client reserves the right to withhold payment for defective deliverables until rectified.",
			Variants: []string{
				"All invoices shall be paid within 45 days of receipt. Interest on overdue amounts accrues at the agreed monthly rate.",
			},
			KeyPoints: []string{"Clear payment timeline", "Reasonable interest on late payment", "Right to withhold for non-performance"},
		},
		{
			ID: "termination", Category: model.CategoryRight, Title: "Mutual Termination Rights",
			Canonical: "Either party may terminate this Agreement by providing 30 days written notice to the other party. In case of material breach, the non-breaching party may terminate immediately upon written notice, with opportunity to cure within 15 days.",
			Variants: []string{
				"Either party may terminate this agreement for convenience upon 60 days prior written notice.",
			},
			KeyPoints: []string{"Equal termination rights for both parties", "Reasonable notice period", "Opportunity to cure breaches"},
		},
		{
			ID: "limitation-of-liability", Category: model.CategoryProhibition, Title: "Limited Liability Clause",
			Canonical: "Total liability of either party shall not exceed the total amount paid under this Agreement in the 12 months preceding the claim. Neither party shall be liable for indirect, incidental, or consequential damages.",
			Variants: []string{
				"Each party's aggregate liability is capped at the fees paid in the preceding year; neither party is liable for consequential damages.",
			},
			KeyPoints: []string{"Capped liability amount", "Mutual limitation", "Exclusion of consequential damages"},
		},
		{
			ID: "indemnification", Category: model.CategoryObligation, Title: "Mutual Indemnification",
			Canonical: "Each party shall indemnify the other against third-party claims arising from breach of this Agreement, negligence or willful misconduct, or violation of applicable laws. Indemnification shall be limited to direct damages and shall not exceed the liability cap defined herein.",
			KeyPoints: []string{"Mutual indemnification", "Specific triggering events", "Limited to direct damages"},
		},
		{
			ID: "confidentiality", Category: model.CategoryObligation, Title: "Standard Confidentiality Clause",
			Canonical: "Each party agrees to maintain confidentiality of the other party's Confidential Information for a period of 3 years. Confidential Information shall not include information that is publicly available, was independently developed, or is required to be disclosed by law.",
			KeyPoints: []string{"Defined confidentiality period", "Clear exclusions", "Mutual obligations"},
		},
		{
			ID: "ip-rights", Category: model.CategoryDefinition, Title: "IP Rights Retention",
			Canonical: "Each party retains ownership of its pre-existing intellectual property. New intellectual property created during this Agreement shall be owned by the creating party, with the other party receiving a non-exclusive license for defined purposes.",
			KeyPoints: []string{"Pre-existing IP remains with creator", "Clear ownership of new IP", "License rights defined"},
		},
		{
			ID: "dispute-resolution", Category: model.CategoryObligation, Title: "Tiered Dispute Resolution",
			Canonical: "Disputes shall first be resolved through good faith negotiation for 30 days. If unresolved, the parties shall attempt mediation. If mediation fails, disputes shall be resolved through arbitration at an agreed seat.",
			KeyPoints: []string{"Negotiation first approach", "Mediation option", "Defined arbitration seat"},
		},
		{
			ID: "force-majeure", Category: model.CategoryProhibition, Title: "Reasonable Force Majeure",
			Canonical: "Neither party shall be liable for failure to perform due to circumstances beyond reasonable control, including natural disasters, war, government actions, or pandemic. The affected party must notify the other within 7 days and make reasonable efforts to mitigate impact.",
			KeyPoints: []string{"Clear definition of force majeure", "Notice requirement", "Mitigation obligation"},
		},
		{
			ID: "warranty", Category: model.CategoryObligation, Title: "Basic Warranties",
			Canonical: "The Service Provider warrants that services will be performed in a professional and workmanlike manner, consistent with industry standards. Services shall substantially conform to specifications for 90 days from delivery.",
			KeyPoints: []string{"Professional standard commitment", "Conformance to specifications", "Limited warranty period"},
		},
		{
			ID: "amendment", Category: model.CategoryRight, Title: "Mutual Amendment Rights",
			Canonical: "This Agreement may only be amended by written agreement signed by authorized representatives of both parties. No oral modifications shall be binding.",
			KeyPoints: []string{"Written amendments only", "Mutual consent required", "No oral modifications"},
		},
	}
}
