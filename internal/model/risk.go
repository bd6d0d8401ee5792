package model

// Trigger is one detection rule inside a risk category. Either Phrase or
// Pattern is set; Phrase is a case-insensitive literal, Pattern a regular
// expression compiled once at catalog load.
type Trigger struct {
	Phrase   string  `json:"phrase,omitempty" yaml:"phrase,omitempty"`
	Pattern  string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Strength float64 `json:"strength" yaml:"strength"` // Match strength in (0,1]; exact phrases score higher than keywords
}

// RiskCategory is a static catalog entry describing one known pattern of
// unfavorable contract language. Read-only after catalog load.
type RiskCategory struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	Weight    float64   `json:"weight" yaml:"weight"`       // In [0,1]
	Threshold float64   `json:"threshold" yaml:"threshold"` // Clause-level score that raises a flag
	Triggers  []Trigger `json:"triggers" yaml:"triggers"`
	// AppliesTo restricts the category to clauses with one of these
	// functional categories. Empty means all clauses.
	AppliesTo []Category `json:"applies_to,omitempty" yaml:"applies_to,omitempty"`
}

// RiskFlag is a triggered finding for one clause and one category.
type RiskFlag struct {
	ClauseIndex int     `json:"clause_index"`
	CategoryID  string  `json:"category_id"`
	Severity    float64 `json:"severity"` // The clause-level category score, clamped to [0,1]
	Matched     string  `json:"matched"`  // Trigger text that fired
	Rationale   string  `json:"rationale"`
}

// RiskLevel is the coarse band a score falls into.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// LevelForScore maps a [0,1] score onto a risk band.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= 0.6:
		return RiskHigh
	case score >= 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}
