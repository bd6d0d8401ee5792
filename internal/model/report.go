package model

import "time"

// ClauseResult collects the per-clause outputs of the three analysis
// stages. Each stage writes only its own field.
type ClauseResult struct {
	Clause         Clause             `json:"clause"`
	Classification Classification     `json:"classification"`
	Scores         map[string]float64 `json:"scores,omitempty"` // Risk category ID -> clause-level score
	Flags          []RiskFlag         `json:"flags,omitempty"`
	Match          MatchResult        `json:"match"`
}

// Summary holds contract-level counts.
type Summary struct {
	ClauseCount      int               `json:"clause_count"`
	CategoryCounts   map[Category]int  `json:"category_counts"`
	FlagCounts       map[string]int    `json:"flag_counts"` // Risk category ID -> flags raised
	AmbiguousClauses int               `json:"ambiguous_clauses"`
	RiskDistribution map[RiskLevel]int `json:"risk_distribution"` // Clause-level band counts
}

// Explanation is optional LLM-generated prose for one flagged clause.
// Never consulted for scoring; attached after aggregation.
type Explanation struct {
	ClauseIndex int    `json:"clause_index"`
	CategoryID  string `json:"category_id"`
	Provider    string `json:"provider"`
	Model       string `json:"model,omitempty"`
	Text        string `json:"text"`
}

// AnalysisReport is the terminal artifact of one document analysis.
// Immutable once built.
type AnalysisReport struct {
	DocumentID   string    `json:"document_id"`
	DocumentName string    `json:"document_name,omitempty"`
	Language     string    `json:"language,omitempty"`
	AnalyzedAt   time.Time `json:"analyzed_at,omitzero"` // Stamped by the pipeline, not the aggregator

	Clauses []ClauseResult `json:"clauses"`

	ContractScore float64    `json:"contract_score"` // Top-K biased aggregate in [0,1]
	RiskLevel     RiskLevel  `json:"risk_level"`
	Flags         []RiskFlag `json:"flags"` // Ranked by severity desc, ties by document order

	Summary         Summary  `json:"summary"`
	Recommendations []string `json:"recommendations,omitempty"`

	DegradedSegmentation bool `json:"degraded_segmentation,omitempty"` // Sentence fallback was used

	Explanations []Explanation `json:"explanations,omitempty"`
}
