package model

// TemplateClause is a reference "safe" clause from the curated corpus.
// Static, loaded once, shared read-only across analyses.
type TemplateClause struct {
	ID        string   `json:"id" yaml:"id"`
	Category  Category `json:"category" yaml:"category"`
	Title     string   `json:"title" yaml:"title"`
	Canonical string   `json:"canonical" yaml:"canonical"`
	Variants  []string `json:"variants,omitempty" yaml:"variants,omitempty"`
	KeyPoints []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
}

// MatchResult links a clause to its best reference template, or records
// that no comparable standard clause was found.
type MatchResult struct {
	ClauseIndex int     `json:"clause_index"`
	TemplateID  string  `json:"template_id,omitempty"` // Empty when nothing cleared the similarity floor
	Title       string  `json:"title,omitempty"`
	Similarity  float64 `json:"similarity"` // In [0,1]
	Suggestion  string  `json:"suggestion,omitempty"` // Canonical text of the matched template
	Gap         string  `json:"gap,omitempty"`        // What the clause lacks relative to the template
}
