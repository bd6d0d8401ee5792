package model

import "time"

// Config is the full runtime configuration. Defaults come from
// DefaultConfig; the CLI layers flags, REDLINE_* env vars, and
// ~/.redline/config.yaml on top.
type Config struct {
	Segmenter   SegmenterConfig   `yaml:"segmenter"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Matching    MatchingConfig    `yaml:"matching"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Input       InputConfig       `yaml:"input"`
	Cache       CacheConfig       `yaml:"cache"`
	Audit       AuditConfig       `yaml:"audit"`
	LLM         LLMConfig         `yaml:"llm"`
	Output      OutputConfig      `yaml:"output"`
}

// SegmenterConfig controls clause segmentation.
type SegmenterConfig struct {
	MinClauseChars int `yaml:"min_clause_chars"` // Shorter fragments are merged into neighbors
	MaxClauseChars int `yaml:"max_clause_chars"` // Longer clauses are force-split at a sentence boundary
}

// ScoringConfig controls risk scoring and aggregation.
type ScoringConfig struct {
	CatalogPath string `yaml:"catalog_path"` // Optional YAML risk catalog; empty means built-in defaults
	TopK        int    `yaml:"top_k"`        // Number of worst category scores in the contract-level mean
}

// MatchingConfig controls template matching.
type MatchingConfig struct {
	TemplatesPath string  `yaml:"templates_path"` // Optional YAML template corpus; empty means built-in defaults
	MinSimilarity float64 `yaml:"min_similarity"` // Floor below which no match is reported
}

// ConcurrencyConfig controls the per-clause fan-out.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// InputConfig controls document intake.
type InputConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

// CacheConfig controls the layered report cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// AuditConfig controls the tamper-evident audit trail.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// LLMConfig configures the optional explanation provider. Explanations
// never affect scoring.
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // "openai", "anthropic", "ollama", "" (disabled)
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"-"` // From env only, never persisted
	BaseURL           string  `yaml:"base_url,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	MaxTokens         int     `yaml:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxExplanations   int     `yaml:"max_explanations"` // Cap on flagged clauses sent out per document
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Segmenter: SegmenterConfig{
			MinClauseChars: 20,
			MaxClauseChars: 5000,
		},
		Scoring: ScoringConfig{
			TopK: 5,
		},
		Matching: MatchingConfig{
			MinSimilarity: 0.2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Input: InputConfig{
			MaxFileSizeMB: 10,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:       false,
			Dir:           "",
			RetentionDays: 90,
		},
		LLM: LLMConfig{
			Provider:          "",
			TimeoutSeconds:    30,
			MaxTokens:         500,
			RequestsPerSecond: 1,
			Burst:             2,
			MaxExplanations:   10,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
