package llm

import (
	"context"
	"fmt"
)

// Provider generates plain-language explanations for flagged clauses.
// Explanations are advisory prose only; scores and flags are computed
// before any provider is consulted and are never revised by one.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Explain generates an explanation for one flagged clause.
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// ExplainRequest carries the facts the explanation must stick to: the
// clause itself and the finding the rule engine already made.
type ExplainRequest struct {
	// ClauseText is the flagged clause, verbatim.
	ClauseText string

	// CategoryLabel is the risk category, e.g. "Unlimited Liability".
	CategoryLabel string

	// Matched is the trigger text that fired.
	Matched string

	// Rationale is the rule engine's explanation for the flag.
	Rationale string

	// Prompt overrides the default prompt when set.
	Prompt string

	// Model overrides the provider's configured model when set.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// ExplainResponse is the provider's output.
type ExplainResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", or "" (disabled).
	Provider string

	// Model name, provider-specific.
	Model string

	// APIKey for hosted providers.
	APIKey string

	// BaseURL for custom endpoints, e.g. a local Ollama.
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens for response generation.
	MaxTokens int

	// Proxy settings for locked-down environments.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the disabled-by-default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		MaxTokens: 500,
	}
}

const systemPrompt = "You explain contract clauses flagged by an automated review tool to small-business readers. You describe why the flagged language is one-sided or risky. You never give legal advice and never second-guess the tool's scoring."

// BuildPrompt constructs the default explanation prompt. The finding is
// stated as fact: the model elaborates on it, it does not re-litigate
// it.
func BuildPrompt(req ExplainRequest) string {
	return fmt.Sprintf(`A contract clause was flagged for "%s".

Clause:
%s

Trigger: the clause contains %q.
Finding: %s

In 2-4 plain sentences, explain to a small-business owner why this kind of language is risky for them and what a more balanced version would typically say. Do not give legal advice. Do not dispute the finding.`,
		req.CategoryLabel, req.ClauseText, req.Matched, req.Rationale)
}
