package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/ppiankov/redline/internal/model"
	"github.com/ppiankov/redline/internal/pipeline"
	"github.com/ppiankov/redline/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outJSON       string
	outMD         string
	catalogPath   string
	templatesPath string
	topK          int
	minSimilarity float64
	timeout       time.Duration
	noCache       bool
	noFooter      bool
	auditEnabled  bool
	llmEnabled    bool
	llmProvider   string
	llmModel      string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single contract and generate a risk report",
	Long: `Analyze segments a contract into clauses and, for each clause:
- Classifies it as obligation, right, prohibition, definition, or other
- Scores it against a catalog of known unfavorable patterns
- Compares it with balanced reference clauses and describes the gap
- Aggregates clause scores into a contract-level verdict

Accepts plain text, markdown, and HTML files.

Example:
  redline analyze contract.txt
  redline analyze contract.txt --json report.json --md report.md
  redline analyze contract.txt --catalog my-risks.yaml --audit
  redline analyze contract.txt --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")

	addAnalysisFlags(analyzeCmd)
}

// addAnalysisFlags registers the analysis flags shared by analyze and
// batch. Flag defaults mirror model.DefaultConfig; buildConfig applies
// a flag over file and env settings only when it was set explicitly.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "risk catalog YAML (default: built-in)")
	cmd.Flags().StringVar(&templatesPath, "templates", "", "reference clause corpus YAML (default: built-in)")
	cmd.Flags().IntVar(&topK, "top-k", 5, "worst clauses counted in the contract score")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0.2, "template match floor")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&auditEnabled, "audit", false, "record analyses in the audit trail")

	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM explanations for flagged clauses")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Cache: %v, Audit: %v\n\n", cfg.Cache.Enabled, cfg.Audit.Enabled)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	rep, err := p.AnalyzeFile(ctx, path)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Segmented %d clauses\n", rep.Summary.ClauseCount)
		fmt.Fprintf(os.Stderr, "✓ Raised %d flags\n", len(rep.Flags))
		fmt.Fprintf(os.Stderr, "✓ Contract score: %.2f (%s)\n\n", rep.ContractScore, rep.RiskLevel)
	}

	return writeReport(rep, cfg, outJSON, outMD)
}

// buildConfig resolves the effective configuration: defaults, then the
// config file and REDLINE_* env through viper, then any flag the user
// set explicitly on this command.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, decodeWithYAMLTags); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Scoring.CatalogPath = catalogPath
	}
	if flags.Changed("templates") {
		cfg.Matching.TemplatesPath = templatesPath
	}
	if flags.Changed("top-k") {
		cfg.Scoring.TopK = topK
	}
	if flags.Changed("min-similarity") {
		cfg.Matching.MinSimilarity = minSimilarity
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("audit") {
		cfg.Audit.Enabled = auditEnabled
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if flags.Changed("llm") {
		cfg.LLM.Provider = ""
		if llmEnabled {
			cfg.LLM.Provider = llmProvider
		}
	}
	if cfg.LLM.Provider != "" {
		if flags.Changed("llm-provider") {
			cfg.LLM.Provider = llmProvider
		}
		if flags.Changed("llm-model") {
			cfg.LLM.Model = llmModel
		}

		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

// decodeWithYAMLTags makes viper reuse the yaml struct tags, keeping
// config file, env, and `config show` output on one key scheme.
func decodeWithYAMLTags(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
}

// writeReport renders the report to the requested outputs and prints
// the console summary.
func writeReport(rep model.AnalysisReport, cfg *model.Config, jsonPath, mdPath string) error {
	if jsonPath != "" {
		data, err := report.RenderJSON(rep)
		if err != nil {
			return err
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		md := report.RenderMarkdown(rep, cfg.Output.IncludeFooter)
		if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write Markdown report: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	fmt.Print(report.RenderSummary(rep))
	return nil
}
