package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/redline/internal/pipeline"
	"github.com/ppiankov/redline/internal/report"
	"github.com/ppiankov/redline/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-files...>",
	Short: "Analyze multiple contracts in parallel",
	Long: `Batch analyzes a directory or an explicit list of contract files:
- Collects .txt, .md, and .html files (directories are walked)
- Analyzes contracts in parallel with a configurable worker count
- Writes one JSON and one Markdown report per contract
- One unreadable contract never aborts the batch

Example:
  redline batch ./contracts
  redline batch ./contracts --concurrency 8 --output-dir ./reports
  redline batch nda.txt msa.txt lease.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./redline-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	addAnalysisFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	paths, err := collectPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no contract files found in %v", args)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "Contracts:  %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n\n", outputDir)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	results := processor.ProcessFiles(ctx, paths)

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++

		slug := sanitizeFilename(result.Path)
		data, err := report.RenderJSON(result.Report)
		if err == nil {
			err = os.WriteFile(filepath.Join(outputDir, slug+".json"), data, 0o644)
		}
		if err == nil {
			md := report.RenderMarkdown(result.Report, cfg.Output.IncludeFooter)
			err = os.WriteFile(filepath.Join(outputDir, slug+".md"), []byte(md), 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: write report: %v\n", result.Path, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (score %.2f, %s, %d flags)\n",
			result.Report.DocumentName, result.Report.ContractScore,
			result.Report.RiskLevel, len(result.Report.Flags))
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d analyzed, %d failed, reports in %s\n",
		successCount, failureCount, outputDir)
	return nil
}

// collectPaths expands directories into contract files and passes
// explicit files through.
func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if info.IsDir() {
			found, err := worker.ListContracts(arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, found...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

// sanitizeFilename derives a safe report base name from a contract path.
func sanitizeFilename(path string) string {
	s := filepath.Base(path)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)

	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}
