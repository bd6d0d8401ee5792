package worker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/redline/internal/model"
)

// FileAnalyzer analyzes one contract file end to end.
type FileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path string) (model.AnalysisReport, error)
}

// AnalyzeJob is one contract in a batch run.
type AnalyzeJob struct {
	Path     string
	Analyzer FileAnalyzer
}

// Execute runs the analysis for the job's file.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeFile(ctx, j.Path)
	return &AnalyzeResult{Path: j.Path, Report: report, Error: err}
}

// AnalyzeResult is the outcome for one contract in a batch.
type AnalyzeResult struct {
	Path   string
	Report model.AnalysisReport
	Error  error
}

// GetError returns the analysis error, if any.
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple contracts concurrently. One bad
// document never aborts the batch; its error rides in its result.
type BatchProcessor struct {
	analyzer    FileAnalyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given
// concurrency.
func NewBatchProcessor(analyzer FileAnalyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{analyzer: analyzer, concurrency: concurrency}
}

// ProcessFiles analyzes the given paths concurrently. Results are
// returned in input order regardless of completion order.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	order := make(map[string]int, len(paths))
	for i, p := range paths {
		order[p] = i
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	for _, path := range paths {
		pool.Submit(&AnalyzeJob{Path: path, Analyzer: b.analyzer})
	}

	raw := pool.Wait()
	results := make([]*AnalyzeResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, r.(*AnalyzeResult))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return order[results[i].Path] < order[results[j].Path]
	})
	return results
}

// ListContracts collects contract files under dir, sorted for stable
// batch ordering. Only extensions the loader understands are included.
func ListContracts(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".text", ".md", ".markdown", ".html", ".htm":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}
