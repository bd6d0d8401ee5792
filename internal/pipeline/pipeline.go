package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ppiankov/redline/internal/audit"
	"github.com/ppiankov/redline/internal/cache"
	"github.com/ppiankov/redline/internal/catalog"
	"github.com/ppiankov/redline/internal/classify"
	"github.com/ppiankov/redline/internal/input"
	"github.com/ppiankov/redline/internal/llm"
	"github.com/ppiankov/redline/internal/match"
	"github.com/ppiankov/redline/internal/model"
	"github.com/ppiankov/redline/internal/report"
	"github.com/ppiankov/redline/internal/score"
	"github.com/ppiankov/redline/internal/segment"
	"github.com/ppiankov/redline/internal/worker"
)

// Pipeline runs the full analysis: segment, classify, score, match,
// aggregate. Stateless across documents apart from the cache and audit
// trail, so one Pipeline serves concurrent batch jobs.
type Pipeline struct {
	segmenter  *segment.Segmenter
	classifier *classify.Classifier
	scorer     *score.Scorer
	matcher    *match.Matcher

	categories  []model.RiskCategory
	labels      map[string]string
	fingerprint string

	cache     cache.Cache
	auditLog  *audit.Logger
	explainer *llm.Explainer

	config *model.Config
}

// NewPipeline loads and validates the catalogs and wires the stages.
// A broken or empty catalog is a fatal construction error.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	categories, err := catalog.LoadRiskCatalog(cfg.Scoring.CatalogPath)
	if err != nil {
		return nil, err
	}
	templates, err := catalog.LoadTemplates(cfg.Matching.TemplatesPath)
	if err != nil {
		return nil, err
	}

	scorer, err := score.NewScorer(categories)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(categories))
	for _, c := range categories {
		labels[c.ID] = c.Label
	}

	p := &Pipeline{
		segmenter:   segment.New(cfg.Segmenter),
		classifier:  classify.New(),
		scorer:      scorer,
		matcher:     match.New(templates, cfg.Matching.MinSimilarity),
		categories:  categories,
		labels:      labels,
		fingerprint: catalog.Fingerprint(categories, templates),
		config:      cfg,
	}

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = defaultDir("cache")
		}
		p.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	if cfg.Audit.Enabled {
		dir := cfg.Audit.Dir
		if dir == "" {
			dir = defaultDir("audit")
		}
		logger, err := audit.NewLogger(dir)
		if err != nil {
			return nil, err
		}
		p.auditLog = logger
	}

	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM provider disabled: %v\n", err)
		} else {
			p.explainer = llm.NewExplainer(provider, cfg.LLM)
		}
	}

	return p, nil
}

// Analyze runs the pipeline over one document.
func (p *Pipeline) Analyze(ctx context.Context, doc model.Document) (model.AnalysisReport, error) {
	if doc.Text == "" {
		return model.AnalysisReport{}, input.ErrEmptyDocument
	}

	var key string
	if p.cache != nil {
		key = cache.ReportKey(doc.Text, p.fingerprint)
		if data, found := p.cache.Get(key); found {
			var cached model.AnalysisReport
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	seg := p.segmenter.Segment(doc)

	results, err := p.analyzeClauses(ctx, seg.Clauses)
	if err != nil {
		return model.AnalysisReport{}, err
	}

	rep := report.Aggregate(doc, results, p.categories, p.config.Scoring.TopK, seg.Degraded)
	rep.AnalyzedAt = time.Now().UTC()

	if p.cache != nil {
		if data, err := json.Marshal(rep); err == nil {
			_ = p.cache.Set(key, data, 0)
		}
	}

	if p.auditLog != nil {
		if _, err := p.auditLog.Append(doc.Text, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: audit record failed: %v\n", err)
		}
	}

	// Explanations come last so a provider outage costs prose, not the
	// report. They are not cached; cached reports are the rule engine's
	// output alone.
	if p.explainer != nil {
		rep.Explanations = p.explainer.Explain(ctx, rep, p.labels)
	}

	return rep, nil
}

// AnalyzeFile loads a contract from disk and analyzes it. Implements
// worker.FileAnalyzer for batch runs.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (model.AnalysisReport, error) {
	doc, err := input.LoadFile(path, p.config.Input.MaxFileSizeMB)
	if err != nil {
		return model.AnalysisReport{}, err
	}
	return p.Analyze(ctx, doc)
}

// clauseJob runs the three per-clause stages for one clause.
type clauseJob struct {
	clause model.Clause
	p      *Pipeline
}

type clauseOutcome struct {
	result model.ClauseResult
	err    error
}

func (o *clauseOutcome) GetError() error { return o.err }

func (j *clauseJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &clauseOutcome{err: err}
	}

	cls := j.p.classifier.Classify(j.clause)
	scores, flags := j.p.scorer.Score(j.clause, cls)
	matchResult := j.p.matcher.Match(j.clause, cls.Category)

	return &clauseOutcome{result: model.ClauseResult{
		Clause:         j.clause,
		Classification: cls,
		Scores:         scores,
		Flags:          flags,
		Match:          matchResult,
	}}
}

// analyzeClauses fans clauses out over the worker pool and reassembles
// the results in document order.
func (p *Pipeline) analyzeClauses(ctx context.Context, clauses []model.Clause) ([]model.ClauseResult, error) {
	if len(clauses) == 0 {
		return nil, nil
	}

	pool := worker.NewPool(ctx, p.config.Concurrency.Workers)
	pool.Start()
	for _, clause := range clauses {
		pool.Submit(&clauseJob{clause: clause, p: p})
	}

	raw := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]model.ClauseResult, 0, len(raw))
	for _, r := range raw {
		if err := r.GetError(); err != nil {
			return nil, err
		}
		results = append(results, r.(*clauseOutcome).result)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Clause.Index < results[j].Clause.Index
	})
	return results, nil
}

// ClearCache drops all cached reports.
func (p *Pipeline) ClearCache() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Clear()
}

// AuditLog exposes the audit trail, nil when auditing is disabled.
func (p *Pipeline) AuditLog() *audit.Logger {
	return p.auditLog
}

func defaultDir(sub string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".redline", sub)
	}
	return filepath.Join(home, ".redline", sub)
}
