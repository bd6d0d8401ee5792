package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/redline/internal/input"
	"github.com/ppiankov/redline/internal/model"
)

const sampleContract = `SERVICE AGREEMENT

1. PAYMENT
The Client shall pay all invoices within 30 days of receipt. Late payments
shall accrue interest at 1.5% per month.

2. LIABILITY
The Service Provider shall not be liable for any damages whatsoever arising
out of this Agreement, and the Client accepts unlimited liability for all
claims by third parties.

3. TERMINATION
Either party may terminate this Agreement by providing 30 days written
notice to the other party.

4. RENEWAL
This Agreement shall automatically renew for successive one year terms
unless terminated in accordance with Section 3.
`

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Audit.Enabled = false
	return cfg
}

func testDoc(t *testing.T, text string) model.Document {
	t.Helper()
	doc, err := input.FromText("sample.txt", text)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestAnalyzeEndToEnd(t *testing.T) {
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	rep, err := p.Analyze(context.Background(), testDoc(t, sampleContract))
	if err != nil {
		t.Fatal(err)
	}

	if rep.Summary.ClauseCount < 4 {
		t.Errorf("clause count = %d, want at least the 4 sections", rep.Summary.ClauseCount)
	}
	if rep.AnalyzedAt.IsZero() {
		t.Error("timestamp not stamped")
	}
	if rep.DegradedSegmentation {
		t.Error("structured contract marked degraded")
	}

	// The liability clause must dominate the verdict.
	if rep.RiskLevel != model.RiskHigh {
		t.Errorf("risk level = %s, want high", rep.RiskLevel)
	}
	flagged := map[string]bool{}
	for _, f := range rep.Flags {
		flagged[f.CategoryID] = true
	}
	if !flagged["unlimited-liability"] {
		t.Errorf("unlimited-liability not flagged; flags: %+v", rep.Flags)
	}
	if !flagged["auto-renewal"] {
		t.Errorf("auto-renewal not flagged; flags: %+v", rep.Flags)
	}

	// Results come back in document order regardless of worker timing.
	for i, c := range rep.Clauses {
		if c.Clause.Index != i {
			t.Errorf("clause %d out of order (index %d)", i, c.Clause.Index)
		}
	}
	if len(rep.Recommendations) == 0 {
		t.Error("flagged contract should carry recommendations")
	}
}

func TestAnalyzeManyClauses(t *testing.T) {
	// Clause count well beyond the worker count and pool buffers; the
	// fan-out must keep flowing rather than stall mid-submission.
	var b strings.Builder
	b.WriteString("MASTER SERVICES AGREEMENT\n")
	for i := 1; i <= 30; i++ {
		fmt.Fprintf(&b, "\n%d. SECTION %d\nThe Contractor shall deliver item number %d to the Client within 30 days of the applicable milestone date.\n", i, i, i)
	}

	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc(t, b.String())
	done := make(chan model.AnalysisReport, 1)
	errc := make(chan error, 1)
	go func() {
		rep, err := p.Analyze(context.Background(), doc)
		if err != nil {
			errc <- err
			return
		}
		done <- rep
	}()

	select {
	case rep := <-done:
		if rep.Summary.ClauseCount < 30 {
			t.Errorf("clause count = %d, want at least 30", rep.Summary.ClauseCount)
		}
		for i, c := range rep.Clauses {
			if c.Clause.Index != i {
				t.Fatalf("clause %d out of order (index %d)", i, c.Clause.Index)
			}
		}
	case err := <-errc:
		t.Fatal(err)
	case <-time.After(10 * time.Second):
		t.Fatal("analysis stalled on a 30-clause contract")
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Analyze(context.Background(), model.Document{ID: "x"})
	if !errors.Is(err, input.ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc(t, sampleContract)
	a, err := p.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	if a.ContractScore != b.ContractScore || len(a.Flags) != len(b.Flags) {
		t.Errorf("runs differ: %.3f/%d vs %.3f/%d",
			a.ContractScore, len(a.Flags), b.ContractScore, len(b.Flags))
	}
}

func TestAnalyzeCachedReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()

	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatal(err)
	}

	doc := testDoc(t, sampleContract)
	first, err := p.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	// A cache hit returns the stored report, timestamp included.
	if !second.AnalyzedAt.Equal(first.AnalyzedAt) {
		t.Errorf("cache miss on identical document: %v vs %v", second.AnalyzedAt, first.AnalyzedAt)
	}

	if err := p.ClearCache(); err != nil {
		t.Fatal(err)
	}
	third, err := p.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if third.AnalyzedAt.Equal(first.AnalyzedAt) {
		t.Error("report served from cache after clear")
	}
}

func TestAnalyzeCancellation(t *testing.T) {
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Analyze(ctx, testDoc(t, sampleContract)); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestAnalyzeFileAndAudit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit.Enabled = true
	cfg.Audit.Dir = t.TempDir()

	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "msa.txt")
	if err := os.WriteFile(path, []byte(sampleContract), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := p.AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if rep.DocumentName != "msa.txt" {
		t.Errorf("document name = %s", rep.DocumentName)
	}

	records, err := p.AuditLog().List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	if records[0].ContractScore != rep.ContractScore {
		t.Errorf("audit score %.3f != report score %.3f", records[0].ContractScore, rep.ContractScore)
	}
	if err := p.AuditLog().Verify(); err != nil {
		t.Errorf("audit chain: %v", err)
	}
}

func TestAnalyzeUnstructuredFallback(t *testing.T) {
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	plain := "The parties agree to cooperate. The Client shall pay promptly. The Provider may subcontract freely without the prior written consent of the Client."
	rep, err := p.Analyze(context.Background(), testDoc(t, plain))
	if err != nil {
		t.Fatal(err)
	}
	if !rep.DegradedSegmentation {
		t.Error("unstructured text should mark degraded segmentation")
	}
	if rep.Summary.ClauseCount == 0 {
		t.Error("no clauses produced")
	}
}
