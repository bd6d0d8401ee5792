package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/redline/internal/model"
)

func sampleReport(name string, score float64) model.AnalysisReport {
	return model.AnalysisReport{
		DocumentID:    "doc-" + name,
		DocumentName:  name,
		ContractScore: score,
		RiskLevel:     model.LevelForScore(score),
		Summary:       model.Summary{ClauseCount: 4},
		Flags:         []model.RiskFlag{{CategoryID: "unlimited-liability", Severity: score}},
	}
}

func TestAppendAndGet(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	rec, err := l.Append("contract text", sampleReport("msa.txt", 0.8))
	if err != nil {
		t.Fatal(err)
	}
	if rec.AuditID == "" || rec.Hash == "" {
		t.Errorf("record incomplete: %+v", rec)
	}
	if rec.PrevHash != "" {
		t.Errorf("first record should have empty prev hash, got %q", rec.PrevHash)
	}
	if rec.FlagCount != 1 || rec.ClauseCount != 4 {
		t.Errorf("summary not carried: %+v", rec)
	}

	got, err := l.Get(rec.AuditID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != rec.Hash || got.DocumentHash != rec.DocumentHash {
		t.Errorf("retrieved record differs: %+v vs %+v", got, rec)
	}
}

func TestChainAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	l1, err := NewLogger(dir)
	if err != nil {
		t.Fatal(err)
	}
	first, err := l1.Append("text one", sampleReport("a.txt", 0.5))
	if err != nil {
		t.Fatal(err)
	}

	// A second logger over the same dir must continue the chain.
	l2, err := NewLogger(dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l2.Append("text two", sampleReport("b.txt", 0.2))
	if err != nil {
		t.Fatal(err)
	}
	if second.PrevHash != first.Hash {
		t.Errorf("chain not continued: prev %q, want %q", second.PrevHash, first.Hash)
	}

	if err := l2.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
	records, err := l2.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Append("text", sampleReport("a.txt", 0.9)); err != nil {
		t.Fatal(err)
	}

	// Rewrite the log with a doctored score.
	records, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	records[0].ContractScore = 0.1
	line, _ := json.Marshal(records[0])
	if err := os.WriteFile(filepath.Join(dir, logName), append(line, '\n'), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := l.Verify(); err == nil {
		t.Error("Verify accepted a tampered record")
	}
}

func TestCleanupRetention(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := l.Append("text", sampleReport("a.txt", 0.4))
	if err != nil {
		t.Fatal(err)
	}

	// Nothing is old enough yet.
	removed, err := l.Cleanup(90)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	// Age the record by rewriting the log line with an old timestamp.
	records, _ := l.List()
	records[0].Timestamp = time.Now().UTC().AddDate(0, 0, -120)
	records[0].Hash = chainHash(records[0])
	line, _ := json.Marshal(records[0])
	if err := os.WriteFile(filepath.Join(dir, logName), append(line, '\n'), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err = l.Cleanup(90)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := l.Get(rec.AuditID); err == nil {
		t.Error("expired record still retrievable")
	}
}
