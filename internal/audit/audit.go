package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/redline/internal/model"
)

// Record is one audit entry: who analyzed what, when, and what came
// out. Records form a hash chain so after-the-fact edits are
// detectable when a scored report is later disputed.
type Record struct {
	AuditID      string          `json:"audit_id"`
	Timestamp    time.Time       `json:"timestamp"`
	DocumentID   string          `json:"document_id"`
	DocumentName string          `json:"document_name,omitempty"`
	DocumentHash string          `json:"document_hash"`

	ContractScore float64         `json:"contract_score"`
	RiskLevel     model.RiskLevel `json:"risk_level"`
	ClauseCount   int             `json:"clause_count"`
	FlagCount     int             `json:"flag_count"`

	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
}

// Logger appends analysis records to an append-only chain on disk.
// Safe for concurrent use within one process.
type Logger struct {
	dir string

	mu       sync.Mutex
	lastHash string
}

const logName = "audit.jsonl"

// NewLogger opens (or creates) the audit trail at dir and recovers the
// chain tip from the existing log.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Join(dir, "records"), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	l := &Logger{dir: dir}
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		l.lastHash = records[len(records)-1].Hash
	}
	return l, nil
}

// Append records one completed analysis and returns the stored record.
func (l *Logger) Append(documentText string, report model.AnalysisReport) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	docHash := sha256.Sum256([]byte(documentText))
	rec := Record{
		AuditID:       uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		DocumentID:    report.DocumentID,
		DocumentName:  report.DocumentName,
		DocumentHash:  hex.EncodeToString(docHash[:]),
		ContractScore: report.ContractScore,
		RiskLevel:     report.RiskLevel,
		ClauseCount:   report.Summary.ClauseCount,
		FlagCount:     len(report.Flags),
		PrevHash:      l.lastHash,
	}
	rec.Hash = chainHash(rec)

	line, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("marshal audit record: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(l.dir, logName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Record{}, fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return Record{}, fmt.Errorf("append audit record: %w", err)
	}

	// Per-record copy for direct retrieval by id.
	detail, _ := json.MarshalIndent(rec, "", "  ")
	recordPath := filepath.Join(l.dir, "records", rec.AuditID+".json")
	if err := os.WriteFile(recordPath, detail, 0o644); err != nil {
		return Record{}, fmt.Errorf("write audit record: %w", err)
	}

	l.lastHash = rec.Hash
	return rec, nil
}

// List returns every record in chain order.
func (l *Logger) List() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readAll()
}

// Get returns one record by audit id.
func (l *Logger) Get(auditID string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, "records", auditID+".json"))
	if err != nil {
		return Record{}, fmt.Errorf("read audit record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse audit record: %w", err)
	}
	return rec, nil
}

// Verify walks the chain and reports the first tampered or out-of-order
// record.
func (l *Logger) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readAll()
	if err != nil {
		return err
	}
	prev := ""
	for i, rec := range records {
		if rec.PrevHash != prev {
			return fmt.Errorf("record %d (%s): chain broken", i, rec.AuditID)
		}
		if chainHash(rec) != rec.Hash {
			return fmt.Errorf("record %d (%s): hash mismatch", i, rec.AuditID)
		}
		prev = rec.Hash
	}
	return nil
}

// Cleanup drops per-record files older than the retention window. The
// chained log itself is never rewritten; truncating it would break
// verification.
func (l *Logger) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	records, err := l.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range records {
		if rec.Timestamp.After(cutoff) {
			continue
		}
		path := filepath.Join(l.dir, "records", rec.AuditID+".json")
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (l *Logger) readAll() ([]Record, error) {
	f, err := os.Open(filepath.Join(l.dir, logName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("corrupt audit log line: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return records, nil
}

// chainHash hashes the record content plus the previous hash. The Hash
// field itself is excluded.
func chainHash(rec Record) string {
	rec.Hash = ""
	data, _ := json.Marshal(rec)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
