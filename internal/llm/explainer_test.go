package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/redline/internal/model"
)

type scriptedProvider struct {
	failOn   string
	requests []ExplainRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *scriptedProvider) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	p.requests = append(p.requests, req)
	if req.CategoryLabel == p.failOn {
		return nil, errors.New("upstream error")
	}
	return &ExplainResponse{Text: "explained: " + req.CategoryLabel, Model: "m"}, nil
}

func flaggedReport() model.AnalysisReport {
	return model.AnalysisReport{
		Clauses: []model.ClauseResult{
			{Clause: model.Clause{Index: 0, Text: "clause zero"}},
			{Clause: model.Clause{Index: 1, Text: "clause one"}},
			{Clause: model.Clause{Index: 2, Text: "clause two"}},
		},
		Flags: []model.RiskFlag{
			{ClauseIndex: 1, CategoryID: "unlimited-liability", Severity: 0.9, Matched: "unlimited liability"},
			{ClauseIndex: 0, CategoryID: "auto-renewal", Severity: 0.7, Matched: "automatically renew"},
			{ClauseIndex: 2, CategoryID: "lock-in", Severity: 0.6, Matched: "lock-in"},
		},
	}
}

func testConfig(maxExplanations int) model.LLMConfig {
	return model.LLMConfig{RequestsPerSecond: 1000, Burst: 1000, MaxExplanations: maxExplanations}
}

func TestExplainerCoversFlagsInRankOrder(t *testing.T) {
	p := &scriptedProvider{}
	e := NewExplainer(p, testConfig(10))

	labels := map[string]string{"unlimited-liability": "Unlimited Liability"}
	explanations := e.Explain(context.Background(), flaggedReport(), labels)

	if len(explanations) != 3 {
		t.Fatalf("explanations = %d, want 3", len(explanations))
	}
	if explanations[0].CategoryID != "unlimited-liability" {
		t.Errorf("worst flag not explained first: %+v", explanations[0])
	}
	if p.requests[0].ClauseText != "clause one" {
		t.Errorf("wrong clause text sent: %q", p.requests[0].ClauseText)
	}
	if p.requests[0].CategoryLabel != "Unlimited Liability" {
		t.Errorf("label not resolved: %q", p.requests[0].CategoryLabel)
	}
	// Unlabeled categories fall back to the id.
	if p.requests[1].CategoryLabel != "auto-renewal" {
		t.Errorf("fallback label = %q", p.requests[1].CategoryLabel)
	}
}

func TestExplainerHonorsCap(t *testing.T) {
	p := &scriptedProvider{}
	e := NewExplainer(p, testConfig(2))

	explanations := e.Explain(context.Background(), flaggedReport(), nil)
	if len(explanations) != 2 {
		t.Errorf("explanations = %d, want cap of 2", len(explanations))
	}
}

func TestExplainerSkipsFailures(t *testing.T) {
	p := &scriptedProvider{failOn: "auto-renewal"}
	e := NewExplainer(p, testConfig(10))

	explanations := e.Explain(context.Background(), flaggedReport(), nil)
	if len(explanations) != 2 {
		t.Fatalf("explanations = %d, want 2 (one skipped)", len(explanations))
	}
	for _, ex := range explanations {
		if ex.CategoryID == "auto-renewal" {
			t.Error("failed explanation was recorded")
		}
	}
}

func TestExplainerNilProvider(t *testing.T) {
	if e := NewExplainer(nil, testConfig(10)); e != nil {
		t.Error("nil provider must yield nil explainer")
	}
	var e *Explainer
	if out := e.Explain(context.Background(), flaggedReport(), nil); out != nil {
		t.Error("nil explainer must return nil")
	}
}

func TestExplainerCancelledContext(t *testing.T) {
	p := &scriptedProvider{}
	e := NewExplainer(p, testConfig(10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if out := e.Explain(ctx, flaggedReport(), nil); len(out) != 0 {
		t.Errorf("cancelled context produced %d explanations", len(out))
	}
}
