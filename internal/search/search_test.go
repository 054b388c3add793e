// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/internal/scoring"
	"github.com/pdiddy/metasearch/internal/secrets"
	"github.com/pdiddy/metasearch/pkg/types"
)

// --- mock backends ---

type mockBackend struct {
	name    string
	results []types.Result
	err     error
	delay   time.Duration
	calls   int32
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(_ context.Context, _ string, _ Options) ([]types.Result, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.results, m.err
}

func (m *mockBackend) callCount() int { return int(atomic.LoadInt32(&m.calls)) }

type mockAnswerBackend struct {
	mockBackend
	answer string
}

func (m *mockAnswerBackend) SearchAnswer(ctx context.Context, query string, opts Options) ([]types.Result, string, error) {
	results, err := m.Search(ctx, query, opts)
	return results, m.answer, err
}

func result(url, source string) types.Result {
	return types.Result{Title: url, URL: url, Source: source}
}

func testScorer() *scoring.Scorer {
	return &scoring.Scorer{Table: authority.Default()}
}

// --- Run ---

func TestRunNoQueryIsFatal(t *testing.T) {
	e := &Engine{Stderr: &bytes.Buffer{}}
	_, err := e.Run(context.Background(), nil, Options{Mode: ModeDeep})
	if err == nil || !strings.Contains(err.Error(), "no query") {
		t.Errorf("expected fatal no-query error, got: %v", err)
	}
}

func TestRunDeepCollectsAllSources(t *testing.T) {
	exa := &mockBackend{name: "exa", results: []types.Result{result("https://a.com/1", "exa")}}
	tavily := &mockAnswerBackend{mockBackend: mockBackend{name: "tavily", results: []types.Result{result("https://b.com/2", "tavily")}}}
	grok := &mockBackend{name: "grok", results: []types.Result{result("https://c.com/3", "grok")}}

	var buf bytes.Buffer
	e := &Engine{Exa: exa, Tavily: tavily, Grok: grok, Stderr: &buf}

	out, err := e.Run(context.Background(), []string{"test"}, Options{Mode: ModeDeep})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("Count = %d, want 3", out.Count)
	}
	if exa.callCount() != 1 || tavily.callCount() != 1 || grok.callCount() != 1 {
		t.Errorf("each backend should be called once: exa=%d tavily=%d grok=%d",
			exa.callCount(), tavily.callCount(), grok.callCount())
	}
}

func TestRunDeepSkipsAcademicWithoutIntent(t *testing.T) {
	exa := &mockBackend{name: "exa", results: []types.Result{result("https://a.com/1", "exa")}}
	academic := &mockBackend{name: "semantic_scholar"}

	e := &Engine{Exa: exa, Academic: academic, Stderr: &bytes.Buffer{}}
	if _, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeDeep}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if academic.callCount() != 0 {
		t.Errorf("academic backend called %d times without academic intent", academic.callCount())
	}
}

func TestRunFastAcademicCallCounts(t *testing.T) {
	// fast + academic intent: exactly one primary call plus one academic call.
	exa := &mockBackend{name: "exa", results: []types.Result{result("https://a.com/1", "exa")}}
	grok := &mockBackend{name: "grok"}
	cites := 120
	academic := &mockBackend{name: "semantic_scholar", results: []types.Result{{
		Title: "paper", URL: "https://b.com/p", Source: "semantic_scholar", Citations: &cites,
	}}}

	e := &Engine{Exa: exa, Grok: grok, Academic: academic, Scorer: testScorer(), Stderr: &bytes.Buffer{}}
	out, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeFast, Intent: "academic"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exa.callCount() != 1 {
		t.Errorf("primary (exa) calls = %d, want 1", exa.callCount())
	}
	if grok.callCount() != 0 {
		t.Errorf("grok calls = %d, want 0 (exa is first in priority order)", grok.callCount())
	}
	if academic.callCount() != 1 {
		t.Errorf("academic calls = %d, want 1", academic.callCount())
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
}

func TestRunFastFallsBackToGrok(t *testing.T) {
	grok := &mockBackend{name: "grok", results: []types.Result{result("https://c.com/3", "grok")}}
	e := &Engine{Grok: grok, Stderr: &bytes.Buffer{}}

	out, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if grok.callCount() != 1 || out.Count != 1 {
		t.Errorf("grok calls = %d, Count = %d; want 1 and 1", grok.callCount(), out.Count)
	}
}

func TestRunAnswerMode(t *testing.T) {
	tavily := &mockAnswerBackend{
		mockBackend: mockBackend{name: "tavily", results: []types.Result{result("https://b.com/2", "tavily")}},
		answer:      "42 is the answer.",
	}
	e := &Engine{Tavily: tavily, Stderr: &bytes.Buffer{}}

	out, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeAnswer})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Answer != "42 is the answer." {
		t.Errorf("Answer = %q", out.Answer)
	}
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}
}

func TestRunBackendFailureDegrades(t *testing.T) {
	failing := &mockBackend{name: "exa", err: fmt.Errorf("connection refused")}
	tavily := &mockAnswerBackend{mockBackend: mockBackend{name: "tavily", results: []types.Result{result("https://b.com/2", "tavily")}}}

	var buf bytes.Buffer
	e := &Engine{Exa: failing, Tavily: tavily, Stderr: &buf}

	out, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeDeep})
	if err != nil {
		t.Fatalf("Run should not fail on a source error: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}
	if !strings.Contains(buf.String(), "[exa] error:") {
		t.Errorf("stderr should name the failed source, got %q", buf.String())
	}
}

func TestRunNoSourcesDeep(t *testing.T) {
	// Zero credentials in deep mode: empty payload plus a warning, no error.
	var buf bytes.Buffer
	e := &Engine{Stderr: &buf}

	out, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeDeep})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Count = %d, want 0", out.Count)
	}
	if !strings.Contains(buf.String(), "warning") {
		t.Errorf("stderr should carry a warning, got %q", buf.String())
	}
}

func TestRunScoresAndSortsWithIntent(t *testing.T) {
	now := time.Now().UTC().Format("2006-01-02")
	old := time.Now().UTC().AddDate(-2, 0, 0).Format("2006-01-02")
	exa := &mockBackend{name: "exa", results: []types.Result{
		{Title: "rust async runtime", URL: "https://medium.com/x", Snippet: "rust async runtime", PublishedDate: old, Source: "exa"},
		{Title: "rust async runtime", URL: "https://github.com/tokio-rs/tokio", Snippet: "rust async runtime", PublishedDate: now, Source: "exa"},
	}}

	e := &Engine{Exa: exa, Scorer: testScorer(), Stderr: &bytes.Buffer{}}
	out, err := e.Run(context.Background(), []string{"rust async runtime"}, Options{Mode: ModeFast, Intent: "factual"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(out.Results))
	}
	if out.Results[0].URL != "https://github.com/tokio-rs/tokio" {
		t.Errorf("github result should rank first, got %q", out.Results[0].URL)
	}
	for _, r := range out.Results {
		if r.Score == nil {
			t.Errorf("result %q missing score", r.URL)
		}
	}
	if *out.Results[0].Score <= *out.Results[1].Score {
		t.Errorf("results not sorted descending: %v vs %v", *out.Results[0].Score, *out.Results[1].Score)
	}
}

func TestRunNoIntentNoScores(t *testing.T) {
	exa := &mockBackend{name: "exa", results: []types.Result{result("https://a.com/1", "exa")}}
	e := &Engine{Exa: exa, Scorer: testScorer(), Stderr: &bytes.Buffer{}}

	out, err := e.Run(context.Background(), []string{"q"}, Options{Mode: ModeFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Results[0].Score != nil {
		t.Errorf("Score should be absent without an intent, got %v", *out.Results[0].Score)
	}
}

func TestRunMergesAcrossQueries(t *testing.T) {
	exa := &mockBackend{name: "exa", results: []types.Result{result("https://a.com/1", "exa")}}
	e := &Engine{Exa: exa, Stderr: &bytes.Buffer{}}

	out, err := e.Run(context.Background(), []string{"q1", "q2", "q3"}, Options{Mode: ModeFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exa.callCount() != 3 {
		t.Errorf("exa calls = %d, want 3 (one per query)", exa.callCount())
	}
	// All three queries returned the same URL; the merge folds them.
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}
}

// trackingBackend records the maximum number of concurrent Search calls.
type trackingBackend struct {
	name    string
	mu      sync.Mutex
	current int
	peak    int
}

func (b *trackingBackend) Name() string { return b.name }

func (b *trackingBackend) Search(_ context.Context, _ string, _ Options) ([]types.Result, error) {
	b.mu.Lock()
	b.current++
	if b.current > b.peak {
		b.peak = b.current
	}
	b.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	b.current--
	b.mu.Unlock()
	return nil, nil
}

func TestGlobalPermitCapsNestedFanOut(t *testing.T) {
	// 6 queries × 3 deep-mode sources would be 18 potential in-flight calls;
	// the shared permit keeps the peak at or below 8.
	shared := &trackingBackend{name: "shared"}
	tavily := &mockAnswerBackend{mockBackend: mockBackend{name: "tavily"}}
	e := &Engine{
		Exa:    shared,
		Tavily: tavily,
		Grok:   shared,
		Stderr: &bytes.Buffer{},
	}

	queries := []string{"q1", "q2", "q3", "q4", "q5", "q6"}
	if _, err := e.Run(context.Background(), queries, Options{Mode: ModeDeep}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	shared.mu.Lock()
	peak := shared.peak
	shared.mu.Unlock()
	if peak > 8 {
		t.Errorf("peak concurrent source calls = %d, want <= 8", peak)
	}
}

func TestNewEngineWiresAvailableBackends(t *testing.T) {
	e := NewEngine(secrets.Credentials{Exa: "k"}, nil, testScorer(), &bytes.Buffer{})
	if e.Exa == nil {
		t.Error("Exa should be wired when its key is present")
	}
	if e.Tavily != nil || e.Grok != nil {
		t.Error("backends without credentials should stay nil")
	}
	if e.Academic == nil {
		t.Error("academic backend needs no key and should always be wired")
	}

	e = NewEngine(secrets.Credentials{GrokKey: "k", GrokURL: "https://x"}, nil, testScorer(), &bytes.Buffer{})
	if e.Grok == nil {
		t.Error("Grok should be wired when both URL and key are present")
	}
}
