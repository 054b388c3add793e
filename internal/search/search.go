// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search fans queries out to web and academic sources, merges the
// results by canonical URL, and ranks them with intent-aware scoring.
//
// Two levels of fan-out exist: multiple queries run in parallel, and deep
// mode dispatches every available backend in parallel within each query. A
// global counting permit caps the total number of in-flight source calls
// across both levels so nested parallelism cannot explode connections.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/metasearch/internal/scoring"
	"github.com/pdiddy/metasearch/internal/secrets"
	"github.com/pdiddy/metasearch/pkg/types"
)

const (
	// maxInFlight caps concurrent outbound source calls across every level
	// of fan-out (queries × sources).
	maxInFlight = 8

	// maxQueryWorkers bounds the outer query-level pool.
	maxQueryWorkers = 3

	// Per-call timeouts. Grok generates its results and gets longer.
	webTimeout  = 20 * time.Second
	grokTimeout = 30 * time.Second
)

// Engine drives queries through source fan-out, merge, and scoring. A nil
// backend field means that source has no credentials and is skipped; the
// academic backend needs none and is always set.
type Engine struct {
	Exa      Backend
	Tavily   AnswerBackend
	Grok     Backend
	Academic Backend

	// Scorer assigns composite scores when an intent is requested.
	Scorer *scoring.Scorer

	// Stderr receives diagnostic warnings; the stdout payload stays clean.
	Stderr io.Writer

	limiter *semaphore.Weighted
}

// NewEngine wires the available backends from credentials.
func NewEngine(creds secrets.Credentials, client *http.Client, scorer *scoring.Scorer, stderr io.Writer) *Engine {
	e := &Engine{
		Academic: &SemanticScholarBackend{Client: client},
		Scorer:   scorer,
		Stderr:   stderr,
	}
	if creds.Exa != "" {
		e.Exa = &ExaBackend{Client: client, APIKey: creds.Exa}
	}
	if creds.Tavily != "" {
		e.Tavily = &TavilyBackend{Client: client, APIKey: creds.Tavily}
	}
	if creds.HasGrok() {
		e.Grok = &GrokBackend{Client: client, APIURL: creds.GrokURL, APIKey: creds.GrokKey, Model: creds.GrokModel}
	}
	return e
}

// Run executes all queries, merges their results, and scores and sorts them
// when an intent was requested. The only fatal input error is an empty
// query list; source failures degrade to warnings and zero results.
func (e *Engine) Run(ctx context.Context, queries []string, opts Options) (types.Output, error) {
	if len(queries) == 0 {
		return types.Output{}, fmt.Errorf("no query provided")
	}
	if e.Stderr == nil {
		e.Stderr = io.Discard
	}
	if e.limiter == nil {
		e.limiter = semaphore.NewWeighted(maxInFlight)
	}
	if opts.Num <= 0 {
		opts.Num = 5
	}

	var (
		mu     sync.Mutex
		all    []types.Result
		answer string
	)

	// Outer fan-out: each query may spawn its own inner pool, so the outer
	// worker count stays small and the global permit does the real capping.
	g := new(errgroup.Group)
	limit := len(queries)
	if limit > maxQueryWorkers {
		limit = maxQueryWorkers
	}
	g.SetLimit(limit)

	for _, q := range queries {
		q := q
		g.Go(func() error {
			results, ans := e.executeQuery(ctx, q, opts)
			mu.Lock()
			all = append(all, results...)
			if answer == "" && ans != "" {
				answer = ans
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	merged := Merge(all)

	if opts.Intent != "" && e.Scorer != nil {
		// Keyword overlap is computed against the first query; sorting is
		// stable so ties keep their original order.
		primary := queries[0]
		for i := range merged {
			s := e.Scorer.Score(merged[i], primary, opts.Intent)
			merged[i].Score = &s
		}
		sort.SliceStable(merged, func(i, j int) bool {
			return *merged[i].Score > *merged[j].Score
		})
	}

	return types.Output{
		Mode:            opts.Mode,
		Intent:          opts.Intent,
		Queries:         queries,
		Count:           len(merged),
		Results:         merged,
		Answer:          answer,
		FreshnessFilter: opts.Freshness,
	}, nil
}

// executeQuery runs one query through the mode's adapter set and returns
// the concatenated results in completion order.
func (e *Engine) executeQuery(ctx context.Context, query string, opts Options) ([]types.Result, string) {
	academic := opts.Intent == "academic"

	switch opts.Mode {
	case ModeFast:
		// One primary backend: Exa when available, else Grok.
		var results []types.Result
		switch {
		case e.Exa != nil:
			results = e.invoke(ctx, e.Exa, query, opts, webTimeout)
		case e.Grok != nil:
			results = e.invoke(ctx, e.Grok, query, opts, grokTimeout)
		default:
			fmt.Fprintln(e.Stderr, `{"warning": "no API keys found for fast mode"}`)
		}
		if academic && e.Academic != nil {
			results = append(results, e.invoke(ctx, e.Academic, query, opts, webTimeout)...)
		}
		return results, ""

	case ModeAnswer:
		var results []types.Result
		var answer string
		if e.Tavily == nil {
			fmt.Fprintln(e.Stderr, `{"warning": "Tavily API key not found"}`)
		} else {
			results, answer = e.invokeAnswer(ctx, query, opts)
		}
		if academic && e.Academic != nil {
			results = append(results, e.invoke(ctx, e.Academic, query, opts, webTimeout)...)
		}
		return results, answer

	default: // ModeDeep
		type call struct {
			backend Backend
			timeout time.Duration
		}
		var calls []call
		if e.Exa != nil {
			calls = append(calls, call{e.Exa, webTimeout})
		}
		if e.Tavily != nil {
			calls = append(calls, call{e.Tavily, webTimeout})
		}
		if e.Grok != nil {
			calls = append(calls, call{e.Grok, grokTimeout})
		}
		if academic && e.Academic != nil {
			calls = append(calls, call{e.Academic, webTimeout})
		}
		if len(calls) == 0 {
			fmt.Fprintln(e.Stderr, `{"warning": "no search sources available"}`)
			return nil, ""
		}

		workers := 3
		if academic {
			workers = 4
		}

		var mu sync.Mutex
		var all []types.Result
		// Plain errgroup, not WithContext: a failing sibling must never
		// cancel calls already dispatched.
		g := new(errgroup.Group)
		g.SetLimit(workers)
		for _, c := range calls {
			c := c
			g.Go(func() error {
				results := e.invoke(ctx, c.backend, query, opts, c.timeout)
				mu.Lock()
				all = append(all, results...)
				mu.Unlock()
				return nil
			})
		}
		g.Wait()
		return all, ""
	}
}

// invoke runs one backend call under the global permit with its own
// timeout. Failures degrade to a warning and an empty contribution.
func (e *Engine) invoke(ctx context.Context, b Backend, query string, opts Options, timeout time.Duration) []types.Result {
	if err := e.limiter.Acquire(ctx, 1); err != nil {
		fmt.Fprintf(e.Stderr, "[%s] error: %v\n", b.Name(), err)
		return nil
	}
	defer e.limiter.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := b.Search(callCtx, query, opts)
	if err != nil {
		fmt.Fprintf(e.Stderr, "[%s] error: %v\n", b.Name(), err)
		return nil
	}
	return results
}

// invokeAnswer is invoke for the answer-capable backend.
func (e *Engine) invokeAnswer(ctx context.Context, query string, opts Options) ([]types.Result, string) {
	if err := e.limiter.Acquire(ctx, 1); err != nil {
		fmt.Fprintf(e.Stderr, "[%s] error: %v\n", e.Tavily.Name(), err)
		return nil, ""
	}
	defer e.limiter.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, webTimeout)
	defer cancel()

	results, answer, err := e.Tavily.SearchAnswer(callCtx, query, opts)
	if err != nil {
		fmt.Fprintf(e.Stderr, "[%s] error: %v\n", e.Tavily.Name(), err)
		return nil, ""
	}
	return results, answer
}
