// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"

	"github.com/pdiddy/metasearch/pkg/types"
)

// Backend searches a single external source. Each backend (Exa, Tavily,
// Grok, Semantic Scholar) normalizes its vendor schema into types.Result
// and filters out entries without a URL.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]types.Result, error)
}

// AnswerBackend is a Backend that can additionally return an AI-generated
// answer string alongside the result list.
type AnswerBackend interface {
	Backend
	SearchAnswer(ctx context.Context, query string, opts Options) ([]types.Result, string, error)
}

// Options carries the per-run settings every backend call receives.
type Options struct {
	// Mode selects the adapter set: fast, deep, or answer.
	Mode string

	// Intent is the caller-declared search purpose; it selects the scoring
	// weight profile and adds the academic backend to the fan-out.
	Intent string

	// Num is the number of results requested per source per query.
	Num int

	// Freshness is a coarse recency bucket (pd, pw, pm, py) passed to
	// backends that support server-side date filtering.
	Freshness string
}

// Modes.
const (
	ModeFast   = "fast"
	ModeDeep   = "deep"
	ModeAnswer = "answer"
)

// ValidMode reports whether mode names a known search mode.
func ValidMode(mode string) bool {
	return mode == ModeFast || mode == ModeDeep || mode == ModeAnswer
}

// freshnessDays maps the freshness buckets to a day count for backends
// with day-based filters.
var freshnessDays = map[string]int{"pd": 1, "pw": 7, "pm": 30, "py": 365}

// ValidFreshness reports whether f names a known freshness bucket.
func ValidFreshness(f string) bool {
	_, ok := freshnessDays[f]
	return ok
}
