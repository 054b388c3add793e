// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/pkg/types"
)

func TestKeywordScore(t *testing.T) {
	tests := []struct {
		name           string
		title, snippet string
		query          string
		want           float64
	}{
		{"all terms match", "Rust async runtime", "tokio internals", "rust async runtime", 1.0},
		{"partial match", "Rust guide", "introduction", "rust async runtime", 1.0 / 3.0},
		{"no match", "Cooking pasta", "recipes", "rust async runtime", 0.0},
		{"short terms dropped", "Go", "language", "go on if", 0.5},
		{"empty query", "Anything", "at all", "", 0.5},
		{"duplicate terms counted once", "Rust book", "", "rust rust rust", 1.0},
		{"substring match", "Asynchronous runtimes", "", "async", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordScore(tt.title, tt.snippet, tt.query)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFreshnessScoreFromDate(t *testing.T) {
	now := time.Now().UTC()
	day := func(n int) string { return now.AddDate(0, 0, -n).Format("2006-01-02") }

	tests := []struct {
		name string
		date string
		want float64
	}{
		{"today", day(0), 1.0},
		{"five days", day(5), 0.9},
		{"three weeks", day(21), 0.7},
		{"two months", day(60), 0.5},
		{"half a year", day(200), 0.3},
		{"two years", day(730), 0.1},
		{"timestamp format", now.AddDate(0, 0, -5).Format("2006-01-02T15:04:05"), 0.9},
		{"long month format", now.AddDate(0, 0, -60).Format("January 2, 2006"), 0.5},
		{"unparseable", "sometime last week", 0.5},
		{"bare year is unparseable", "2017", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreshnessScore(tt.date, "")
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFreshnessScoreFromSnippetYear(t *testing.T) {
	year := time.Now().UTC().Year()
	if year > 2029 {
		t.Skip("snippet year extraction only covers the 2020s")
	}

	tests := []struct {
		name    string
		snippet string
		want    float64
	}{
		{"current year", fmt.Sprintf("released in %d with fixes", year), 0.9},
		{"no year", "no date information here", 0.5},
		{"year outside window", "published in 2014", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreshnessScore("", tt.snippet)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCitationScoreMonotonic(t *testing.T) {
	prev := 0.0
	for _, n := range []int{0, 4, 5, 19, 20, 49, 50, 99, 100, 499, 500, 999, 1000, 50000} {
		got := CitationScore(n)
		assert.GreaterOrEqual(t, got, prev, "citations=%d", n)
		prev = got
	}
	assert.InDelta(t, 0.1, CitationScore(4), 1e-9)
	assert.InDelta(t, 0.25, CitationScore(5), 1e-9)
	assert.InDelta(t, 0.7, CitationScore(120), 1e-9)
	assert.InDelta(t, 1.0, CitationScore(1000), 1e-9)
}

func TestWeightsForUnknownIntent(t *testing.T) {
	assert.Equal(t, WeightsFor("exploratory"), WeightsFor("nonsense"))
	assert.True(t, KnownIntent("academic"))
	assert.False(t, KnownIntent("shopping"))
}

func TestScoreBoundsAndRounding(t *testing.T) {
	scorer := &Scorer{Table: authority.Default()}
	citations := 120
	r := types.Result{
		Title:         "Attention Is All You Need",
		URL:           "https://arxiv.org/abs/1706.03762",
		Snippet:       "We propose a new architecture based on attention.",
		PublishedDate: "2017-06-12",
		Citations:     &citations,
	}

	for _, intent := range Intents() {
		w := WeightsFor(intent)
		maxSum := w.Keyword + w.Freshness + w.Authority + w.Citations
		got := scorer.Score(r, "attention architecture", intent)
		assert.GreaterOrEqual(t, got, 0.0, "intent %s", intent)
		assert.LessOrEqual(t, got, maxSum+1e-9, "intent %s", intent)

		rounded := float64(int(got*10000+0.5)) / 10000
		assert.InDelta(t, rounded, got, 1e-9, "intent %s not rounded to 4 places", intent)
	}
}

func TestScoreOmitsCitationTermWithoutCount(t *testing.T) {
	scorer := &Scorer{Table: authority.Default()}
	uncited := types.Result{
		Title:   "transformer survey",
		URL:     "https://example.org/survey",
		Snippet: "transformer survey",
	}
	got := scorer.Score(uncited, "transformer survey", "academic")

	// keyword 0.15*1.0 + freshness 0.15*0.5 + authority 0.3*0.4; no citation term.
	assert.InDelta(t, 0.15+0.075+0.12, got, 1e-9)
}

func TestFactualIntentPrefersAuthority(t *testing.T) {
	scorer := &Scorer{Table: authority.Default()}
	query := "rust async runtime"
	snippet := "rust async runtime comparison"

	github := types.Result{
		Title:         "rust async runtime",
		URL:           "https://github.com/tokio-rs/tokio",
		Snippet:       snippet,
		PublishedDate: time.Now().UTC().Format("2006-01-02"),
		Source:        "exa",
	}
	medium := types.Result{
		Title:         "rust async runtime",
		URL:           "https://medium.com/@someone/runtimes",
		Snippet:       snippet,
		PublishedDate: time.Now().UTC().AddDate(-2, 0, 0).Format("2006-01-02"),
		Source:        "tavily",
	}

	gh := scorer.Score(github, query, "factual")
	md := scorer.Score(medium, query, "factual")
	assert.Greater(t, gh, md)
}

func TestAuthorityScoreDomainBoost(t *testing.T) {
	base := &Scorer{Table: authority.Default()}
	boosted := &Scorer{Table: authority.Default(), BoostDomains: []string{"github.com"}}

	// Subdomain of a boosted domain gains +0.2 capped at 1.0.
	u := "https://sub.github.com/page"
	assert.InDelta(t, 1.0, base.AuthorityScore(u), 1e-9)
	assert.InDelta(t, 1.0, boosted.AuthorityScore(u), 1e-9)

	// Where the base score leaves room, the boost is visible.
	low := &Scorer{Table: authority.Default(), BoostDomains: []string{"example.org"}}
	assert.InDelta(t, 0.4, base.AuthorityScore("https://docs.example.org/"), 1e-9)
	assert.InDelta(t, 0.6, low.AuthorityScore("https://docs.example.org/"), 1e-9)
	assert.InDelta(t, 0.6, low.AuthorityScore("https://example.org/"), 1e-9)

	// Unrelated hosts are not boosted.
	assert.InDelta(t, 0.4, low.AuthorityScore("https://other.net/"), 1e-9)
}
