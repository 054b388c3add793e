// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoring ranks merged search results with intent-weighted signals.
//
// Four independent signals (keyword overlap, freshness, domain authority,
// citation count) are combined into one composite score per result. The
// declared query intent selects the weight profile; the citation term only
// participates when the profile declares it and the result actually carries
// a citation count, so uncited results are not penalized under the academic
// profile.
package scoring

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/pkg/types"
)

// Weights is an intent profile mapping each signal to a non-negative
// weight. Weights need not sum to 1. A zero Citations weight means the
// profile does not declare the citation signal.
type Weights struct {
	Keyword   float64
	Freshness float64
	Authority float64
	Citations float64
}

const defaultIntent = "exploratory"

var intentWeights = map[string]Weights{
	"factual":     {Keyword: 0.4, Freshness: 0.1, Authority: 0.5},
	"status":      {Keyword: 0.3, Freshness: 0.5, Authority: 0.2},
	"comparison":  {Keyword: 0.4, Freshness: 0.2, Authority: 0.4},
	"tutorial":    {Keyword: 0.4, Freshness: 0.1, Authority: 0.5},
	"exploratory": {Keyword: 0.3, Freshness: 0.2, Authority: 0.5},
	"news":        {Keyword: 0.3, Freshness: 0.6, Authority: 0.1},
	"resource":    {Keyword: 0.5, Freshness: 0.1, Authority: 0.4},
	// Academic: citation count is the dominant signal; the other weights
	// are smaller specifically to make room for it.
	"academic": {Keyword: 0.15, Freshness: 0.15, Authority: 0.3, Citations: 0.4},
}

// WeightsFor returns the profile for intent, falling back to exploratory
// when the intent is unrecognized.
func WeightsFor(intent string) Weights {
	if w, ok := intentWeights[intent]; ok {
		return w
	}
	return intentWeights[defaultIntent]
}

// KnownIntent reports whether intent names a declared weight profile.
func KnownIntent(intent string) bool {
	_, ok := intentWeights[intent]
	return ok
}

// Intents returns the declared intent names, for CLI validation messages.
func Intents() []string {
	return []string{"factual", "status", "comparison", "tutorial",
		"exploratory", "news", "resource", "academic"}
}

// KeywordScore measures query-term overlap with the result's title and
// snippet. Terms of length <= 2 are dropped; if no terms survive the
// filter the score is a neutral 0.5.
func KeywordScore(title, snippet, query string) float64 {
	seen := make(map[string]bool)
	total, matched := 0, 0
	text := strings.ToLower(title + " " + snippet)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if len(term) <= 2 || seen[term] {
			continue
		}
		seen[term] = true
		total++
		if strings.Contains(text, term) {
			matched++
		}
	}
	if total == 0 {
		return 0.5
	}
	return math.Min(1.0, float64(matched)/float64(total))
}

// yearPattern extracts a four-digit year when the result has no date field.
var yearPattern = regexp.MustCompile(`\b(202[0-9])\b`)

// dateFormats is the ordered list of layouts tried against published_date.
var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
}

// FreshnessScore maps a result's age to [0,1]. It prefers the published
// date; absent that, a year mentioned in the snippet; absent both, a
// neutral 0.5. An unparseable date string is also neutral.
func FreshnessScore(publishedDate, snippet string) float64 {
	now := time.Now().UTC()

	if publishedDate == "" {
		m := yearPattern.FindStringSubmatch(snippet)
		if m == nil {
			return 0.5
		}
		year, _ := strconv.Atoi(m[1])
		switch diff := now.Year() - year; {
		case diff == 0:
			return 0.9
		case diff == 1:
			return 0.6
		case diff <= 3:
			return 0.4
		default:
			return 0.2
		}
	}

	s := strings.TrimSpace(publishedDate)
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		days := int(now.Sub(t).Hours() / 24)
		switch {
		case days <= 1:
			return 1.0
		case days <= 7:
			return 0.9
		case days <= 30:
			return 0.7
		case days <= 90:
			return 0.5
		case days <= 365:
			return 0.3
		default:
			return 0.1
		}
	}
	return 0.5
}

// CitationScore normalizes a citation count to [0,1] on a log-scale step
// function calibrated for cross-discipline use.
func CitationScore(citations int) float64 {
	switch {
	case citations < 5:
		return 0.1
	case citations < 20:
		return 0.25
	case citations < 50:
		return 0.4
	case citations < 100:
		return 0.55
	case citations < 500:
		return 0.7
	case citations < 1000:
		return 0.85
	default:
		return 1.0
	}
}

// Scorer computes composite scores against a fixed authority table and an
// optional set of boosted domains.
type Scorer struct {
	Table        *authority.Table
	BoostDomains []string
}

// Score combines the weighted signals for a result under the given intent,
// rounded to 4 decimal places. The citation term is included only when the
// profile declares a citation weight and the result carries a count;
// otherwise it is omitted entirely rather than treated as zero.
func (s *Scorer) Score(r types.Result, query, intent string) float64 {
	w := WeightsFor(intent)

	kw := KeywordScore(r.Title, r.Snippet, query)
	fr := FreshnessScore(r.PublishedDate, r.Snippet)
	au := s.AuthorityScore(r.URL)

	score := w.Keyword*kw + w.Freshness*fr + w.Authority*au
	if w.Citations > 0 && r.Citations != nil {
		score += w.Citations * CitationScore(*r.Citations)
	}
	return math.Round(score*10000) / 10000
}

// AuthorityScore delegates to the authority table and adds a +0.2 boost,
// capped at 1.0, when the hostname equals or is a subdomain of a boosted
// domain.
func (s *Scorer) AuthorityScore(rawURL string) float64 {
	au := s.Table.Score(rawURL)
	if len(s.BoostDomains) == 0 {
		return au
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return au
	}
	host := strings.ToLower(u.Hostname())
	for _, bd := range s.BoostDomains {
		if host == bd || strings.HasSuffix(host, "."+bd) {
			return math.Min(1.0, au+0.2)
		}
	}
	return au
}
