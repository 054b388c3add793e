// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authority maps result domains to static trust scores.
//
// The table is loaded once from a YAML document (three general tiers plus
// four academic sub-tiers, ordered pattern rules, and a default score) and
// is immutable afterwards. Callers construct a Table at startup and pass it
// by reference into the scorer.
package authority

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// PatternRule matches hostnames by wildcard shape: "*.suffix" matches a
// hostname suffix, "prefix.*" a hostname prefix, and "*.middle.*" any
// hostname containing the middle fragment.
type PatternRule struct {
	Pattern string  `yaml:"pattern" json:"pattern"`
	Score   float64 `yaml:"score" json:"score"`
}

// Table is an immutable domain trust lookup.
type Table struct {
	scores       map[string]float64
	rules        []PatternRule
	defaultScore float64
}

const fallbackDefaultScore = 0.4

// document mirrors the on-disk authority-domains YAML layout.
type document struct {
	Tier1    tier `yaml:"tier1"`
	Tier2    tier `yaml:"tier2"`
	Tier3    tier `yaml:"tier3"`
	Academic struct {
		Tier1 tier `yaml:"tier1_academic"`
		Tier2 tier `yaml:"tier2_academic"`
		Tier3 tier `yaml:"tier3_academic"`
		Tier4 tier `yaml:"tier4_academic"`
	} `yaml:"academic"`
	PatternRules []PatternRule `yaml:"pattern_rules"`
	DefaultScore *float64      `yaml:"tier4_default_score"`
}

type tier struct {
	Score   *float64 `yaml:"score"`
	Domains []string `yaml:"domains"`
}

// Load reads the authority table from a YAML document. A missing file is
// not an error: the built-in fallback table is returned instead.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading authority table %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing authority table %s: %w", path, err)
	}

	t := &Table{
		scores:       make(map[string]float64),
		rules:        doc.PatternRules,
		defaultScore: fallbackDefaultScore,
	}
	if doc.DefaultScore != nil {
		t.defaultScore = *doc.DefaultScore
	}

	tiers := []tier{
		doc.Tier1, doc.Tier2, doc.Tier3,
		doc.Academic.Tier1, doc.Academic.Tier2, doc.Academic.Tier3, doc.Academic.Tier4,
	}
	for _, tr := range tiers {
		score := fallbackDefaultScore
		if tr.Score != nil {
			score = *tr.Score
		}
		for _, d := range tr.Domains {
			t.scores[strings.ToLower(d)] = score
		}
	}
	return t, nil
}

// Default returns the built-in table used when no document is available.
func Default() *Table {
	return &Table{
		scores: map[string]float64{
			"github.com": 1.0, "stackoverflow.com": 1.0, "wikipedia.org": 1.0,
			"developer.mozilla.org": 1.0, "arxiv.org": 1.0,
			"news.ycombinator.com": 0.8, "dev.to": 0.8, "reddit.com": 0.8,
			"medium.com": 0.6, "hackernoon.com": 0.6,
			"nature.com": 1.0, "sciencemag.org": 1.0, "cell.com": 1.0,
			"ncbi.nlm.nih.gov": 1.0, "biorxiv.org": 1.0,
			"ieee.org": 0.8, "acm.org": 0.8, "springer.com": 0.8,
			"sciencedirect.com": 0.8, "pubs.acs.org": 0.8,
			"researchgate.net": 0.6, "plos.org": 0.6, "mdpi.com": 0.6,
		},
		defaultScore: fallbackDefaultScore,
	}
}

// DefaultScore returns the fallback score for unknown domains.
func (t *Table) DefaultScore() float64 { return t.defaultScore }

// Score returns the trust score in [0,1] for a URL's hostname. Resolution
// order, first match wins: exact domain (with and without a leading "www."),
// suffix of a known domain, pattern rules in list order, then the default.
// A malformed URL scores the default.
func (t *Table) Score(rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return t.defaultScore
	}
	host := strings.ToLower(u.Hostname())

	for _, candidate := range []string{host, strings.TrimPrefix(host, "www.")} {
		if s, ok := t.scores[candidate]; ok {
			return s
		}
		// Suffix match against known domains; the longest known suffix wins
		// so nested domains (e.g. ncbi.nlm.nih.gov under nih.gov) resolve
		// deterministically.
		best := ""
		bestScore := 0.0
		for known, s := range t.scores {
			if strings.HasSuffix(candidate, "."+known) && len(known) > len(best) {
				best, bestScore = known, s
			}
		}
		if best != "" {
			return bestScore
		}
	}

	for _, rule := range t.rules {
		pat := rule.Pattern
		switch {
		case strings.HasPrefix(pat, "*.") && strings.HasSuffix(pat, ".*"):
			if middle := pat[2 : len(pat)-2]; middle != "" && strings.Contains(host, middle) {
				return rule.Score
			}
		case strings.HasPrefix(pat, "*."):
			if strings.HasSuffix(host, pat[1:]) {
				return rule.Score
			}
		case strings.HasSuffix(pat, ".*"):
			if strings.HasPrefix(host, pat[:len(pat)-2]+".") {
				return rule.Score
			}
		}
	}

	return t.defaultScore
}
