// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the metasearch pipeline.
package types

// Result is one search hit normalized from a source backend. Every result
// entering the merge step carries a non-empty URL; adapters filter urlless
// entries at the boundary.
//
// Academic metadata is optional: pointer fields distinguish "the source
// reported zero" from "the source reported nothing", which the merge and
// scoring steps rely on.
type Result struct {
	Title         string `json:"title" yaml:"title"`
	URL           string `json:"url" yaml:"url"`
	Snippet       string `json:"snippet" yaml:"snippet"`
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// Source identifies the contributing backends as a comma-joined label
	// (e.g. "exa, semantic_scholar" after a merge).
	Source string `json:"source" yaml:"source"`

	// Academic metadata, populated by the Semantic Scholar backend.
	Authors              string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Venue                string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Citations            *int   `json:"citations,omitempty" yaml:"citations,omitempty"`
	InfluentialCitations *int   `json:"influential_citations,omitempty" yaml:"influential_citations,omitempty"`
	DOI                  string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID              string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	PDFURL               string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Score is the composite intent score, set only when an intent was
	// requested for the run.
	Score *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// Output is the single JSON document written to stdout for a search run.
type Output struct {
	Mode            string   `json:"mode"`
	Intent          string   `json:"intent"`
	Queries         []string `json:"queries"`
	Count           int      `json:"count"`
	Results         []Result `json:"results"`
	Answer          string   `json:"answer,omitempty"`
	FreshnessFilter string   `json:"freshness_filter,omitempty"`
}
