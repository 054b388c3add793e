// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyBackend queries the Tavily web search API. It is the
// answer-capable backend: answer mode asks it for an inline AI-generated
// answer alongside the results.
type TavilyBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *TavilyBackend) Name() string { return "tavily" }

// Search queries Tavily and returns normalized results.
func (b *TavilyBackend) Search(ctx context.Context, query string, opts Options) ([]types.Result, error) {
	results, _, err := b.search(ctx, query, opts, false)
	return results, err
}

// SearchAnswer queries Tavily requesting an AI-generated answer in
// addition to the results.
func (b *TavilyBackend) SearchAnswer(ctx context.Context, query string, opts Options) ([]types.Result, string, error) {
	return b.search(ctx, query, opts, true)
}

func (b *TavilyBackend) search(ctx context.Context, query string, opts Options, includeAnswer bool) ([]types.Result, string, error) {
	body := tavilyRequest{
		APIKey:        b.APIKey,
		Query:         query,
		MaxResults:    opts.Num,
		IncludeAnswer: includeAnswer,
	}
	// Server-side date filtering via a day window.
	if days, ok := freshnessDays[opts.Freshness]; ok {
		body.Days = days
	}

	var tr tavilyResponse
	if err := httputil.PostJSON(ctx, b.Client, tavilyAPIBase, nil, body, &tr); err != nil {
		return nil, "", fmt.Errorf("Tavily API request: %w", err)
	}

	var results []types.Result
	for _, res := range tr.Results {
		if res.URL == "" {
			continue
		}
		results = append(results, types.Result{
			Title:         res.Title,
			URL:           res.URL,
			Snippet:       res.Content,
			PublishedDate: res.PublishedDate,
			Source:        "tavily",
		})
	}
	return results, tr.Answer, nil
}

// Tavily API JSON structures.
type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
	Days          int    `json:"days,omitempty"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
	Answer  string         `json:"answer"`
}

type tavilyResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"published_date"`
}
