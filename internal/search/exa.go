// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/pkg/types"
)

// exaAPIBase is the Exa search endpoint. Declared as a var so tests can
// substitute an httptest server.
var exaAPIBase = "https://api.exa.ai/search"

// ExaBackend queries the Exa semantic search API.
type ExaBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *ExaBackend) Name() string { return "exa" }

// Search queries Exa and returns normalized results.
func (b *ExaBackend) Search(ctx context.Context, query string, opts Options) ([]types.Result, error) {
	header := http.Header{}
	header.Set("x-api-key", b.APIKey)

	body := exaRequest{Query: query, NumResults: opts.Num, Type: "auto"}
	var er exaResponse
	if err := httputil.PostJSON(ctx, b.Client, exaAPIBase, header, body, &er); err != nil {
		return nil, fmt.Errorf("Exa API request: %w", err)
	}

	var results []types.Result
	for _, res := range er.Results {
		if res.URL == "" {
			continue
		}
		snippet := res.Text
		if snippet == "" {
			snippet = res.Snippet
		}
		results = append(results, types.Result{
			Title:         res.Title,
			URL:           res.URL,
			Snippet:       snippet,
			PublishedDate: res.PublishedDate,
			Source:        "exa",
		})
	}
	return results, nil
}

// Exa API JSON structures.
type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Type       string `json:"type"`
}

type exaResponse struct {
	Results []exaResult `json:"results"`
}

type exaResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Text          string `json:"text"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"publishedDate"`
}
