// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,venue,year,citationCount," +
	"influentialCitationCount,abstract,url,openAccessPdf,externalIds"

// semanticMaxLimit is the API's per-request result cap.
const semanticMaxLimit = 100

// SemanticScholarBackend queries the Semantic Scholar Academic Graph API.
// No API key is required, so this backend is always available.
type SemanticScholarBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Search queries Semantic Scholar and returns results carrying academic
// metadata (authors, venue, citations, DOI, PDF link).
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, opts Options) ([]types.Result, error) {
	limit := opts.Num
	if limit > semanticMaxLimit {
		limit = semanticMaxLimit
	}

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}
	if yearFrom := freshnessYearFrom(opts.Freshness); yearFrom > 0 {
		params.Set("year", fmt.Sprintf("%d-", yearFrom))
	}

	var sr semanticResponse
	reqURL := semanticAPIBase + "?" + params.Encode()
	if err := httputil.GetJSON(ctx, b.Client, reqURL, nil, &sr); err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}

	var results []types.Result
	for _, paper := range sr.Data {
		doi := paper.ExternalIDs.DOI

		paperURL := paper.URL
		if paperURL == "" && doi != "" {
			paperURL = "https://doi.org/" + doi
		}
		if paperURL == "" {
			continue
		}

		citations := paper.CitationCount
		influential := paper.InfluentialCitationCount

		var published string
		if paper.Year > 0 {
			published = strconv.Itoa(paper.Year)
		}

		results = append(results, types.Result{
			Title:                paper.Title,
			URL:                  paperURL,
			Snippet:              truncateAbstract(paper.Abstract),
			PublishedDate:        published,
			Source:               "semantic_scholar",
			Authors:              formatAuthors(paper.Authors),
			Venue:                paper.Venue,
			Citations:            &citations,
			InfluentialCitations: &influential,
			DOI:                  doi,
			ArxivID:              paper.ExternalIDs.ArXiv,
			PDFURL:               paper.OpenAccessPdf.URL,
		})
	}
	return results, nil
}

// freshnessYearFrom converts the freshness bucket to a year lower bound:
// anything up to a month maps to the current year, past-year to the
// previous one.
func freshnessYearFrom(freshness string) int {
	switch freshness {
	case "pd", "pw", "pm":
		return time.Now().UTC().Year()
	case "py":
		return time.Now().UTC().Year() - 1
	default:
		return 0
	}
}

// formatAuthors joins the first three author names, appending "et al."
// when more were listed.
func formatAuthors(authors []semanticAuthor) string {
	var names []string
	for _, a := range authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
		if len(names) == 3 {
			break
		}
	}
	joined := strings.Join(names, ", ")
	if len(authors) > 3 && joined != "" {
		joined += " et al."
	}
	return joined
}

// truncateAbstract limits the snippet to 300 characters.
func truncateAbstract(abstract string) string {
	if len(abstract) > 300 {
		return abstract[:300] + "..."
	}
	return abstract
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title                    string              `json:"title"`
	Abstract                 string              `json:"abstract"`
	URL                      string              `json:"url"`
	Venue                    string              `json:"venue"`
	Year                     int                 `json:"year"`
	CitationCount            int                 `json:"citationCount"`
	InfluentialCitationCount int                 `json:"influentialCitationCount"`
	Authors                  []semanticAuthor    `json:"authors"`
	ExternalIDs              semanticExternalIDs `json:"externalIds"`
	OpenAccessPdf            semanticPdf         `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticPdf struct {
	URL string `json:"url"`
}
