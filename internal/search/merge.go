// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/url"
	"strings"

	"github.com/pdiddy/metasearch/pkg/types"
)

// CanonicalURL returns the dedup key for a raw URL: tracking parameters
// (utm_*) and the fragment are dropped and the trailing slash is stripped,
// so URLs differing only by those map to the same key. On parse failure the
// raw string with trailing slashes stripped is used.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimRight(raw, "/")
	}
	q := u.Query()
	for k := range q {
		if strings.HasPrefix(k, "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""
	return u.String()
}

// Merge folds raw results sharing a canonical URL into one enriched record,
// preserving first-seen order. Results without a URL are discarded.
func Merge(results []types.Result) []types.Result {
	seen := make(map[string]int) // canonical key → index in merged
	merged := make([]types.Result, 0, len(results))

	for _, r := range results {
		if r.URL == "" {
			continue
		}
		key := CanonicalURL(r.URL)
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(merged)
			merged = append(merged, r)
			continue
		}
		mergeInto(&merged[idx], r)
	}
	return merged
}

// mergeInto enriches dst with a later duplicate. The source label gains the
// new backend tag (substring containment check), and when src carries a
// higher citation count the academic fields move over together, non-empty
// values only. A PDF link is adopted when dst has none.
func mergeInto(dst *types.Result, src types.Result) {
	if !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + ", " + src.Source
	}

	if src.Citations != nil && *src.Citations > 0 &&
		(dst.Citations == nil || *src.Citations > *dst.Citations) {
		dst.Citations = src.Citations
		if src.InfluentialCitations != nil && *src.InfluentialCitations > 0 {
			dst.InfluentialCitations = src.InfluentialCitations
		}
		if src.Authors != "" {
			dst.Authors = src.Authors
		}
		if src.Venue != "" {
			dst.Venue = src.Venue
		}
		if src.DOI != "" {
			dst.DOI = src.DOI
		}
		if src.ArxivID != "" {
			dst.ArxivID = src.ArxivID
		}
	}

	if src.PDFURL != "" && dst.PDFURL == "" {
		dst.PDFURL = src.PDFURL
	}
}
