// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout for a single source call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "metasearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for a search run.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// NumResults is the number of results requested per source per query
	// (default 5).
	NumResults int `json:"num_results" yaml:"num_results"`

	// AuthorityFile is the path to the authority-domain table document.
	// When the file is absent a built-in fallback table is used.
	AuthorityFile string `json:"authority_file" yaml:"authority_file"`
}
