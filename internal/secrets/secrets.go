// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets discovers API credentials for the search backends.
//
// Credentials come from a markdown key document (TOOLS.md in the working
// directory or under ~/.config/metasearch/) holding lines of the form
//
//	**Exa**: `sk-...`
//
// Environment variables always override document values. A missing document
// is not an error: backends without credentials are simply skipped.
package secrets

import (
	"os"
	"path/filepath"
	"regexp"
)

// Credentials holds the per-backend keys. Empty fields mean the backend is
// unavailable (Semantic Scholar needs no key and is always available).
type Credentials struct {
	Exa       string
	Tavily    string
	GrokKey   string
	GrokURL   string
	GrokModel string
}

// HasGrok reports whether the Grok backend is usable: it needs both an
// endpoint URL and a key.
func (c Credentials) HasGrok() bool {
	return c.GrokKey != "" && c.GrokURL != ""
}

// Key lines use flexible whitespace between the label and the backtick value.
var (
	exaPattern       = regexp.MustCompile("\\*\\*Exa\\*\\*:\\s*`([^`]+)`")
	tavilyPattern    = regexp.MustCompile("\\*\\*Tavily\\*\\*:\\s*`([^`]+)`")
	grokKeyPattern   = regexp.MustCompile("\\*\\*Grok API Key\\*\\*:\\s*`([^`]+)`")
	grokURLPattern   = regexp.MustCompile("\\*\\*Grok API URL\\*\\*:\\s*`([^`]+)`")
	grokModelPattern = regexp.MustCompile("\\*\\*Grok Model\\*\\*:\\s*`([^`]+)`")
)

// DefaultPaths returns the key document locations, searched in order.
func DefaultPaths() []string {
	paths := []string{"TOOLS.md"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "metasearch", "TOOLS.md"))
	}
	return paths
}

// Load reads credentials from the default document locations and the
// environment.
func Load() Credentials {
	return LoadFrom(DefaultPaths()...)
}

// LoadFrom reads the first existing document among paths, then applies
// environment overrides.
func LoadFrom(paths ...string) Credentials {
	var c Credentials
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		c.applyDocument(string(data))
		break
	}
	c.applyEnv()
	return c
}

func (c *Credentials) applyDocument(text string) {
	if m := exaPattern.FindStringSubmatch(text); m != nil {
		c.Exa = m[1]
	}
	if m := tavilyPattern.FindStringSubmatch(text); m != nil {
		c.Tavily = m[1]
	}
	if m := grokKeyPattern.FindStringSubmatch(text); m != nil {
		c.GrokKey = m[1]
	}
	if m := grokURLPattern.FindStringSubmatch(text); m != nil {
		c.GrokURL = m[1]
	}
	if m := grokModelPattern.FindStringSubmatch(text); m != nil {
		c.GrokModel = m[1]
	}
}

func (c *Credentials) applyEnv() {
	if v := os.Getenv("EXA_API_KEY"); v != "" {
		c.Exa = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Tavily = v
	}
	if v := os.Getenv("GROK_API_KEY"); v != "" {
		c.GrokKey = v
	}
	if v := os.Getenv("GROK_API_URL"); v != "" {
		c.GrokURL = v
	}
	if v := os.Getenv("GROK_MODEL"); v != "" {
		c.GrokModel = v
	}
}
