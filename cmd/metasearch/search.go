// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/metasearch/internal/authority"
	"github.com/pdiddy/metasearch/internal/httputil"
	"github.com/pdiddy/metasearch/internal/scoring"
	"github.com/pdiddy/metasearch/internal/search"
	"github.com/pdiddy/metasearch/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "metasearch/0.1"
)

var searchCmd = &cobra.Command{
	Use:   "search [query ...]",
	Short: "Search web and academic sources, merge and rank results",
	Long: `Search runs one or more queries against the configured providers.
Each positional argument is a separate query; results are merged and
deduplicated by canonical URL across all of them.

Modes: deep (all providers in parallel), fast (single cheapest provider),
answer (Tavily with a synthesized answer). With --intent, results are
ranked by a composite of keyword overlap, freshness, domain authority,
and citation count; without it they keep provider order.

Output is a single JSON document on stdout. Provider failures degrade to
warnings on stderr.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	queries := args
	if extra, _ := cmd.Flags().GetStringArray("query"); len(extra) > 0 {
		queries = append(queries, extra...)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no query provided: pass queries as arguments or with --query")
	}

	mode, _ := cmd.Flags().GetString("mode")
	if !cmd.Flags().Changed("mode") {
		if v := viper.GetString("search.mode"); v != "" {
			mode = v
		}
	}
	if !search.ValidMode(mode) {
		return fmt.Errorf("invalid mode %q: use fast, deep, or answer", mode)
	}

	intent, _ := cmd.Flags().GetString("intent")
	if intent != "" && !scoring.KnownIntent(intent) {
		fmt.Fprintf(os.Stderr, "unknown intent %q, using exploratory weights (known: %s)\n",
			intent, strings.Join(scoring.Intents(), ", "))
	}

	freshness, _ := cmd.Flags().GetString("freshness")
	if freshness != "" && !search.ValidFreshness(freshness) {
		return fmt.Errorf("invalid freshness %q: use pd, pw, pm, or py", freshness)
	}

	cfg := searchConfig(cmd)

	table, err := authority.Load(cfg.AuthorityFile)
	if err != nil {
		return fmt.Errorf("loading authority domains: %w", err)
	}

	boostDomains, _ := cmd.Flags().GetStringSlice("domain-boost")
	scorer := &scoring.Scorer{Table: table, BoostDomains: boostDomains}

	engine := search.NewEngine(creds, httputil.NewClient(cfg.HTTPConfig), scorer, os.Stderr)
	out, err := engine.Run(context.Background(), queries, search.Options{
		Mode:      mode,
		Intent:    intent,
		Num:       cfg.NumResults,
		Freshness: freshness,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// searchConfig assembles run settings from flags with config-file fallbacks.
func searchConfig(cmd *cobra.Command) types.SearchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("search.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	num, _ := cmd.Flags().GetInt("num")
	if !cmd.Flags().Changed("num") {
		if v := viper.GetInt("search.num_results"); v > 0 {
			num = v
		}
	}

	authorityFile, _ := cmd.Flags().GetString("authority-file")
	if authorityFile == "" {
		authorityFile = viper.GetString("search.authority_file")
	}

	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		NumResults:    num,
		AuthorityFile: authorityFile,
	}
}

func init() {
	searchCmd.Flags().StringArray("query", nil, "additional query (repeatable)")
	searchCmd.Flags().String("mode", "deep", "search mode: fast, deep, or answer")
	searchCmd.Flags().Int("num", 5, "number of results per source")
	searchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	searchCmd.Flags().String("intent", "", "query intent for ranking: "+strings.Join(scoring.Intents(), ", "))
	searchCmd.Flags().String("freshness", "", "recency filter: pd, pw, pm, or py")
	searchCmd.Flags().StringSlice("domain-boost", nil, "domains to boost in ranking (comma-separated)")
	searchCmd.Flags().String("authority-file", "", "YAML file of domain authority tiers")

	rootCmd.AddCommand(searchCmd)
}
