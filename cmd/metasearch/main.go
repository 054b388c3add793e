// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the metasearch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/metasearch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// creds holds API credentials loaded at startup from TOOLS.md and the
// environment.
var creds secrets.Credentials

// rootCmd is the base command for the metasearch CLI.
var rootCmd = &cobra.Command{
	Use:   "metasearch",
	Short: "Aggregated web and academic search",
	Long: `metasearch fans a query out to multiple search providers (Exa, Tavily,
Grok, Semantic Scholar), deduplicates the merged results by canonical URL,
and optionally ranks them with an intent-weighted composite score.

API keys are read from a TOOLS.md credentials document or from the
environment (EXA_API_KEY, TAVILY_API_KEY, GROK_API_KEY, GROK_API_URL,
GROK_MODEL).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		creds = secrets.Load()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./metasearch.yaml or ~/.config/metasearch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("metasearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "metasearch"))
		}
	}

	viper.SetEnvPrefix("METASEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
