// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the refcheck CLI, which verifies the
// reference list of an academic PDF against a bibliographic index and
// reports which citations look real, doubtful, or fabricated.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ad1th/Reference-Halucinations/internal/secrets"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// fromSecret returns the loaded secret value for key, or "".
func fromSecret(key string) string {
	return loadedSecrets[key]
}

// rootCmd is the base command for the refcheck CLI.
var rootCmd = &cobra.Command{
	Use:   "refcheck",
	Short: "Verify the references of an academic PDF",
	Long: `refcheck extracts the reference list from an academic PDF, checks each
entry against a bibliographic index, and classifies every citation as
VERIFIED, REVIEW, UNVERIFIED, or SUSPICIOUS.

Verification runs in stages: a title-based index match, author and year
reweighting, regex-based title recovery for mangled extractions, and an
optional LLM adjudication pass for the leftovers. Every label change is
tracked and reported.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error.
		godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./refcheck.yaml or ~/.config/refcheck/config.yaml)")
	rootCmd.PersistentFlags().String("store-dir", "", "directory for the lookup cache and run history (default: .refcheck)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("refcheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "refcheck"))
		}
	}

	viper.SetEnvPrefix("REFCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration. Explicit settings
// (config file, environment, flags) win over secrets, and secrets win over
// the tuned defaults.
func buildConfig() types.Config {
	cfg := types.DefaultConfig()

	if v := viper.GetString("search.base_url"); v != "" {
		cfg.Search.BaseURL = v
	} else if v := fromSecret(secrets.KeyDBLPBaseURL); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := viper.GetInt("search.max_hits"); v > 0 {
		cfg.Search.MaxHits = v
	}
	if v := viper.GetFloat64("matcher.similarity_threshold"); v > 0 {
		cfg.Matcher.SimilarityThreshold = v
	}
	if v := viper.GetFloat64("matcher.ambiguity_gap"); v > 0 {
		cfg.Matcher.AmbiguityGap = v
	}
	if v := viper.GetString("extraction.grobid_url"); v != "" {
		cfg.Extraction.GrobidURL = v
	} else if v := fromSecret(secrets.KeyGrobidURL); v != "" {
		cfg.Extraction.GrobidURL = v
	}
	if v := viper.GetString("adjudication.api_key"); v != "" {
		cfg.Adjudication.APIKey = v
	} else if v := fromSecret(secrets.KeyGeminiAPIKey); v != "" {
		cfg.Adjudication.APIKey = v
	} else {
		cfg.Adjudication.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if v := viper.GetStringSlice("adjudication.models"); len(v) > 0 {
		cfg.Adjudication.Models = v
	}
	if v := viper.GetString("store.dir"); v != "" {
		cfg.Store.Dir = v
	}

	if v, _ := rootCmd.PersistentFlags().GetString("store-dir"); v != "" {
		cfg.Store.Dir = v
	}

	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
