// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ad1th/Reference-Halucinations/internal/adjudicate"
	"github.com/Ad1th/Reference-Halucinations/internal/dblp"
	"github.com/Ad1th/Reference-Halucinations/internal/grobid"
	"github.com/Ad1th/Reference-Halucinations/internal/pipeline"
	"github.com/Ad1th/Reference-Halucinations/internal/reftext"
	"github.com/Ad1th/Reference-Halucinations/internal/store"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [pdf]",
	Short: "Run the full verification pipeline over a PDF's references",
	Long: `Verify extracts the reference list from the PDF, matches every entry
against the bibliographic index, and revises the labels through the
author-reweighting, regex-recovery, and adjudication stages.

The report goes to stdout (or --output). With --json or --yaml the final
results are emitted as structured records instead of the report.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	if _, err := os.Stat(pdfPath); err != nil {
		return fmt.Errorf("cannot read PDF: %w", err)
	}

	cfg := buildConfig()

	skipGemini, _ := cmd.Flags().GetBool("skip-gemini")
	skipRegex, _ := cmd.Flags().GetBool("skip-regex")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	outputPath, _ := cmd.Flags().GetString("output")
	if jsonOutput && yamlOutput {
		return fmt.Errorf("--json and --yaml are mutually exclusive")
	}
	strict, _ := cmd.Flags().GetBool("strict")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg.Revision.SkipRegex = skipRegex
	cfg.Revision.SkipAdjudication = skipGemini || cfg.Adjudication.APIKey == ""
	if strict {
		cfg.Adjudication.MinConfidence = 0.8
	}

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()

	// Extraction is the one hard failure: without a reference list there is
	// nothing to verify.
	extractor := grobid.NewClient(cfg.Extraction, nil)
	fmt.Fprintf(os.Stderr, "extracting references from %s...\n", pdfPath)
	refs, err := extractor.ExtractReferences(ctx, pdfPath)
	if err != nil {
		return fmt.Errorf("extracting references: %w", err)
	}
	fmt.Fprintf(os.Stderr, "extracted %d references\n", len(refs))

	searchOpts := []dblp.Option{}
	var db *store.Store
	if !noCache {
		db, err = store.NewStore(cfg.Store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: lookup cache unavailable: %v\n", err)
		} else {
			defer db.Close()
			searchOpts = append(searchOpts, dblp.WithCache(db))
		}
	}
	searcher := dblp.NewClient(cfg.Search, searchOpts...)

	report := pipeline.NewReport(out)
	if jsonOutput || yamlOutput {
		report = pipeline.Discard()
	}

	opts := []pipeline.Option{
		pipeline.WithConfig(cfg),
		pipeline.WithReport(report),
		pipeline.WithRawText(func(context.Context) (string, error) {
			return reftext.FromPDF(pdfPath)
		}),
	}
	if !cfg.Revision.SkipAdjudication {
		opts = append(opts, pipeline.WithOracle(adjudicate.NewGeminiOracle(cfg.Adjudication, nil)))
	}

	outcome, err := pipeline.New(searcher, opts...).Run(ctx, refs)
	if err != nil {
		return err
	}

	if db != nil {
		if _, err := db.SaveRun(pdfPath, outcome.Results); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
		}
	}

	if jsonOutput {
		if err := pipeline.WriteJSON(out, outcome.Results); err != nil {
			return err
		}
	}
	if yamlOutput {
		if err := pipeline.WriteYAML(out, outcome.Results); err != nil {
			return err
		}
	}

	if strict {
		suspicious := 0
		for _, r := range outcome.Results {
			if r.Label == types.LabelSuspicious {
				suspicious++
			}
		}
		if suspicious > 0 {
			return fmt.Errorf("%d suspicious reference(s) remain", suspicious)
		}
	}
	return nil
}

func init() {
	verifyCmd.Flags().Bool("skip-gemini", false, "skip the LLM adjudication stage")
	verifyCmd.Flags().Bool("skip-regex", false, "skip the regex title-recovery stage")
	verifyCmd.Flags().Bool("json", false, "emit final results as JSON instead of the report")
	verifyCmd.Flags().Bool("yaml", false, "emit final results as YAML instead of the report")
	verifyCmd.Flags().String("output", "", "write output to a file instead of stdout")
	verifyCmd.Flags().Bool("strict", false, "require 0.8 adjudication confidence and exit non-zero on suspicious references")
	verifyCmd.Flags().Bool("no-cache", false, "bypass the local lookup cache")

	rootCmd.AddCommand(verifyCmd)
}
