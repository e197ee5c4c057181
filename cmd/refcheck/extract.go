// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ad1th/Reference-Halucinations/internal/grobid"
	"github.com/Ad1th/Reference-Halucinations/internal/reftext"
)

// rawTextFromPDF returns the references-section text of a PDF. Package
// variable so tests can substitute it.
var rawTextFromPDF = reftext.FromPDF

var extractCmd = &cobra.Command{
	Use:   "extract [pdf]",
	Short: "Extract the reference list from a PDF without verifying it",
	Long: `Extract sends the PDF to the GROBID service and prints the structured
references it finds. With --raw it instead prints the raw text of the
references section as recovered from the PDF itself, which is what the
regex recovery stage works from.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	raw, _ := cmd.Flags().GetBool("raw")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if raw {
		text, err := rawTextFromPDF(pdfPath)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	cfg := buildConfig()
	extractor := grobid.NewClient(cfg.Extraction, nil)
	refs, err := extractor.ExtractReferences(context.Background(), pdfPath)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	for i, ref := range refs {
		fmt.Printf("[%d] %s\n", i+1, ref.Title)
		if len(ref.Authors) > 0 {
			fmt.Printf("    authors: %s\n", strings.Join(ref.Authors, ", "))
		}
		if ref.Year != "" || ref.Venue != "" {
			fmt.Printf("    %s %s\n", ref.Year, ref.Venue)
		}
	}
	fmt.Printf("\n%d references\n", len(refs))
	return nil
}

func init() {
	extractCmd.Flags().Bool("raw", false, "print the raw references-section text instead of structured fields")
	extractCmd.Flags().Bool("json", false, "output references as JSON")

	rootCmd.AddCommand(extractCmd)
}
