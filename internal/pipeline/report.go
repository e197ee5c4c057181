// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Report writes the human-readable verification report as the pipeline
// progresses.
type Report struct {
	w io.Writer
}

// NewReport builds a reporter writing to w.
func NewReport(w io.Writer) *Report {
	return &Report{w: w}
}

// Discard returns a reporter that writes nothing.
func Discard() *Report {
	return &Report{w: io.Discard}
}

// Printf writes a single formatted line.
func (r *Report) Printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// Section writes a major section header.
func (r *Report) Section(title string) {
	fmt.Fprintf(r.w, "\n%s\n%s\n%s\n", strings.Repeat("=", 80), title, strings.Repeat("=", 80))
}

// Subsection writes a minor section header.
func (r *Report) Subsection(title string) {
	fmt.Fprintf(r.w, "\n%s\n%s\n%s\n", strings.Repeat("-", 60), title, strings.Repeat("-", 60))
}

// Changes writes the audit entries one stage produced, or a no-change note.
func (r *Report) Changes(stage string, changes []types.Change) {
	if len(changes) == 0 {
		fmt.Fprintf(r.w, "\nno changes from %s\n", stage)
		return
	}
	r.Subsection("changes from " + stage)
	for _, c := range changes {
		fmt.Fprintf(r.w, "  [%d] %s -> %s\n", c.RefNum, c.OldLabel, c.NewLabel)
		fmt.Fprintf(r.w, "      title:  %s\n", c.Title)
		fmt.Fprintf(r.w, "      reason: %s\n", c.Reason)
	}
}

// Statistics writes per-label counts and percentages.
func (r *Report) Statistics(title string, results []types.VerificationResult) {
	total := len(results)
	if total == 0 {
		return
	}

	counts := map[types.Label]int{}
	for _, res := range results {
		counts[res.Label]++
	}

	r.Section(title)
	fmt.Fprintf(r.w, "total references: %d\n", total)
	for _, label := range []types.Label{
		types.LabelVerified, types.LabelReview, types.LabelUnverified, types.LabelSuspicious,
	} {
		n := counts[label]
		fmt.Fprintf(r.w, "%-11s %3d  (%.1f%%)\n", label+":", n, 100*float64(n)/float64(total))
	}
}

// Results writes the full per-reference listing.
func (r *Report) Results(results []types.VerificationResult) {
	for _, res := range results {
		fmt.Fprintf(r.w, "\n[%d] %s (confidence %.3f)\n", res.RefNum, res.Label, res.Confidence)
		fmt.Fprintf(r.w, "    title:   %s\n", res.Reference.Title)
		if len(res.Reference.Authors) > 0 {
			fmt.Fprintf(r.w, "    authors: %s\n", strings.Join(res.Reference.Authors, ", "))
		}
		if res.Reference.Year != "" {
			fmt.Fprintf(r.w, "    year:    %s\n", res.Reference.Year)
		}
		if res.Matched != nil {
			fmt.Fprintf(r.w, "    matched: %s (%s)\n", res.Matched.Title, res.Matched.Year)
			if res.Matched.Venue != "" {
				fmt.Fprintf(r.w, "    venue:   %s\n", res.Matched.Venue)
			}
		}
		if res.AmbiguousWith != "" {
			fmt.Fprintf(r.w, "    also:    %s\n", res.AmbiguousWith)
		}
		if res.CorrectedTitle != "" {
			fmt.Fprintf(r.w, "    corrected: %s\n", res.CorrectedTitle)
		}
		if res.Source != "" && res.Source != "initial" {
			fmt.Fprintf(r.w, "    source:  %s\n", res.Source)
		}
	}
}

// FlatResult is the flat key/value projection of one result for structured
// output.
type FlatResult struct {
	RefNum         int     `json:"ref_num" yaml:"ref_num"`
	Label          string  `json:"label" yaml:"label"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
	Status         string  `json:"status" yaml:"status"`
	Title          string  `json:"title" yaml:"title"`
	Authors        string  `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year           string  `json:"year,omitempty" yaml:"year,omitempty"`
	MatchedTitle   string  `json:"matched_title,omitempty" yaml:"matched_title,omitempty"`
	CorrectedTitle string  `json:"corrected_title,omitempty" yaml:"corrected_title,omitempty"`
	Source         string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// Flatten projects results into flat records, preserving order.
func Flatten(results []types.VerificationResult) []FlatResult {
	flat := make([]FlatResult, 0, len(results))
	for _, r := range results {
		f := FlatResult{
			RefNum:         r.RefNum,
			Label:          string(r.Label),
			Confidence:     r.Confidence,
			Status:         string(r.Status),
			Title:          r.Reference.Title,
			Authors:        strings.Join(r.Reference.Authors, "; "),
			Year:           r.Reference.Year,
			CorrectedTitle: r.CorrectedTitle,
			Source:         r.Source,
		}
		if r.Matched != nil {
			f.MatchedTitle = r.Matched.Title
		}
		flat = append(flat, f)
	}
	return flat
}

// WriteJSON writes the results as an indented JSON array of flat records.
func WriteJSON(w io.Writer, results []types.VerificationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Flatten(results))
}

// WriteYAML writes the results as a YAML document of flat records.
func WriteYAML(w io.Writer, results []types.VerificationResult) error {
	data, err := yaml.Marshal(Flatten(results))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
