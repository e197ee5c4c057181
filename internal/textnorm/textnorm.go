// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm cleans extracted titles before they reach scoring or the
// search index. All functions are pure.
package textnorm

import (
	"regexp"
	"strings"
)

// tagRe matches markup tags left over from structured extraction output.
var tagRe = regexp.MustCompile(`<[^>]+>`)

// Clean strips markup tags, collapses whitespace runs to single spaces, and
// trims the result.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	s := tagRe.ReplaceAllString(raw, "")
	return strings.Join(strings.Fields(s), " ")
}

// artifactFix is one known concatenation error produced by the upstream
// extractor and its correction.
type artifactFix struct {
	re          *regexp.Regexp
	replacement string
}

// artifactFixes is the correction table. It is data, not logic: add a row to
// cover a newly observed extraction artifact.
var artifactFixes = compileFixes([][2]string{
	{`schemabased`, "schema-based"},
	{`schemaagnostic`, "schema-agnostic"},
	{`databased`, "data-based"},
	{`datadriven`, "data-driven"},
	{`multiway`, "multi-way"},
	{`multiscale`, "multi-scale"},
	{`crosssilo`, "cross-silo"},
	{`lowresource`, "low-resource"},
	{`pretrained`, "pre-trained"},
	{`finetuning`, "fine-tuning"},
	{`finetune`, "fine-tune"},
	{`prompttuning`, "prompt-tuning"},
	{`zerolabeled`, "zero-labeled"},
	{`zeroshot`, "zero-shot"},
	{`fewshot`, "few-shot"},
	{`endtoend`, "end-to-end"},
	{`stateoftheart`, "state-of-the-art"},
	{`realtime`, "real-time"},
	{`realworld`, "real-world"},
	{`largescale`, "large-scale"},
	{`highresolution`, "high-resolution"},
	{`instanceoptimal`, "instance-optimal"},
	{`useroptimized`, "user-optimized"},
	{`utilityoptimized`, "utility-optimized"},
})

func compileFixes(rows [][2]string) []artifactFix {
	fixes := make([]artifactFix, len(rows))
	for i, row := range rows {
		fixes[i] = artifactFix{
			re:          regexp.MustCompile(`(?i)\b` + row[0] + `\b`),
			replacement: row[1],
		}
	}
	return fixes
}

// FixArtifacts corrects known word-concatenation errors from the upstream
// extractor, e.g. "realtime" -> "real-time". Matching is case-insensitive.
func FixArtifacts(title string) string {
	if title == "" {
		return ""
	}
	result := title
	for _, fix := range artifactFixes {
		result = fix.re.ReplaceAllString(result, fix.replacement)
	}
	return result
}

// ForQuery normalizes a title for a search query: clean, fix artifacts, and
// truncate to the first maxTokens whitespace-delimited tokens. Short queries
// recall better than full titles; maxTokens <= 0 means no truncation.
func ForQuery(title string, maxTokens int) string {
	s := FixArtifacts(Clean(title))
	if maxTokens <= 0 {
		return s
	}
	tokens := strings.Fields(s)
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	return strings.Join(tokens, " ")
}
