// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reftext recovers reference titles from raw PDF text when the
// structured extractor mangles them. It is deliberately crude: regex
// heuristics over the references section, used only as a fallback signal.
package reftext

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/Ad1th/Reference-Halucinations/internal/similarity"
)

// ExtractedTitle is one title recovered by the regex heuristics, keyed by
// the bracketed citation number it was found under.
type ExtractedTitle struct {
	RefNum int
	Title  string
	Raw    string
}

var (
	headingRe = regexp.MustCompile(`(?i)\n\s*(References|Bibliography)\s*\n`)

	// entryRe captures "[N] everything-up-to-the-next-bracket".
	entryRe = regexp.MustCompile(`\[(\d+)\]\s*([^\[]+)`)

	quotedRe    = regexp.MustCompile(`"([^"]+)"`)
	yearTitleRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b[.\s]+([A-Z][^.]+\.)`)
	segmentRe   = regexp.MustCompile(`[A-Z][^.]+\.`)
	authorishRe = regexp.MustCompile(`\b(and|et al)\b`)
)

// FromPDF extracts the plain text of a PDF and returns its references
// section.
func FromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", path, err)
	}

	return ReferencesSection(buf.String()), nil
}

// ReferencesSection returns the text starting at the References or
// Bibliography heading. Without a heading it falls back to the last 30% of
// the document, where reference lists usually live.
func ReferencesSection(text string) string {
	if loc := headingRe.FindStringIndex(text); loc != nil {
		return text[loc[0]:]
	}
	cutoff := len(text) * 7 / 10
	return text[cutoff:]
}

// HasSpacingCorruption reports whether the text shows systematic loss of
// inter-word spacing. Concatenated words show up as long tokens with
// lowercase content; more than 2% of tokens looking like that means regex
// extraction is hopeless.
func HasSpacingCorruption(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}

	long := 0
	for _, tok := range fields {
		if len(tok) > 30 && hasLower(tok) {
			long++
		}
	}
	return float64(long)/float64(len(fields)) > 0.02
}

func hasLower(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// ExtractTitles pulls candidate titles out of a references section using
// three heuristics in priority order: a quoted title, the capitalized
// sentence following a year, and finally the longest sentence-like segment
// that does not look like an author list.
func ExtractTitles(referencesText string) []ExtractedTitle {
	var titles []ExtractedTitle

	for _, m := range entryRe.FindAllStringSubmatch(referencesText, -1) {
		refNum := 0
		fmt.Sscanf(m[1], "%d", &refNum)
		content := m[2]

		if title, ok := isolateTitle(content); ok {
			titles = append(titles, ExtractedTitle{
				RefNum: refNum,
				Title:  title,
				Raw:    strings.TrimSpace(content),
			})
		}
	}

	return titles
}

func isolateTitle(content string) (string, bool) {
	if m := quotedRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if m := yearTitleRe.FindStringSubmatch(content); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), "."), true
	}

	var best string
	for _, seg := range segmentRe.FindAllString(content, -1) {
		if authorishRe.MatchString(strings.ToLower(seg)) {
			continue
		}
		if strings.Count(seg, ",") >= 3 {
			continue
		}
		if len(seg) > len(best) {
			best = seg
		}
	}
	if best == "" {
		return "", false
	}
	return strings.TrimRight(strings.TrimSpace(best), "."), true
}

// BestMatch finds the extracted title most similar to the given title,
// returning ok=false when nothing scores above minSimilarity or the best
// hit is just the same title again.
func BestMatch(title string, titles []ExtractedTitle, minSimilarity float64) (ExtractedTitle, float64, bool) {
	var best ExtractedTitle
	bestScore := 0.0

	lower := strings.ToLower(title)
	for _, t := range titles {
		score := similarity.Ratio(lower, strings.ToLower(t.Title))
		if score > bestScore {
			bestScore = score
			best = t
		}
	}

	if bestScore <= minSimilarity || best.Title == title {
		return ExtractedTitle{}, 0, false
	}
	return best, bestScore, true
}
