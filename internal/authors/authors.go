// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authors parses and fuzzily compares author names. Bibliographic
// indexes and PDF extraction disagree constantly on middle names, initials,
// particles, and disambiguation suffixes, so comparison keys on first and
// last name only.
package authors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Ad1th/Reference-Halucinations/internal/similarity"
)

// disambiguationRe matches a trailing 4-digit suffix some indexes append to
// distinguish homonymous authors, e.g. "Nan Tang 0001".
var disambiguationRe = regexp.MustCompile(`\s*\d{4}\s*$`)

// Name-ladder scores. Last names must agree before a pair scores at all.
const (
	scoreExact        = 1.0 // exact first and last
	scoreFirstInitial = 0.9 // exact last, matching first initial
	scoreLastOnly     = 0.7 // exact last only
	scoreFuzzyLast    = 0.5 // fuzzy last-name match (typos, transliteration)

	// fuzzyLastThreshold is the minimum sequence similarity between last
	// names to count as a fuzzy match.
	fuzzyLastThreshold = 0.85
)

// ParseName splits a display name into lowercased (first, last). Trailing
// disambiguation digits and periods are stripped; middle tokens and
// particles like "van" or "de" are discarded. A single-token name yields an
// empty first name.
func ParseName(raw string) (first, last string) {
	if raw == "" {
		return "", ""
	}
	name := disambiguationRe.ReplaceAllString(raw, "")
	name = strings.ReplaceAll(name, ".", " ")

	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", strings.ToLower(parts[0])
	}
	return strings.ToLower(parts[0]), strings.ToLower(parts[len(parts)-1])
}

// MatchScore compares two author names and returns a score in [0,1] per the
// name ladder: exact first+last 1.0, last plus first initial 0.9, last only
// 0.7, fuzzy last 0.5, otherwise 0.0.
func MatchScore(a, b string) float64 {
	firstA, lastA := ParseName(a)
	firstB, lastB := ParseName(b)

	if lastA == "" || lastB == "" {
		return 0.0
	}

	if lastA == lastB {
		if firstA == firstB {
			return scoreExact
		}
		if firstA != "" && firstB != "" && firstA[0] == firstB[0] {
			return scoreFirstInitial
		}
		return scoreLastOnly
	}

	if similarity.Ratio(lastA, lastB) > fuzzyLastThreshold {
		return scoreFuzzyLast
	}
	return 0.0
}

// CompareLists scores how well two author lists agree, in [0,1]. Each name
// in a is matched against its best counterpart in b; the best-match average
// is then discounted by 0.7 + 0.3*(min/max count ratio) so that lists of
// very different sizes cannot score as a full match. Either list empty
// scores 0.0.
func CompareLists(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var sum float64
	for _, nameA := range a {
		best := 0.0
		for _, nameB := range b {
			if s := MatchScore(nameA, nameB); s > best {
				best = s
			}
		}
		sum += best
	}
	avg := sum / float64(len(a))

	countRatio := float64(min(len(a), len(b))) / float64(max(len(a), len(b)))
	return avg * (0.7 + 0.3*countRatio)
}

// CompareYears scores publication year agreement: equal 1.0, one year apart
// 0.8 (preprint to publication drift is common), two apart 0.5, further 0.0.
// A missing or unparseable year on either side is neutral, 0.5.
func CompareYears(a, b string) float64 {
	yearA, okA := parseYear(a)
	yearB, okB := parseYear(b)
	if !okA || !okB {
		return 0.5
	}

	diff := yearA - yearB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff == 0:
		return 1.0
	case diff == 1:
		return 0.8
	case diff == 2:
		return 0.5
	}
	return 0.0
}

// parseYear reads the leading 4 digits of a year string.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}
