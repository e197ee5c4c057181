// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores search candidates against extracted references,
// resolves the best match, and classifies the outcome. It is the decision
// core of the pipeline: everything network-facing lives behind the Searcher
// interface.
package match

import (
	"strings"

	"github.com/Ad1th/Reference-Halucinations/internal/authors"
	"github.com/Ad1th/Reference-Halucinations/internal/similarity"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Similarity returns the case-insensitive sequence similarity of two titles
// in [0,1]. Either title empty scores 0.0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	return similarity.Ratio(strings.ToLower(a), strings.ToLower(b))
}

// LengthPenalty returns the multiplier applied to a short title's raw
// similarity. Short titles are inherently ambiguous: common words match many
// unrelated papers. A near-exact match is strong evidence in the other
// direction, so very high rawSim floors the penalty instead.
func LengthPenalty(title string, rawSim float64) float64 {
	words := len(strings.Fields(title))

	penalty := 1.0
	switch {
	case words <= 3:
		penalty = 0.5
	case words <= 5:
		penalty = 0.75
	}

	if rawSim > 0.95 && penalty < 0.9 {
		penalty = 0.9
	} else if rawSim > 0.85 && penalty < 0.85 {
		penalty = 0.85
	}
	return penalty
}

// Score computes the match score between one reference and one candidate.
// The title score is similarity discounted by the length penalty. When the
// reference carries authors, the author overlap is blended in; the author
// signal gets more weight for short titles, where the title alone is weak.
func Score(ref types.Reference, cand types.Candidate, cfg types.MatcherConfig) types.ScoredCandidate {
	rawSim := Similarity(ref.Title, cand.Title)
	penalty := LengthPenalty(ref.Title, rawSim)
	titleScore := rawSim * penalty

	sc := types.ScoredCandidate{
		Candidate:       cand,
		TitleSimilarity: rawSim,
		Penalty:         penalty,
	}

	if len(ref.Authors) == 0 {
		sc.Combined = titleScore
		return sc
	}

	sc.AuthorOverlap = authors.CompareLists(ref.Authors, cand.Authors)

	titleWeight, authorWeight := cfg.TitleWeight, cfg.AuthorWeight
	if ref.TitleWords() <= cfg.ShortTitleWords {
		titleWeight, authorWeight = cfg.ShortTitleWeight, cfg.ShortAuthorWeight
	}
	sc.Combined = titleScore*titleWeight + sc.AuthorOverlap*authorWeight
	return sc
}
