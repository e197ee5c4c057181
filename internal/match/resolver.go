// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/Ad1th/Reference-Halucinations/internal/authors"
	"github.com/Ad1th/Reference-Halucinations/internal/textnorm"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Searcher queries the bibliographic index for candidate publications.
// Implementations must treat transient failures as empty results where
// possible; an error here degrades a single reference, never the batch.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.Candidate, error)
}

// Resolution is the outcome of matching one reference against the index.
type Resolution struct {
	Status     types.MatchStatus
	Confidence float64

	// Best is the top-scored candidate. Present for FOUND and AMBIGUOUS,
	// and retained for LOW_CONFIDENCE as context: a weak match may still
	// be the right paper.
	Best *types.ScoredCandidate

	// RunnerUpTitle is the second-best candidate's title when the outcome
	// is AMBIGUOUS.
	RunnerUpTitle string
}

// Resolve queries the index with the normalized title and scores every
// candidate returned. Titles at or below cfg.ShortTitleWords words get a
// rescue query combining title and primary author surname; results from
// both queries are merged and deduplicated by lowercased title.
func Resolve(ctx context.Context, s Searcher, ref types.Reference, cfg types.MatcherConfig) Resolution {
	query := textnorm.ForQuery(ref.Title, cfg.MaxQueryTokens)

	candidates, err := s.Search(ctx, query)
	if err != nil {
		candidates = nil
	}

	if ref.TitleWords() <= cfg.ShortTitleWords && len(ref.Authors) > 0 {
		if _, surname := authors.ParseName(ref.Authors[0]); surname != "" {
			rescued, rescueErr := s.Search(ctx, query+" "+surname)
			if rescueErr == nil {
				candidates = mergeCandidates(candidates, rescued)
			}
		}
	}

	if len(candidates) == 0 {
		return Resolution{Status: types.StatusNotFound, Confidence: 0.0}
	}

	scored := make([]types.ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = Score(ref, c, cfg)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Combined > scored[j].Combined
	})

	best := scored[0]
	confidence := round3(best.Combined)

	if best.Combined < cfg.SimilarityThreshold {
		return Resolution{
			Status:     types.StatusLowConfidence,
			Confidence: confidence,
			Best:       &best,
		}
	}

	if len(scored) > 1 && best.Combined-scored[1].Combined < cfg.AmbiguityGap {
		return Resolution{
			Status:        types.StatusAmbiguous,
			Confidence:    confidence,
			Best:          &best,
			RunnerUpTitle: scored[1].Candidate.Title,
		}
	}

	return Resolution{
		Status:     types.StatusFound,
		Confidence: confidence,
		Best:       &best,
	}
}

// mergeCandidates appends extra onto base, dropping entries whose lowercased
// title is already present.
func mergeCandidates(base, extra []types.Candidate) []types.Candidate {
	seen := make(map[string]bool, len(base))
	for _, c := range base {
		seen[strings.ToLower(c.Title)] = true
	}
	merged := base
	for _, c := range extra {
		key := strings.ToLower(c.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, c)
	}
	return merged
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
