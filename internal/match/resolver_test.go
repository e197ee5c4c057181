// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// fakeSearcher returns canned candidates per query and records every query
// it receives.
type fakeSearcher struct {
	byQuery  map[string][]types.Candidate
	fallback []types.Candidate
	err      error
	queries  []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]types.Candidate, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.byQuery[query]; ok {
		return c, nil
	}
	return f.fallback, nil
}

func TestResolveNotFound(t *testing.T) {
	s := &fakeSearcher{}
	ref := types.Reference{Title: "A Completely Fabricated Publication About Nothing Whatsoever"}

	res := Resolve(context.Background(), s, ref, testMatcherCfg())
	if res.Status != types.StatusNotFound {
		t.Errorf("Status = %v, want NOT_FOUND", res.Status)
	}
	if res.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", res.Confidence)
	}
	if res.Best != nil {
		t.Errorf("Best = %+v, want nil", res.Best)
	}
}

func TestResolveSearchErrorDegradesToNotFound(t *testing.T) {
	s := &fakeSearcher{err: errors.New("connection refused")}
	ref := types.Reference{Title: "Consensus Protocols in Asynchronous Distributed Systems Revisited"}

	res := Resolve(context.Background(), s, ref, testMatcherCfg())
	if res.Status != types.StatusNotFound {
		t.Errorf("Status = %v, want NOT_FOUND on search failure", res.Status)
	}
}

func TestResolveFound(t *testing.T) {
	title := "Deep Learning for Entity Matching Systems"
	s := &fakeSearcher{fallback: []types.Candidate{
		{Title: title, Year: "2018"},
		{Title: "An Unrelated Survey of Stream Processing Engines", Year: "2015"},
	}}
	ref := types.Reference{Title: title}

	res := Resolve(context.Background(), s, ref, testMatcherCfg())
	if res.Status != types.StatusFound {
		t.Fatalf("Status = %v, want FOUND", res.Status)
	}
	if res.Best == nil || res.Best.Candidate.Title != title {
		t.Errorf("Best = %+v, want the exact-title candidate", res.Best)
	}
	if res.Confidence < testMatcherCfg().SimilarityThreshold {
		t.Errorf("Confidence = %v, want >= threshold", res.Confidence)
	}
}

func TestResolveAmbiguousOnNarrowGap(t *testing.T) {
	title := "Deep Learning for Entity Matching Systems"
	s := &fakeSearcher{fallback: []types.Candidate{
		{Title: title},
		{Title: title + "."},
	}}
	ref := types.Reference{Title: title}

	res := Resolve(context.Background(), s, ref, testMatcherCfg())
	if res.Status != types.StatusAmbiguous {
		t.Fatalf("Status = %v, want AMBIGUOUS", res.Status)
	}
	if res.RunnerUpTitle == "" {
		t.Error("RunnerUpTitle empty, want second candidate's title retained")
	}
	if res.Best == nil {
		t.Error("Best nil, want top candidate retained")
	}
}

func TestResolveLowConfidenceRetainsBest(t *testing.T) {
	s := &fakeSearcher{fallback: []types.Candidate{
		{Title: "Some Entirely Different Paper About Compilers and Registers"},
	}}
	ref := types.Reference{Title: "Neural Architectures for Named Entity Recognition in Tweets"}

	res := Resolve(context.Background(), s, ref, testMatcherCfg())
	if res.Status != types.StatusLowConfidence {
		t.Fatalf("Status = %v, want LOW_CONFIDENCE", res.Status)
	}
	if res.Best == nil {
		t.Error("Best nil, want weak match retained as context")
	}
	if res.Confidence >= testMatcherCfg().SimilarityThreshold {
		t.Errorf("Confidence = %v, want below threshold", res.Confidence)
	}
}

func TestResolveShortTitleIssuesRescueQuery(t *testing.T) {
	s := &fakeSearcher{
		byQuery: map[string][]types.Candidate{
			"Random Forests breiman": {
				{Title: "Random Forests.", Authors: []string{"Leo Breiman"}, Year: "2001"},
			},
		},
	}
	ref := types.Reference{Title: "Random Forests", Authors: []string{"Leo Breiman"}, Year: "2001"}

	res := Resolve(context.Background(), s, ref, testMatcherCfg())

	if len(s.queries) != 2 {
		t.Fatalf("got %d queries %v, want title query plus surname rescue", len(s.queries), s.queries)
	}
	if !strings.HasSuffix(s.queries[1], " breiman") {
		t.Errorf("rescue query = %q, want title + primary surname", s.queries[1])
	}
	if res.Status != types.StatusFound {
		t.Errorf("Status = %v, want FOUND via rescue query", res.Status)
	}
}

func TestResolveMergeDedupsByTitle(t *testing.T) {
	cand := types.Candidate{Title: "Random Forests.", Authors: []string{"Leo Breiman"}}
	s := &fakeSearcher{
		byQuery: map[string][]types.Candidate{
			"Random Forests":         {cand},
			"Random Forests breiman": {{Title: "random forests."}},
		},
	}
	ref := types.Reference{Title: "Random Forests", Authors: []string{"Leo Breiman"}}

	Resolve(context.Background(), s, ref, testMatcherCfg())

	merged := mergeCandidates(
		s.byQuery["Random Forests"],
		s.byQuery["Random Forests breiman"],
	)
	if len(merged) != 1 {
		t.Errorf("mergeCandidates kept %d candidates, want 1 after title dedup", len(merged))
	}
}
