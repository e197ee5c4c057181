// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Ad1th/Reference-Halucinations/internal/adjudicate"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

func TestReweighStage(t *testing.T) {
	results := []types.VerificationResult{
		{
			// Strong author+year evidence lifts a borderline title match.
			RefNum:          1,
			Reference:       types.Reference{Title: "Scaling Laws for Neural Language Models", Authors: []string{"L. Breiman"}, Year: "2001"},
			Label:           types.LabelReview,
			Status:          types.StatusLowConfidence,
			Confidence:      0.65,
			TitleConfidence: 0.65,
			Matched:         &types.Candidate{Title: "...", Authors: []string{"Leo Breiman"}, Year: "2001"},
		},
		{
			// Weak title but perfect authors: the alternate weighting applies.
			// Normal weights would give 0.64; only the alternate blend clears 0.7.
			RefNum:          2,
			Reference:       types.Reference{Title: "Attention", Authors: []string{"Ashish Vaswani"}, Year: "2017"},
			Label:           types.LabelUnverified,
			Status:          types.StatusLowConfidence,
			Confidence:      0.4,
			TitleConfidence: 0.4,
			Matched:         &types.Candidate{Title: "...", Authors: []string{"Ashish Vaswani"}, Year: "2017"},
		},
		{
			// Verified on title alone, but the candidate's authors are wrong.
			RefNum:          3,
			Reference:       types.Reference{Title: "A Study of Something", Authors: []string{"Alice Wonder"}},
			Label:           types.LabelVerified,
			Status:          types.StatusFound,
			Confidence:      0.72,
			TitleConfidence: 0.72,
			Matched:         &types.Candidate{Title: "...", Authors: []string{"Bob Builder"}},
		},
		{
			// No retained candidate: untouched.
			RefNum:    4,
			Reference: types.Reference{Title: "Nothing Found Here"},
			Label:     types.LabelUnverified,
			Status:    types.StatusNotFound,
		},
	}

	v := New(searcherFunc(func(context.Context, string) ([]types.Candidate, error) { return nil, nil }))
	deltas, changes := v.reweighStage(results)
	results = apply(results, deltas)

	byNum := make(map[int]types.VerificationResult)
	for _, r := range results {
		byNum[r.RefNum] = r
	}

	// Ref 1: author 0.9 (initial match), year 1.0:
	// 0.65*0.6 + 0.9*0.3 + 1.0*0.1 = 0.76.
	r1 := byNum[1]
	if r1.Label != types.LabelVerified {
		t.Errorf("ref 1 label = %s, want VERIFIED", r1.Label)
	}
	if math.Abs(r1.Confidence-0.76) > 1e-9 {
		t.Errorf("ref 1 confidence = %v, want 0.76", r1.Confidence)
	}
	if r1.AuthorScore == nil || *r1.AuthorScore != 0.9 {
		t.Errorf("ref 1 author score = %v, want 0.9", r1.AuthorScore)
	}

	// Ref 2: 0.4*0.3 + 1.0*0.5 + 1.0*0.2 = 0.82 via the alternate blend.
	r2 := byNum[2]
	if r2.Label != types.LabelVerified {
		t.Errorf("ref 2 label = %s, want VERIFIED via strong-author weighting", r2.Label)
	}
	if math.Abs(r2.Confidence-0.82) > 1e-9 {
		t.Errorf("ref 2 confidence = %v, want 0.82", r2.Confidence)
	}

	// Ref 3: author 0.0, years missing (0.5): 0.72*0.6 + 0 + 0.05 = 0.482.
	r3 := byNum[3]
	if r3.Label != types.LabelReview {
		t.Errorf("ref 3 label = %s, want demotion to REVIEW", r3.Label)
	}

	if r4 := byNum[4]; r4.Label != types.LabelUnverified || r4.AuthorScore != nil {
		t.Errorf("ref 4 should be untouched, got %+v", r4)
	}

	if len(changes) != 3 {
		t.Errorf("expected 3 audit entries, got %d: %+v", len(changes), changes)
	}
	for _, c := range changes {
		if c.Reason == "" {
			t.Errorf("change %+v has no reason", c)
		}
	}
}

func TestReweighStage_Idempotent(t *testing.T) {
	results := []types.VerificationResult{
		{
			RefNum:          1,
			Reference:       types.Reference{Title: "Scaling Laws for Neural Language Models", Authors: []string{"L. Breiman"}, Year: "2001"},
			Label:           types.LabelReview,
			Status:          types.StatusLowConfidence,
			Confidence:      0.65,
			TitleConfidence: 0.65,
			Matched:         &types.Candidate{Title: "...", Authors: []string{"Leo Breiman"}, Year: "2001"},
		},
		{
			RefNum:          3,
			Reference:       types.Reference{Title: "A Study of Something", Authors: []string{"Alice Wonder"}},
			Label:           types.LabelVerified,
			Status:          types.StatusFound,
			Confidence:      0.72,
			TitleConfidence: 0.72,
			Matched:         &types.Candidate{Title: "...", Authors: []string{"Bob Builder"}},
		},
	}

	v := New(searcherFunc(func(context.Context, string) ([]types.Candidate, error) { return nil, nil }))

	deltas, changes := v.reweighStage(results)
	results = apply(results, deltas)
	if len(changes) == 0 {
		t.Fatal("first pass should move labels")
	}

	deltas, changes = v.reweighStage(results)
	next := apply(results, deltas)
	if len(changes) != 0 {
		t.Errorf("second pass produced changes: %+v", changes)
	}
	for i := range results {
		if next[i].Label != results[i].Label || next[i].Confidence != results[i].Confidence {
			t.Errorf("second pass altered ref %d: %+v -> %+v", results[i].RefNum, results[i], next[i])
		}
	}
}

func TestRegexStage(t *testing.T) {
	searcher := searcherFunc(func(_ context.Context, query string) ([]types.Candidate, error) {
		if strings.Contains(strings.ToLower(query), "entity matching") {
			return []types.Candidate{{Title: "Deep Learning for Entity Matching", Year: "2023"}}, nil
		}
		return nil, nil
	})

	rawText := func(context.Context) (string, error) {
		return "References\n\n[1] J. Doe, \"Deep Learning for Entity Matching\", SIGMOD, 2023.\n", nil
	}

	results := []types.VerificationResult{
		{
			RefNum:          1,
			Reference:       types.Reference{Title: "Deep Learning for Entity Matchi"},
			Label:           types.LabelUnverified,
			Status:          types.StatusLowConfidence,
			Confidence:      0.2,
			TitleConfidence: 0.2,
		},
	}

	v := New(searcher, WithRawText(rawText))
	deltas, changes := v.regexStage(context.Background(), results)
	results = apply(results, deltas)

	r := results[0]
	if r.CorrectedTitle != "Deep Learning for Entity Matching" {
		t.Errorf("corrected title = %q", r.CorrectedTitle)
	}
	if r.Label != types.LabelVerified || r.Status != types.StatusFound {
		t.Errorf("result = %s/%s, want VERIFIED/FOUND after correction", r.Label, r.Status)
	}
	if r.Source != "regex" {
		t.Errorf("source = %q, want regex", r.Source)
	}
	if r.Confidence <= 0.2 {
		t.Errorf("confidence = %v, want an improvement over 0.2", r.Confidence)
	}
	if len(changes) != 1 || changes[0].NewLabel != types.LabelVerified {
		t.Errorf("changes = %+v, want one promotion", changes)
	}
}

func TestRegexStage_KeepsWorseResult(t *testing.T) {
	// The corrected title resolves, but no better than the original.
	searcher := searcherFunc(func(context.Context, string) ([]types.Candidate, error) {
		return []types.Candidate{{Title: "Quantum Chromodynamics Lattice Simulations"}}, nil
	})
	rawText := func(context.Context) (string, error) {
		return "[1] \"A Long Paper Title About Some Topic Entirely\", 2020.\n", nil
	}

	results := []types.VerificationResult{
		{
			RefNum:          1,
			Reference:       types.Reference{Title: "A Long Paper Title About Some Topic Entire"},
			Label:           types.LabelUnverified,
			Status:          types.StatusLowConfidence,
			Confidence:      0.45,
			TitleConfidence: 0.45,
		},
	}

	v := New(searcher, WithRawText(rawText))
	deltas, changes := v.regexStage(context.Background(), results)

	if len(deltas) != 0 || len(changes) != 0 {
		t.Errorf("expected no deltas when the correction does not improve confidence, got %+v", deltas)
	}
}

func TestRegexStage_SkipsOnSpacingCorruption(t *testing.T) {
	corrupted := strings.Repeat("thisisaverylongconcatenatedrunofwordswithoutspaces ", 10)
	rawText := func(context.Context) (string, error) { return corrupted, nil }

	results := []types.VerificationResult{
		{RefNum: 1, Reference: types.Reference{Title: "Anything"}, Label: types.LabelUnverified},
	}

	v := New(searcherFunc(func(context.Context, string) ([]types.Candidate, error) {
		t.Fatal("search must not be called when the raw text is corrupted")
		return nil, nil
	}), WithRawText(rawText))

	deltas, changes := v.regexStage(context.Background(), results)
	if len(deltas) != 0 || len(changes) != 0 {
		t.Errorf("expected a no-op on corrupted text, got %+v", deltas)
	}
}

func TestAdjudicationStage(t *testing.T) {
	yes, no := true, false
	var gotItems []adjudicate.Item

	oracle := oracleFunc(func(_ context.Context, items []adjudicate.Item) (map[int]adjudicate.Verdict, error) {
		gotItems = items
		return map[int]adjudicate.Verdict{
			1: {Verified: true, Exists: &yes, Confidence: 0.9, Reasoning: "canonical paper"},
			2: {Verified: false, Exists: &no, Confidence: 0.85, Reasoning: "no trace"},
			4: {Verified: true, Exists: &yes, Confidence: 0.5, Reasoning: "probably"},
		}, nil
	})

	results := []types.VerificationResult{
		{RefNum: 1, Reference: types.Reference{Title: "A"}, Label: types.LabelReview, Confidence: 0.6,
			Matched: &types.Candidate{Title: "A"}},
		{RefNum: 2, Reference: types.Reference{Title: "B"}, Label: types.LabelUnverified, Confidence: 0.1},
		{RefNum: 3, Reference: types.Reference{Title: "C"}, Label: types.LabelVerified, Confidence: 0.9},
		{RefNum: 4, Reference: types.Reference{Title: "D"}, Label: types.LabelUnverified, Confidence: 0.3},
	}

	v := New(searcherFunc(func(context.Context, string) ([]types.Candidate, error) { return nil, nil }),
		WithOracle(oracle))

	deltas, changes := v.adjudicationStage(context.Background(), results)
	results = apply(results, deltas)

	// VERIFIED results are not submitted.
	if len(gotItems) != 3 {
		t.Fatalf("oracle got %d items, want 3", len(gotItems))
	}
	for _, item := range gotItems {
		if item.RefNum == 3 {
			t.Error("verified reference submitted to the oracle")
		}
	}

	byNum := make(map[int]types.VerificationResult)
	for _, r := range results {
		byNum[r.RefNum] = r
	}

	if r := byNum[1]; r.Label != types.LabelVerified || r.Confidence != 0.9 || r.Source != "adjudication" {
		t.Errorf("ref 1 = %+v, want VERIFIED at 0.9 via adjudication", r)
	}
	if r := byNum[2]; r.Label != types.LabelSuspicious {
		t.Errorf("ref 2 label = %s, want SUSPICIOUS", r.Label)
	}
	// Verdict confidence 0.5 is below the promotion bar: unchanged.
	if r := byNum[4]; r.Label != types.LabelUnverified {
		t.Errorf("ref 4 label = %s, want unchanged UNVERIFIED", r.Label)
	}

	if len(changes) != 2 {
		t.Errorf("expected 2 audit entries, got %+v", changes)
	}
}

func TestAdjudicationStage_OracleFailureIsNoOp(t *testing.T) {
	oracle := oracleFunc(func(context.Context, []adjudicate.Item) (map[int]adjudicate.Verdict, error) {
		return nil, errors.New("quota exhausted")
	})

	results := []types.VerificationResult{
		{RefNum: 1, Reference: types.Reference{Title: "A"}, Label: types.LabelReview, Confidence: 0.6},
	}

	v := New(searcherFunc(func(context.Context, string) ([]types.Candidate, error) { return nil, nil }),
		WithOracle(oracle))

	deltas, changes := v.adjudicationStage(context.Background(), results)
	if len(deltas) != 0 || len(changes) != 0 {
		t.Errorf("oracle failure must leave labels unchanged, got %+v", deltas)
	}
}

func TestChangeTruncatesTitleOnRunes(t *testing.T) {
	long := strings.Repeat("é", 70)
	c := change(types.VerificationResult{
		RefNum:    1,
		Reference: types.Reference{Title: long},
		Label:     types.LabelUnverified,
	}, types.LabelVerified, "promoted")

	if !utf8.ValidString(c.Title) {
		t.Fatalf("truncated title is not valid UTF-8: %q", c.Title)
	}
	if !strings.HasSuffix(c.Title, "...") {
		t.Fatalf("title = %q, want ... suffix", c.Title)
	}
	if got := utf8.RuneCountInString(c.Title); got != 63 {
		t.Errorf("rune count = %d, want 63 (60 kept + ellipsis)", got)
	}

	short := change(types.VerificationResult{
		Reference: types.Reference{Title: "Random Forests"},
	}, types.LabelVerified, "promoted")
	if short.Title != "Random Forests" {
		t.Errorf("short title altered: %q", short.Title)
	}
}
