// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/Ad1th/Reference-Halucinations/internal/adjudicate"
	"github.com/Ad1th/Reference-Halucinations/internal/authors"
	"github.com/Ad1th/Reference-Halucinations/internal/match"
	"github.com/Ad1th/Reference-Halucinations/internal/reftext"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Reweighting blends. The alternate weights apply when title evidence is
// weak but author evidence is strong: a mangled title with the right author
// list is usually the right paper.
const (
	titleWeight  = 0.6
	authorWeight = 0.3
	yearWeight   = 0.1

	weakTitleWeight    = 0.3
	strongAuthorWeight = 0.5
	strongYearWeight   = 0.2

	weakTitleConfidence = 0.5
	strongAuthorOverlap = 0.8
)

// reweighStage recomputes confidence for every result with a retained
// candidate, blending the title-only confidence with author and year match
// scores. The blend always starts from TitleConfidence, so rerunning the
// stage on a settled result set changes nothing.
func (v *Verifier) reweighStage(results []types.VerificationResult) ([]delta, []types.Change) {
	var deltas []delta
	var changes []types.Change

	for _, r := range results {
		if r.Matched == nil {
			continue
		}

		authorScore := authors.CompareLists(r.Reference.Authors, r.Matched.Authors)
		yearScore := authors.CompareYears(r.Reference.Year, r.Matched.Year)

		title := r.TitleConfidence
		var adjusted float64
		if title < weakTitleConfidence && authorScore >= strongAuthorOverlap {
			adjusted = title*weakTitleWeight + authorScore*strongAuthorWeight + yearScore*strongYearWeight
		} else {
			adjusted = title*titleWeight + authorScore*authorWeight + yearScore*yearWeight
		}
		adjusted = round3(adjusted)

		next := r
		next.AuthorScore = ptr(round3(authorScore))
		next.YearScore = ptr(round3(yearScore))
		next.Confidence = adjusted

		switch {
		case adjusted >= v.cfg.Revision.PromoteConfidence &&
			(r.Label == types.LabelReview || r.Label == types.LabelUnverified):
			next.Label = types.LabelVerified
			next.Source = "author-match"
			changes = append(changes, change(r, next.Label, fmt.Sprintf(
				"author match %.2f, year match %.2f, adjusted confidence %.3f",
				authorScore, yearScore, adjusted)))

		case adjusted >= v.cfg.Revision.ReviewConfidence && r.Label == types.LabelUnverified:
			next.Label = types.LabelReview
			next.Source = "author-match"
			changes = append(changes, change(r, next.Label, fmt.Sprintf(
				"author match %.2f raised adjusted confidence to %.3f",
				authorScore, adjusted)))

		case adjusted < v.cfg.Revision.ReviewConfidence && r.Label == types.LabelVerified:
			next.Label = types.LabelReview
			next.Source = "author-match"
			changes = append(changes, change(r, next.Label, fmt.Sprintf(
				"weak metadata match, author %.2f, year %.2f", authorScore, yearScore)))
		}

		deltas = append(deltas, delta{refNum: r.RefNum, result: next})
	}

	return deltas, changes
}

// regexStage re-extracts titles from the raw references text and retries the
// match for references still UNVERIFIED or SUSPICIOUS. A corrected result is
// accepted only when its confidence beats the prior one.
func (v *Verifier) regexStage(ctx context.Context, results []types.VerificationResult) ([]delta, []types.Change) {
	eligible := filterLabels(results, types.LabelUnverified, types.LabelSuspicious)
	if len(eligible) == 0 {
		v.report.Printf("no UNVERIFIED or SUSPICIOUS references to process\n")
		return nil, nil
	}

	raw, err := v.rawText(ctx)
	if err != nil {
		v.report.Printf("raw text extraction failed, skipping stage: %v\n", err)
		return nil, nil
	}
	if reftext.HasSpacingCorruption(raw) {
		v.report.Printf("raw text has systematic spacing corruption, skipping stage\n")
		return nil, nil
	}

	titles := reftext.ExtractTitles(raw)
	v.report.Printf("recovered %d titles from raw text\n", len(titles))

	var deltas []delta
	var changes []types.Change

	for _, r := range eligible {
		best, _, ok := reftext.BestMatch(r.Reference.Title, titles, v.cfg.Revision.RegexMinSimilarity)
		if !ok {
			continue
		}

		corrected := types.Reference{Title: best.Title}
		res := match.Resolve(ctx, v.searcher, corrected, v.cfg.Matcher)
		if res.Confidence <= r.Confidence {
			continue
		}

		v.report.Printf("[%d] corrected title %q -> %q\n", r.RefNum, r.Reference.Title, best.Title)

		next := r
		next.Status = res.Status
		next.Confidence = res.Confidence
		next.TitleConfidence = res.Confidence
		next.AmbiguousWith = res.RunnerUpTitle
		next.Matched = nil
		if res.Best != nil {
			cand := res.Best.Candidate
			next.Matched = &cand
		}
		next.CorrectedTitle = best.Title
		next.Label = match.Classify(res.Status, res.Confidence, corrected.TitleWords(), v.cfg.Matcher)
		next.Source = "regex"

		if next.Label != r.Label {
			changes = append(changes, change(r, next.Label, fmt.Sprintf(
				"regex re-extraction found %q", best.Title)))
		}
		deltas = append(deltas, delta{refNum: r.RefNum, result: next})
	}

	return deltas, changes
}

// adjudicationStage submits the remaining problem references to the oracle
// in batches. Oracle failure is a no-op: labels stay where they were.
func (v *Verifier) adjudicationStage(ctx context.Context, results []types.VerificationResult) ([]delta, []types.Change) {
	eligible := filterLabels(results, types.LabelReview, types.LabelUnverified, types.LabelSuspicious)
	if len(eligible) == 0 {
		v.report.Printf("no references left for adjudication\n")
		return nil, nil
	}

	items := make([]adjudicate.Item, 0, len(eligible))
	for _, r := range eligible {
		items = append(items, adjudicate.Item{
			RefNum:     r.RefNum,
			Reference:  r.Reference,
			Candidate:  r.Matched,
			Confidence: r.Confidence,
		})
	}

	verdicts, err := v.oracle.Adjudicate(ctx, items)
	if err != nil {
		v.report.Printf("adjudication unavailable, labels unchanged: %v\n", err)
		return nil, nil
	}

	var deltas []delta
	var changes []types.Change

	for _, r := range eligible {
		verdict, ok := verdicts[r.RefNum]
		if !ok {
			continue
		}

		next := r
		switch {
		case verdict.Verified && verdict.Confidence >= v.cfg.Adjudication.MinConfidence:
			next.Label = types.LabelVerified
			next.Confidence = max(r.Confidence, verdict.Confidence)
			next.Source = "adjudication"
			changes = append(changes, change(r, next.Label, "oracle confirmed: "+verdict.Reasoning))

		case verdict.Exists != nil && !*verdict.Exists && r.Label != types.LabelSuspicious:
			next.Label = types.LabelSuspicious
			next.Source = "adjudication"
			changes = append(changes, change(r, next.Label, "oracle found no trace: "+verdict.Reasoning))

		default:
			continue
		}

		deltas = append(deltas, delta{refNum: r.RefNum, result: next})
	}

	return deltas, changes
}

func filterLabels(results []types.VerificationResult, labels ...types.Label) []types.VerificationResult {
	want := make(map[types.Label]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	var out []types.VerificationResult
	for _, r := range results {
		if want[r.Label] {
			out = append(out, r)
		}
	}
	return out
}

func change(r types.VerificationResult, newLabel types.Label, reason string) types.Change {
	title := r.Reference.Title
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60]) + "..."
	}
	return types.Change{
		RefNum:   r.RefNum,
		Title:    title,
		OldLabel: r.Label,
		NewLabel: newLabel,
		Reason:   reason,
	}
}
