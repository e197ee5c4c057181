// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the multi-stage verification of a reference
// list: an initial title-based match, then revision stages that reweigh
// metadata, retry regex-corrected titles, and consult an external
// adjudicator. Stages never mutate shared records: each returns a changeset
// that the orchestrator folds into the canonical result set.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Ad1th/Reference-Halucinations/internal/adjudicate"
	"github.com/Ad1th/Reference-Halucinations/internal/match"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// RawTextFunc supplies the raw text of the document's references section for
// the regex re-extraction stage.
type RawTextFunc func(ctx context.Context) (string, error)

// Verifier runs the verification pipeline over one document's references.
type Verifier struct {
	searcher match.Searcher
	oracle   adjudicate.Oracle
	rawText  RawTextFunc
	cfg      types.Config
	report   *Report
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithOracle supplies the semantic adjudicator for the final revision stage.
// Without one the stage is skipped.
func WithOracle(o adjudicate.Oracle) Option {
	return func(v *Verifier) { v.oracle = o }
}

// WithRawText supplies the raw references-section text source for the regex
// stage. Without one the stage is skipped.
func WithRawText(fn RawTextFunc) Option {
	return func(v *Verifier) { v.rawText = fn }
}

// WithConfig overrides the default configuration.
func WithConfig(cfg types.Config) Option {
	return func(v *Verifier) { v.cfg = cfg }
}

// WithReport directs progress and report output to the given reporter.
func WithReport(r *Report) Option {
	return func(v *Verifier) { v.report = r }
}

// New builds a Verifier around the given search collaborator.
func New(searcher match.Searcher, opts ...Option) *Verifier {
	v := &Verifier{
		searcher: searcher,
		cfg:      types.DefaultConfig(),
		report:   Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Outcome is the final state of one pipeline run.
type Outcome struct {
	// Results is the full result set, ordered for presentation: VERIFIED,
	// REVIEW, UNVERIFIED, SUSPICIOUS, stable by citation number within each
	// group.
	Results []types.VerificationResult

	// Changes is the audit log of every label movement, in stage order.
	Changes []types.Change
}

// Run verifies the full reference list. Per-reference failures degrade that
// reference only; Run fails only when there are no references to verify at
// all.
func (v *Verifier) Run(ctx context.Context, refs []types.Reference) (*Outcome, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("no references to verify")
	}

	v.report.Section("STAGE 1: TITLE-BASED VERIFICATION")
	results := v.initial(ctx, refs)
	v.report.Results(results)
	v.report.Statistics("INITIAL SUMMARY", results)

	var audit []types.Change

	v.report.Section("STAGE 2: AUTHOR AND YEAR REWEIGHTING")
	deltas, changes := v.reweighStage(results)
	results = apply(results, deltas)
	audit = append(audit, changes...)
	v.report.Changes("author/year reweighting", changes)
	v.report.Statistics("POST-REWEIGHTING SUMMARY", results)

	if v.cfg.Revision.SkipRegex || v.rawText == nil {
		v.report.Section("STAGE 3: REGEX RE-EXTRACTION (skipped)")
	} else {
		v.report.Section("STAGE 3: REGEX RE-EXTRACTION")
		deltas, changes = v.regexStage(ctx, results)
		results = apply(results, deltas)
		audit = append(audit, changes...)
		v.report.Changes("regex re-extraction", changes)
		v.report.Statistics("POST-REGEX SUMMARY", results)
	}

	if v.cfg.Revision.SkipAdjudication || v.oracle == nil {
		v.report.Section("STAGE 4: SEMANTIC ADJUDICATION (skipped)")
	} else {
		v.report.Section("STAGE 4: SEMANTIC ADJUDICATION")
		deltas, changes = v.adjudicationStage(ctx, results)
		results = apply(results, deltas)
		audit = append(audit, changes...)
		v.report.Changes("semantic adjudication", changes)
		v.report.Statistics("FINAL SUMMARY", results)
	}

	SortForDisplay(results)
	v.report.Section("FINAL RESULTS")
	v.report.Results(results)

	return &Outcome{Results: results, Changes: audit}, nil
}

// initial performs the title-based match for every reference. References
// without a title short-circuit to NOT_CHECKED without touching the search
// collaborator.
func (v *Verifier) initial(ctx context.Context, refs []types.Reference) []types.VerificationResult {
	results := make([]types.VerificationResult, 0, len(refs))

	for i, ref := range refs {
		r := types.VerificationResult{
			RefNum:    i + 1,
			Reference: ref,
			Source:    "initial",
		}

		if strings.TrimSpace(ref.Title) == "" {
			r.Status = types.StatusNotChecked
			r.Label = match.Classify(r.Status, 0, 0, v.cfg.Matcher)
			results = append(results, r)
			continue
		}

		res := match.Resolve(ctx, v.searcher, ref, v.cfg.Matcher)
		r.Status = res.Status
		r.Confidence = res.Confidence
		r.TitleConfidence = res.Confidence
		r.AmbiguousWith = res.RunnerUpTitle
		if res.Best != nil {
			cand := res.Best.Candidate
			r.Matched = &cand
		}
		r.Label = match.Classify(res.Status, res.Confidence, ref.TitleWords(), v.cfg.Matcher)

		results = append(results, r)
	}

	return results
}

// delta is one stage's replacement record for one reference.
type delta struct {
	refNum int
	result types.VerificationResult
}

// apply folds a changeset into the result set, producing a new slice. This
// is the only place results are replaced.
func apply(results []types.VerificationResult, deltas []delta) []types.VerificationResult {
	if len(deltas) == 0 {
		return results
	}

	byNum := make(map[int]types.VerificationResult, len(deltas))
	for _, d := range deltas {
		byNum[d.refNum] = d.result
	}

	next := make([]types.VerificationResult, len(results))
	for i, r := range results {
		if replacement, ok := byNum[r.RefNum]; ok {
			next[i] = replacement
		} else {
			next[i] = r
		}
	}
	return next
}

// SortForDisplay orders results VERIFIED, REVIEW, UNVERIFIED, SUSPICIOUS,
// stable by citation number within each group.
func SortForDisplay(results []types.VerificationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Label.Rank() != results[j].Label.Rank() {
			return results[i].Label.Rank() < results[j].Label.Rank()
		}
		return results[i].RefNum < results[j].RefNum
	})
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func ptr(v float64) *float64 {
	return &v
}
