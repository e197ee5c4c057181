// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package adjudicate submits accumulated match evidence to an external
// LLM-style oracle for semantic adjudication. The oracle is the last
// revision stage and strictly best-effort: an unavailable or incoherent
// oracle leaves every label exactly as it was.
package adjudicate

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Item is the evidence bundle for one reference: the extracted fields, the
// best retained candidate (nil when the search found nothing usable), and
// the current confidence.
type Item struct {
	RefNum     int
	Reference  types.Reference
	Candidate  *types.Candidate
	Confidence float64
}

// Verdict is the oracle's judgement on one reference.
type Verdict struct {
	// Verified reports whether the oracle is confident the reference and
	// candidate denote the same real publication.
	Verified bool

	// Exists reports whether the publication exists at all. Nil when the
	// oracle answered "unknown" or with something unparseable.
	Exists *bool

	// Confidence is the oracle's self-reported confidence in [0,1].
	Confidence float64

	// Reasoning is the oracle's short free-text justification.
	Reasoning string
}

// UnmarshalJSON tolerates the shapes oracles actually produce: exists may be
// true, false, or the string "unknown".
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var raw struct {
		Verified   bool            `json:"verified"`
		Exists     json.RawMessage `json:"exists"`
		Confidence float64         `json:"confidence"`
		Reasoning  string          `json:"reasoning"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Verified = raw.Verified
	v.Confidence = raw.Confidence
	v.Reasoning = raw.Reasoning
	v.Exists = nil
	var b bool
	if len(raw.Exists) > 0 && json.Unmarshal(raw.Exists, &b) == nil {
		v.Exists = &b
	}
	return nil
}

// Oracle adjudicates a batch of references in one round trip. The returned
// map is keyed by RefNum; references the oracle did not answer for are
// simply absent. Implementations must not fail the batch for a single
// malformed verdict.
type Oracle interface {
	Adjudicate(ctx context.Context, items []Item) (map[int]Verdict, error)
}

// extractJSON isolates a JSON payload from oracle output that may wrap it
// in markdown code fences or surrounding prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		text = strings.TrimSpace(rest)
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// parseVerdicts decodes the oracle's response text into per-reference
// verdicts. Any parse failure yields an empty map: adjudication degrades to
// a no-op rather than propagating an error.
func parseVerdicts(text string) map[int]Verdict {
	var byKey map[string]Verdict
	if err := json.Unmarshal([]byte(extractJSON(text)), &byKey); err != nil {
		return map[int]Verdict{}
	}

	verdicts := make(map[int]Verdict, len(byKey))
	for key, v := range byKey {
		refNum, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		verdicts[refNum] = v
	}
	return verdicts
}
