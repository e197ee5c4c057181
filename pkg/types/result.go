// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MatchStatus is the raw matcher outcome for one reference before
// classification.
type MatchStatus string

const (
	// StatusFound means a single candidate cleared the similarity
	// threshold with a clear margin over the runner-up.
	StatusFound MatchStatus = "FOUND"

	// StatusNotFound means the search returned no candidates at all.
	StatusNotFound MatchStatus = "NOT_FOUND"

	// StatusAmbiguous means the top two candidates scored within the
	// ambiguity gap of each other.
	StatusAmbiguous MatchStatus = "AMBIGUOUS"

	// StatusLowConfidence means candidates exist but the best score fell
	// below the similarity threshold. The best candidate is retained as
	// context: a weak match may still be the right paper.
	StatusLowConfidence MatchStatus = "LOW_CONFIDENCE"

	// StatusNotChecked means the reference had no usable title, so no
	// search was attempted.
	StatusNotChecked MatchStatus = "NOT_CHECKED"
)

// Label is the externally visible classification of one reference.
type Label string

const (
	LabelVerified   Label = "VERIFIED"
	LabelReview     Label = "REVIEW"
	LabelUnverified Label = "UNVERIFIED"
	LabelSuspicious Label = "SUSPICIOUS"
)

// Rank returns the display sort order: VERIFIED < REVIEW < UNVERIFIED <
// SUSPICIOUS. Unknown labels sort last.
func (l Label) Rank() int {
	switch l {
	case LabelVerified:
		return 0
	case LabelReview:
		return 1
	case LabelUnverified:
		return 2
	case LabelSuspicious:
		return 3
	}
	return 4
}

// VerificationResult is one reference's verification state. Stage 1 creates
// it; later stages return changesets that the orchestrator folds in, so the
// record itself is only mutated in one place.
type VerificationResult struct {
	// RefNum is the 1-based citation number in document order.
	RefNum int `json:"ref_num" yaml:"ref_num"`

	Reference Reference `json:"reference" yaml:"reference"`

	Status     MatchStatus `json:"status" yaml:"status"`
	Label      Label       `json:"label" yaml:"label"`
	Confidence float64     `json:"confidence" yaml:"confidence"`

	// TitleConfidence is the title-only match confidence from resolution,
	// kept separate from Confidence so metadata reweighting stays a pure
	// function of the original evidence no matter how often it reruns.
	TitleConfidence float64 `json:"title_confidence" yaml:"title_confidence"`

	// Matched is the best candidate retained from the search, present for
	// FOUND, AMBIGUOUS, and LOW_CONFIDENCE outcomes.
	Matched *Candidate `json:"matched,omitempty" yaml:"matched,omitempty"`

	// AmbiguousWith is the runner-up title when Status is AMBIGUOUS.
	AmbiguousWith string `json:"ambiguous_with,omitempty" yaml:"ambiguous_with,omitempty"`

	// AuthorScore and YearScore are metadata match scores computed during
	// revision. Nil until the author/year stage has run for this result.
	AuthorScore *float64 `json:"author_score,omitempty" yaml:"author_score,omitempty"`
	YearScore   *float64 `json:"year_score,omitempty" yaml:"year_score,omitempty"`

	// CorrectedTitle is set when regex re-extraction found a better title
	// than the one the extractor produced.
	CorrectedTitle string `json:"corrected_title,omitempty" yaml:"corrected_title,omitempty"`

	// Source names the stage that last set the label, e.g. "initial",
	// "author-match", "regex", "adjudication".
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Change is one audit record: a label movement made by a revision stage.
type Change struct {
	RefNum   int    `json:"ref_num" yaml:"ref_num"`
	Title    string `json:"title" yaml:"title"`
	OldLabel Label  `json:"old_label" yaml:"old_label"`
	NewLabel Label  `json:"new_label" yaml:"new_label"`
	Reason   string `json:"reason" yaml:"reason"`
}
