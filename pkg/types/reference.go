// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the refcheck pipeline:
// extracted references, search candidates, verification results, and the
// configuration blocks injected into each stage.
package types

import "strings"

// Reference is one citation parsed from a source document. The extraction
// stage creates it and it is never mutated afterwards; corrections made
// during revision are recorded on the VerificationResult instead.
type Reference struct {
	// Title is the citation title as extracted. It may be empty or
	// malformed; downstream stages must tolerate both.
	Title string `json:"title" yaml:"title"`

	// Authors lists display names in citation order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the 4-digit publication year, or empty when unknown.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	Venue  string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	DOI    string `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// TitleWords returns the number of whitespace-delimited tokens in the title.
func (r Reference) TitleWords() int {
	return len(strings.Fields(r.Title))
}

// Candidate is one publication returned by the bibliographic search API for
// a query. Candidates are ephemeral: produced per query, scored, and
// discarded except for the one retained on a VerificationResult.
type Candidate struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    string   `json:"year,omitempty" yaml:"year,omitempty"`
	Venue   string   `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Type is the publication kind as reported by the index, e.g.
	// "Conference and Workshop Papers".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	DOI    string `json:"doi,omitempty" yaml:"doi,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// ScoredCandidate pairs a Candidate with its score components. Combined is
// a decision value used to pick and rank matches; it is never persisted as
// ground truth about the publication.
type ScoredCandidate struct {
	Candidate Candidate

	// TitleSimilarity is the raw title similarity in [0,1] before the
	// length penalty is applied.
	TitleSimilarity float64

	// AuthorOverlap is the author-list match score in [0,1], or 0 when
	// the reference carries no authors.
	AuthorOverlap float64

	// Penalty is the short-title multiplier applied to TitleSimilarity.
	Penalty float64

	// Combined is the weighted blend used for match decisions, in [0,1].
	Combined float64
}
