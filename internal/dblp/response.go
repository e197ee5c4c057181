// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"encoding/json"

	"github.com/Ad1th/Reference-Halucinations/internal/textnorm"
	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// searchResponse mirrors the result.hits.hit[].info path of the DBLP JSON
// format. DBLP is loose about shapes: hit may be an object or an array, and
// an author may be a bare string, an object with a text field, or a list of
// either. Absent keys are missing data, never errors.
type searchResponse struct {
	Result struct {
		Hits struct {
			Hit hitList `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// candidates converts the response hits into Candidate records. Titles are
// cleaned here because DBLP embeds markup in some entries.
func (r searchResponse) candidates() []types.Candidate {
	var out []types.Candidate
	for _, h := range r.Result.Hits.Hit {
		info := h.Info
		out = append(out, types.Candidate{
			Title:   textnorm.Clean(info.Title),
			Authors: info.Authors.Names,
			Year:    info.Year.value,
			Venue:   info.Venue,
			Type:    info.Type,
			DOI:     info.DOI,
			URL:     info.URL,
			Pages:   info.Pages,
			Volume:  info.Volume.value,
		})
	}
	return out
}

type hit struct {
	Info info `json:"info"`
}

// hitList accepts both a single hit object and an array of hits.
type hitList []hit

func (h *hitList) UnmarshalJSON(data []byte) error {
	var many []hit
	if err := json.Unmarshal(data, &many); err == nil {
		*h = many
		return nil
	}
	var one hit
	if err := json.Unmarshal(data, &one); err == nil {
		*h = hitList{one}
		return nil
	}
	// Unrecognized shape: treat as no hits.
	*h = nil
	return nil
}

type info struct {
	Title   string      `json:"title"`
	Authors authorField `json:"authors"`
	Year    stringy     `json:"year"`
	Venue   string      `json:"venue"`
	Type    string      `json:"type"`
	DOI     string      `json:"doi"`
	URL     string      `json:"url"`
	Pages   string      `json:"pages"`
	Volume  stringy     `json:"volume"`
}

// authorField normalizes the author block into a flat name list, whatever
// shape DBLP chose for this entry.
type authorField struct {
	Names []string
}

func (a *authorField) UnmarshalJSON(data []byte) error {
	var block struct {
		Author json.RawMessage `json:"author"`
	}
	if err := json.Unmarshal(data, &block); err != nil || len(block.Author) == 0 {
		return nil
	}

	// Array of entries, each a string or an object.
	var raws []json.RawMessage
	if err := json.Unmarshal(block.Author, &raws); err == nil {
		for _, raw := range raws {
			if name := authorName(raw); name != "" {
				a.Names = append(a.Names, name)
			}
		}
		return nil
	}

	// Single entry.
	if name := authorName(block.Author); name != "" {
		a.Names = []string{name}
	}
	return nil
}

// authorName extracts a display name from one author entry: either a JSON
// string or an object carrying a text field.
func authorName(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Text
	}
	return ""
}

// stringy accepts a JSON string or number and stores it as a string. DBLP
// serializes years and volumes inconsistently across entry types.
type stringy struct {
	value string
}

func (s *stringy) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.value = str
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		s.value = num.String()
	}
	return nil
}
