// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grobid

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// biblStruct mirrors the TEI <biblStruct> element produced by GROBID's
// reference processor. Only the fields the verifier consumes are decoded.
type biblStruct struct {
	Analytic *biblPart `xml:"analytic"`
	Monogr   *biblPart `xml:"monogr"`
	Idnos    []idno    `xml:"idno"`
}

// biblPart covers the shared shape of <analytic> and <monogr>.
type biblPart struct {
	Title   teiText     `xml:"title"`
	Authors []teiAuthor `xml:"author"`
	Idnos   []idno      `xml:"idno"`
	Imprint *imprint    `xml:"imprint"`
}

type teiAuthor struct {
	PersName *persName `xml:"persName"`
}

type persName struct {
	Forenames []teiText `xml:"forename"`
	Surname   teiText   `xml:"surname"`
}

type imprint struct {
	Dates  []teiDate   `xml:"date"`
	Scopes []biblScope `xml:"biblScope"`
}

type teiDate struct {
	Type string `xml:"type,attr"`
	When string `xml:"when,attr"`
	Text string `xml:",chardata"`
}

type biblScope struct {
	Unit string `xml:"unit,attr"`
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
	Text string `xml:",chardata"`
}

type idno struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type teiText struct {
	Text string `xml:",chardata"`
}

func (t teiText) trimmed() string {
	return strings.TrimSpace(t.Text)
}

// ParseReferences decodes every <biblStruct> in a TEI document into a
// Reference, discarding entries without a title. It accepts both full TEI
// responses and bare biblStruct fragments, so depth is irrelevant: the
// decoder scans for the element wherever it appears.
func ParseReferences(r io.Reader) ([]types.Reference, error) {
	dec := xml.NewDecoder(r)
	var refs []types.Reference

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing TEI: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "biblStruct" {
			continue
		}

		var b biblStruct
		if err := dec.DecodeElement(&b, &se); err != nil {
			return nil, fmt.Errorf("decoding biblStruct: %w", err)
		}

		ref := b.reference()
		if ref.Title != "" {
			refs = append(refs, ref)
		}
	}

	return refs, nil
}

// reference maps one biblStruct to the verifier's Reference shape. The
// article title from <analytic> wins; <monogr> supplies the title for books
// and always supplies the venue.
func (b biblStruct) reference() types.Reference {
	var ref types.Reference

	if b.Analytic != nil && b.Analytic.Title.trimmed() != "" {
		ref.Title = b.Analytic.Title.trimmed()
	} else if b.Monogr != nil {
		ref.Title = b.Monogr.Title.trimmed()
	}

	// Authors come from analytic when it exists at all, monogr otherwise.
	if b.Analytic != nil {
		ref.Authors = authorNames(b.Analytic.Authors)
	} else if b.Monogr != nil {
		ref.Authors = authorNames(b.Monogr.Authors)
	}

	if b.Monogr != nil {
		ref.Venue = b.Monogr.Title.trimmed()
		if b.Monogr.Imprint != nil {
			ref.Year = publishedYear(b.Monogr.Imprint.Dates)
			ref.Pages = pageRange(b.Monogr.Imprint.Scopes)
			ref.Volume = volume(b.Monogr.Imprint.Scopes)
		}
	}

	ref.DOI = findDOI(b)
	return ref
}

func authorNames(authors []teiAuthor) []string {
	var names []string
	for _, a := range authors {
		if a.PersName == nil {
			continue
		}
		var parts []string
		for _, f := range a.PersName.Forenames {
			if s := f.trimmed(); s != "" {
				parts = append(parts, s)
			}
		}
		if s := a.PersName.Surname.trimmed(); s != "" {
			parts = append(parts, s)
		}
		if len(parts) > 0 {
			names = append(names, strings.Join(parts, " "))
		}
	}
	return names
}

// publishedYear prefers the when attribute of the published date, falling
// back to the element text. Either way only the leading year is kept.
func publishedYear(dates []teiDate) string {
	for _, d := range dates {
		if d.Type != "published" {
			continue
		}
		src := d.When
		if src == "" {
			src = strings.TrimSpace(d.Text)
		}
		if len(src) >= 4 {
			return src[:4]
		}
		return src
	}
	return ""
}

func pageRange(scopes []biblScope) string {
	for _, s := range scopes {
		if s.Unit != "page" {
			continue
		}
		switch {
		case s.From != "" && s.To != "":
			return s.From + "-" + s.To
		case s.From != "":
			return s.From
		default:
			return strings.TrimSpace(s.Text)
		}
	}
	return ""
}

func volume(scopes []biblScope) string {
	for _, s := range scopes {
		if s.Unit != "volume" {
			continue
		}
		if text := strings.TrimSpace(s.Text); text != "" {
			return text
		}
		return s.From
	}
	return ""
}

func findDOI(b biblStruct) string {
	groups := [][]idno{b.Idnos}
	if b.Analytic != nil {
		groups = append(groups, b.Analytic.Idnos)
	}
	if b.Monogr != nil {
		groups = append(groups, b.Monogr.Idnos)
	}
	for _, group := range groups {
		for _, id := range group {
			if strings.EqualFold(id.Type, "DOI") {
				return strings.TrimSpace(id.Text)
			}
		}
	}
	return ""
}
