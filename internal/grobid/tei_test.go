// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grobid

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

const sampleTEI = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
  <text>
    <back>
      <div>
        <listBibl>
          <biblStruct xml:id="b0">
            <analytic>
              <title level="a" type="main">Deep Learning for Entity Matching</title>
              <author>
                <persName><forename type="first">John</forename><surname>Doe</surname></persName>
              </author>
              <author>
                <persName><forename type="first">Jane</forename><surname>Smith</surname></persName>
              </author>
              <idno type="DOI">10.1145/1234567.1234568</idno>
            </analytic>
            <monogr>
              <title level="m">Proceedings of SIGMOD</title>
              <imprint>
                <date type="published" when="2023-06-18"/>
                <biblScope unit="volume">15</biblScope>
                <biblScope unit="page" from="100" to="115"/>
              </imprint>
            </monogr>
          </biblStruct>
          <biblStruct xml:id="b1">
            <monogr>
              <title level="m">The Elements of Statistical Learning</title>
              <author>
                <persName><forename type="first">Trevor</forename><surname>Hastie</surname></persName>
              </author>
              <imprint>
                <date type="published">2009</date>
                <biblScope unit="page">745</biblScope>
              </imprint>
            </monogr>
          </biblStruct>
          <biblStruct xml:id="b2">
            <monogr>
              <imprint>
                <date type="published" when="1999"/>
              </imprint>
            </monogr>
          </biblStruct>
        </listBibl>
      </div>
    </back>
  </text>
</TEI>`

func TestParseReferences(t *testing.T) {
	refs, err := ParseReferences(strings.NewReader(sampleTEI))
	if err != nil {
		t.Fatalf("ParseReferences: %v", err)
	}

	// The titleless b2 entry is dropped.
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}

	want := types.Reference{
		Title:   "Deep Learning for Entity Matching",
		Authors: []string{"John Doe", "Jane Smith"},
		Year:    "2023",
		Venue:   "Proceedings of SIGMOD",
		Pages:   "100-115",
		Volume:  "15",
		DOI:     "10.1145/1234567.1234568",
	}
	if !reflect.DeepEqual(refs[0], want) {
		t.Errorf("first reference = %+v, want %+v", refs[0], want)
	}

	book := refs[1]
	if book.Title != "The Elements of Statistical Learning" {
		t.Errorf("book title = %q", book.Title)
	}
	if len(book.Authors) != 1 || book.Authors[0] != "Trevor Hastie" {
		t.Errorf("book authors = %v, want [Trevor Hastie]", book.Authors)
	}
	if book.Year != "2009" {
		t.Errorf("book year = %q, want 2009 from element text", book.Year)
	}
	if book.Pages != "745" {
		t.Errorf("book pages = %q, want 745 from element text", book.Pages)
	}
	if book.Venue != book.Title {
		t.Errorf("book venue = %q, want the monogr title", book.Venue)
	}
}

func TestParseReferences_Fragment(t *testing.T) {
	fragment := `<biblStruct xml:id="b74">
		<analytic>
			<title level="a" type="main">Attention Is All You Need</title>
			<author><persName><forename>Ashish</forename><surname>Vaswani</surname></persName></author>
		</analytic>
	</biblStruct>`

	refs, err := ParseReferences(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("ParseReferences: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
	if refs[0].Title != "Attention Is All You Need" {
		t.Errorf("title = %q", refs[0].Title)
	}
	if refs[0].Venue != "" || refs[0].Year != "" {
		t.Errorf("fragment without monogr should have no venue or year, got %+v", refs[0])
	}
}

func TestParseReferences_MalformedXML(t *testing.T) {
	if _, err := ParseReferences(strings.NewReader("<biblStruct><analytic>")); err == nil {
		t.Fatal("expected an error for truncated XML")
	}
}

func TestClientExtractReferences(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing upload: %v", err)
		}
		file, header, err := r.FormFile("input")
		if err != nil {
			t.Fatalf("missing input file: %v", err)
		}
		file.Close()
		if header.Filename != "paper.pdf" {
			t.Errorf("uploaded filename = %q, want paper.pdf", header.Filename)
		}
		fmt.Fprint(w, sampleTEI)
	}))
	defer srv.Close()

	client := NewClient(types.ExtractionConfig{GrobidURL: srv.URL}, srv.Client())
	refs, err := client.ExtractReferences(context.Background(), pdfPath)
	if err != nil {
		t.Fatalf("ExtractReferences: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("expected 2 references, got %d", len(refs))
	}
}

func TestClientExtractReferences_ServiceError(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no fulltext", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(types.ExtractionConfig{GrobidURL: srv.URL}, srv.Client())
	if _, err := client.ExtractReferences(context.Background(), pdfPath); err == nil {
		t.Fatal("expected an error when GROBID fails")
	}
}
