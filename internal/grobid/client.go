// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grobid extracts structured references from PDFs through a GROBID
// service and parses the TEI XML it returns.
package grobid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// Client talks to a GROBID service's processReferences endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a GROBID client. A nil http.Client gets a generous
// timeout: reference processing on large PDFs is slow.
func NewClient(cfg types.ExtractionConfig, httpClient *http.Client) *Client {
	url := cfg.GrobidURL
	if url == "" {
		url = types.DefaultConfig().Extraction.GrobidURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{url: url, httpClient: httpClient}
}

// ExtractReferences uploads the PDF at pdfPath and parses the resulting TEI
// into references.
func (c *Client) ExtractReferences(ctx context.Context, pdfPath string) ([]types.Reference, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("input", filepath.Base(pdfPath))
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling GROBID: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GROBID returned %d processing %s", resp.StatusCode, filepath.Base(pdfPath))
	}

	refs, err := ParseReferences(resp.Body)
	if err != nil {
		return nil, err
	}
	return refs, nil
}
