// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adjudicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/Ad1th/Reference-Halucinations/pkg/types"
)

// adjudicationPromptTmpl is the prompt sent to the Gemini API for one batch
// of references. It asks for a JSON object keyed by reference number so that
// verdicts survive partial or reordered answers.
var adjudicationPromptTmpl = template.Must(template.New("adjudication").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`You are a bibliographic verification system. For each numbered reference below, decide whether it cites a real, existing publication and whether the database match (when shown) denotes the same work.

For each reference, report:
- verified: true only if you are confident the reference and the database match denote the same real publication
- exists: true if the publication exists, false if it appears fabricated, or "unknown" if you cannot tell
- confidence: a float between 0.0 and 1.0
- reasoning: one short sentence

Respond with a single JSON object mapping each reference number (as a string key) to its verdict. Do not include any text outside the JSON object.

Example response:
{"3": {"verified": true, "exists": true, "confidence": 0.9, "reasoning": "Well-known paper, match agrees on title and authors."}}

References:
{{range .Items}}
[{{.RefNum}}] Title: {{.Reference.Title}}
    Authors: {{join .Reference.Authors "; "}}{{if .Reference.Year}}
    Year: {{.Reference.Year}}{{end}}{{if .Candidate}}
    Database match: {{.Candidate.Title}} ({{.Candidate.Year}}) by {{join .Candidate.Authors "; "}}{{end}}
    Current confidence: {{printf "%.2f" .Confidence}}
{{end}}`))

// geminiAPIBase is the Generative Language API base. Package-level var for
// test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// rateLimitBase controls the base duration of the backoff applied after a
// 429 response. Tests override this to avoid real sleeps.
var rateLimitBase = time.Second

// GeminiOracle adjudicates reference batches against the Gemini API. When a
// model is exhausted or persistently rate limited it falls through to the
// next model in the configured list.
type GeminiOracle struct {
	cfg    types.AdjudicationConfig
	client *http.Client
}

// NewGeminiOracle builds an oracle from the adjudication config, backfilling
// zero values with defaults.
func NewGeminiOracle(cfg types.AdjudicationConfig, client *http.Client) *GeminiOracle {
	def := types.DefaultConfig().Adjudication
	if len(cfg.Models) == 0 {
		cfg.Models = def.Models
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiOracle{cfg: cfg, client: client}
}

// geminiRequest is the request body for the generateContent endpoint.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Adjudicate splits items into batches of cfg.BatchSize, submits each batch,
// and merges the verdicts. Batches that fail entirely are skipped: callers
// get verdicts for whatever the oracle managed to answer.
func (g *GeminiOracle) Adjudicate(ctx context.Context, items []Item) (map[int]Verdict, error) {
	if g.cfg.APIKey == "" {
		return nil, fmt.Errorf("adjudication requires an API key")
	}

	verdicts := make(map[int]Verdict)
	var lastErr error

	for start := 0; start < len(items); start += g.cfg.BatchSize {
		end := min(start+g.cfg.BatchSize, len(items))

		batch, err := g.adjudicateBatch(ctx, items[start:end])
		if err != nil {
			if ctx.Err() != nil {
				return verdicts, ctx.Err()
			}
			lastErr = err
			continue
		}
		for refNum, v := range batch {
			verdicts[refNum] = v
		}
	}

	if len(verdicts) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return verdicts, nil
}

// adjudicateBatch tries each configured model in turn until one yields a
// parseable response.
func (g *GeminiOracle) adjudicateBatch(ctx context.Context, items []Item) (map[int]Verdict, error) {
	prompt, err := renderPrompt(items)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	var lastErr error
	for _, model := range g.cfg.Models {
		text, err := g.callModel(ctx, model, prompt)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		verdicts := parseVerdicts(text)
		if len(verdicts) == 0 {
			lastErr = fmt.Errorf("model %s returned no parseable verdicts", model)
			continue
		}
		return verdicts, nil
	}
	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

// callModel issues one generateContent call, retrying 429 responses with
// exponential backoff before giving up on the model.
func (g *GeminiOracle) callModel(ctx context.Context, model, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.1,
			MaxOutputTokens: 4096,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiAPIBase, model)

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * rateLimitBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.cfg.APIKey)

		resp, err := g.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("calling Gemini API: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
		}

		var gResp geminiResponse
		err = json.NewDecoder(resp.Body).Decode(&gResp)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("decoding Gemini response: %w", err)
		}

		if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("Gemini API returned empty content")
		}
		return gResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("model %s rate limited after %d retries", model, g.cfg.MaxRetries)
}

// renderPrompt executes the adjudication prompt template for one batch.
func renderPrompt(items []Item) (string, error) {
	var buf bytes.Buffer
	if err := adjudicationPromptTmpl.Execute(&buf, struct{ Items []Item }{Items: items}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
