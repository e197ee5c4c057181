// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain title", "Random Forests", "Random Forests"},
		{"markup stripped", "A <i>Fast</i> Index for <b>Graphs</b>", "A Fast Index for Graphs"},
		{"whitespace collapsed", "  Deep   Learning\tfor\nEntity   Matching ", "Deep Learning for Entity Matching"},
		{"only markup", "<p></p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFixArtifacts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no artifact", "Attention Is All You Need", "Attention Is All You Need"},
		{"single artifact", "Zeroshot Learning with Graphs", "zero-shot Learning with Graphs"},
		{"multiple artifacts", "Realtime finetuning for fewshot tasks", "real-time fine-tuning for few-shot tasks"},
		{"word boundary respected", "surrealtimes", "surrealtimes"},
		{"case insensitive", "ENDTOEND Speech Recognition", "end-to-end Speech Recognition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixArtifacts(tt.in); got != tt.want {
				t.Errorf("FixArtifacts(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestForQuery(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		maxTokens int
		want      string
	}{
		{"short title untouched", "Random Forests", 6, "Random Forests"},
		{"long title truncated", "A Very Long Title About Many Different Interesting Things", 6, "A Very Long Title About Many"},
		{"markup and artifacts combined", "<i>Zeroshot</i>  entity   matching at scale", 6, "zero-shot entity matching at scale"},
		{"no truncation when zero", "One Two Three Four Five Six Seven Eight", 0, "One Two Three Four Five Six Seven Eight"},
		{"empty", "", 6, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForQuery(tt.in, tt.maxTokens); got != tt.want {
				t.Errorf("ForQuery(%q, %d) = %q, want %q", tt.in, tt.maxTokens, got, tt.want)
			}
		})
	}
}
