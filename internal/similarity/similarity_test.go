// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "random forests", "random forests", 1.0},
		{"both empty", "", "", 0.0},
		{"one empty", "forests", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"single char overlap", "ab", "ax", 0.5},
		{"trailing period", "random forests", "random forests.", 28.0 / 29.0},
		{"transposed words", "forests random", "random forests", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"deep learning for entity matching", "deep learning entity matching"},
		{"attention is all you need", "attention is not all you need"},
		{"a", "ab"},
		{"schema-based matching", "schema matching"},
	}
	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v but Ratio(%q, %q) = %v", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"x", "xxxxxxxxxx"},
		{"the google file system", "the chubby lock service"},
		{"mapreduce", "map reduce"},
	}
	for _, p := range pairs {
		got := Ratio(p[0], p[1])
		if got < 0.0 || got > 1.0 {
			t.Errorf("Ratio(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
		}
	}
}
