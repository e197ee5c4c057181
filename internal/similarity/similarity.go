// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity implements Ratcliff/Obershelp sequence similarity over
// strings. The ratio is 2*M/T where M is the total number of matched
// characters found by recursively taking the longest common substring and
// matching the pieces to its left and right, and T is the combined length.
package similarity

// Ratio returns the similarity of a and b in [0,1]. Identical non-empty
// strings score 1.0; strings with no characters in common score 0.0.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0.0
	}
	m := matchedRunes(ra, rb)
	return 2.0 * float64(m) / float64(total)
}

// matchedRunes counts runes matched between a and b: the longest common
// substring, plus (recursively) the matches in the unmatched regions on
// either side of it.
func matchedRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchedRunes(a[:ai], b[:bi]) +
		matchedRunes(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring returns the start positions and length of the
// longest run of runes common to a and b. Ties resolve to the earliest
// occurrence in a, then in b.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1]
	// for the current row i.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
