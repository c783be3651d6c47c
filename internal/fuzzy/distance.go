// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

// DamerauLevenshtein computes the edit distance between a and b counting
// insertions, deletions, substitutions, and adjacent transpositions at cost
// 1 each. When the length difference alone exceeds maxDist the difference is
// returned without running the DP; it is a valid lower bound on the distance.
func DamerauLevenshtein(a, b string, maxDist int) int {
	aChars := []rune(a)
	bChars := []rune(b)
	lenA := len(aChars)
	lenB := len(bChars)

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	diff := lenA - lenB
	if diff < 0 {
		diff = -diff
	}
	if diff > maxDist {
		return diff
	}

	// Three rolling rows: transpositions need the row before last.
	prevPrev := make([]int, lenB+1)
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i

		for j := 1; j <= lenB; j++ {
			cost := 1
			if aChars[i-1] == bChars[j-1] {
				cost = 0
			}

			d := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < d {
				d = ins // insertion
			}
			if sub := prev[j-1] + cost; sub < d {
				d = sub // substitution
			}
			if i > 1 && j > 1 && aChars[i-1] == bChars[j-2] && aChars[i-2] == bChars[j-1] {
				if tr := prevPrev[j-2] + cost; tr < d {
					d = tr // transposition
				}
			}
			curr[j] = d
		}

		prevPrev, prev, curr = prev, curr, prevPrev
	}

	return prev[lenB]
}
