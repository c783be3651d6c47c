// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import "testing"

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		maxDist  int
		expected int
	}{
		{"identical", "john", "john", 2, 0},
		{"both empty", "", "", 2, 0},
		{"empty left", "", "abc", 2, 3},
		{"empty right", "abc", "", 2, 3},
		{"single substitution", "smith", "smyth", 2, 1},
		{"single deletion", "john", "jon", 2, 1},
		{"single insertion", "jon", "john", 2, 1},
		{"transposition", "smith", "simth", 2, 1},
		{"transposition at end", "john", "jonh", 2, 1},
		{"two substitutions", "johnson", "jahnsen", 2, 2},
		{"substitution plus deletion", "jonathan", "jonthen", 2, 2},
		{"unrelated", "abc", "xyz", 3, 3},
		{"unicode runes", "josé", "jose", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DamerauLevenshtein(tt.a, tt.b, tt.maxDist); got != tt.expected {
				t.Errorf("DamerauLevenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestDamerauLevenshtein_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"jonathan", "jon"},
		{"smith", "smyth"},
		{"garcia", "garzia"},
	}
	for _, p := range pairs {
		ab := DamerauLevenshtein(p[0], p[1], 10)
		ba := DamerauLevenshtein(p[1], p[0], 10)
		if ab != ba {
			t.Errorf("distance not symmetric for %q/%q: %d vs %d", p[0], p[1], ab, ba)
		}
	}
}

func TestDamerauLevenshtein_LengthShortCircuit(t *testing.T) {
	// When the length gap already exceeds maxDist the gap itself comes back.
	// It is a lower bound, which is all the candidate filter needs.
	got := DamerauLevenshtein("jonathan", "jon", 2)
	if got != 5 {
		t.Errorf("expected length-difference lower bound 5, got %d", got)
	}
}
