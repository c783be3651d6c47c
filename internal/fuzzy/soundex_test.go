// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import "testing"

func TestSoundex(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Robert", "R163"},
		{"Rupert", "R163"},
		{"Smith", "S530"},
		{"Smyth", "S530"},
		{"Jackson", "J250"},
		{"Washington", "W252"},
		{"Tymczak", "T522"},
		{"Pfister", "P236"},
		{"O'Brien", "O165"},
		{"lowercase", "L622"},
		{"A", "A000"},
		{"", "0000"},
		{"123", "0000"},
		{"  ", "0000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Soundex(tt.input); got != tt.expected {
				t.Errorf("Soundex(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSoundex_HomophonesCollide(t *testing.T) {
	pairs := [][2]string{
		{"John", "Jon"},
		{"Smith", "Smyth"},
		{"Robert", "Rupert"},
	}
	for _, p := range pairs {
		if Soundex(p[0]) != Soundex(p[1]) {
			t.Errorf("expected %q and %q to share a code, got %q and %q",
				p[0], p[1], Soundex(p[0]), Soundex(p[1]))
		}
	}
}

func TestSoundex_CaseInsensitive(t *testing.T) {
	if Soundex("SMITH") != Soundex("smith") {
		t.Error("Soundex should be case-insensitive")
	}
}
