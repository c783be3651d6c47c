// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import "regexp"

// Span represents a detected PHI candidate: a half-open character range
// [Start, End) tagged with a category and a confidence score. Spans are
// created by the pattern scanner or the fuzzy matcher and mutated in place
// by confidence pipeline stages. They carry no state across
// document-processing calls.
type Span struct {
	Category   string
	Text       string
	Start      int
	End        int
	Confidence float64
	PatternID  string
	Groups     []string

	// Categories of other spans this span overlaps with, populated by the
	// disambiguation stage. Nil until the first ambiguity is recorded.
	AmbiguousWith map[string]bool
}

// MarkAmbiguous records that this span overlaps a span of another category.
// Idempotent.
func (s *Span) MarkAmbiguous(category string) {
	if s.AmbiguousWith == nil {
		s.AmbiguousWith = make(map[string]bool, 2)
	}
	s.AmbiguousWith[category] = true
}

// Overlaps reports whether two half-open ranges intersect.
func (s *Span) Overlaps(other *Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// SameOffsets reports whether two spans cover exactly the same range.
func (s *Span) SameOffsets(other *Span) bool {
	return s.Start == other.Start && s.End == other.End
}

// ValidatorFunc is an optional predicate attached to a pattern. A match is
// kept only when the predicate returns true. Groups holds the pattern's
// capture groups, with empty strings for groups that did not participate.
type ValidatorFunc func(match string, groups []string) bool

// PatternDef is one entry of the pattern corpus: a compiled matcher with a
// category, a base confidence, and an optional validator predicate.
type PatternDef struct {
	ID         string
	Category   string
	Regex      *regexp.Regexp
	Confidence float64
	Validator  ValidatorFunc
}

// ClampConfidence bounds a confidence score to [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
