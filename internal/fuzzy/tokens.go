// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import (
	"regexp"
	"unicode"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

var tokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z'-]*`)

// ScanTokens runs every capitalized word-like token of text through the
// backend and returns a span for each token that resolves to a dictionary
// term at or above minConfidence. This is the token-classification path the
// orchestrator merges with scanner output before the confidence pipeline.
// Offsets are rune-based, matching scanner spans.
func ScanTokens(b Backend, text, category, patternID string, minConfidence float64) []*detector.Span {
	var spans []*detector.Span

	idx := detector.NewRuneIndex(text)
	for _, loc := range tokenRe.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]

		// Dictionary tokens in running text are proper nouns; lowercase
		// words would collide with ordinary vocabulary ("will", "may").
		first := []rune(token)[0]
		if !unicode.IsUpper(first) {
			continue
		}

		result := b.Lookup(token)
		if !result.Matched || result.Confidence < minConfidence {
			continue
		}

		spans = append(spans, &detector.Span{
			Category:   category,
			Text:       token,
			Start:      idx.RuneOffset(loc[0]),
			End:        idx.RuneOffset(loc[1]),
			Confidence: detector.ClampConfidence(result.Confidence),
			PatternID:  patternID,
		})
	}

	return spans
}
