// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanTokens_MatchesCapitalizedTokens(t *testing.T) {
	b := New([]string{"john", "smith"}, DefaultConfig())

	spans := ScanTokens(b, "Patient Jon saw Smith today", "NAME", "fuzzy-first-name", 0.7)
	require.Len(t, spans, 2)

	assert.Equal(t, "Jon", spans[0].Text)
	assert.Equal(t, "NAME", spans[0].Category)
	assert.Equal(t, "fuzzy-first-name", spans[0].PatternID)
	assert.Equal(t, 8, spans[0].Start)
	assert.Equal(t, 11, spans[0].End)
	assert.InDelta(t, 0.736, spans[0].Confidence, 1e-9)

	assert.Equal(t, "Smith", spans[1].Text)
	assert.Equal(t, 1.0, spans[1].Confidence)
}

func TestScanTokens_SkipsLowercaseTokens(t *testing.T) {
	b := New([]string{"will", "may"}, DefaultConfig())

	spans := ScanTokens(b, "he will may see them", "NAME", "fuzzy-first-name", 0.5)
	assert.Empty(t, spans)

	spans = ScanTokens(b, "Will saw May", "NAME", "fuzzy-first-name", 0.5)
	assert.Len(t, spans, 2)
}

func TestScanTokens_ThresholdFiltersWeakMatches(t *testing.T) {
	b := New([]string{"john"}, DefaultConfig())

	// "Jon" resolves at 0.736, below a 0.75 floor.
	spans := ScanTokens(b, "Jon was here", "NAME", "fuzzy-first-name", 0.75)
	assert.Empty(t, spans)
}

func TestScanTokens_RuneOffsets(t *testing.T) {
	b := New([]string{"smith"}, DefaultConfig())

	// The é is two bytes but one rune; offsets must count runes.
	spans := ScanTokens(b, "héllo Smith", "NAME", "fuzzy-surname", 0.9)
	require.Len(t, spans, 1)
	assert.Equal(t, 6, spans[0].Start)
	assert.Equal(t, 11, spans[0].End)
}

func TestScanTokens_EmptyText(t *testing.T) {
	b := New([]string{"john"}, DefaultConfig())
	assert.Empty(t, ScanTokens(b, "", "NAME", "fuzzy-first-name", 0.5))
}
