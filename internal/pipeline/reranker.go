// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

// BorderlineBand is the confidence sub-range considered uncertain enough to
// warrant model re-ranking. Half-open: Low <= confidence < High.
type BorderlineBand struct {
	Low  float64
	High float64
}

// DefaultBand returns the band used when none is configured.
func DefaultBand() BorderlineBand {
	return BorderlineBand{Low: 0.40, High: 0.75}
}

// Reranker is the external ML collaborator invoked by the
// mlConfidenceRanking stage. Implementations may adjust confidence for the
// given spans but must never change span identity or offsets. The stage
// treats errors and an absent implementation as identity pass-through.
type Reranker interface {
	Rerank(ctx context.Context, spans []*detector.Span, text string) ([]*detector.Span, error)
}
