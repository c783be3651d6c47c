// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

// Stage priorities. Gaps leave room for externally registered stages.
const (
	PriorityContextModifier      = 10
	PrioritySpanEnhancer         = 20
	PriorityVectorDisambiguation = 30
	PriorityMLConfidenceRanking  = 35
	PriorityCrossTypeReasoning   = 40
	PriorityContextualConfidence = 50
	PriorityCalibration          = 60
)

func defaultStages(reranker Reranker, band BorderlineBand, pairs [][2]string) []Stage {
	return []Stage{
		newContextModifierStage(),
		newSpanEnhancerStage(),
		newVectorDisambiguationStage(),
		newMLConfidenceRankingStage(reranker, band),
		newCrossTypeReasoningStage(pairs),
		newContextualConfidenceStage(),
		newCalibrationStage(),
	}
}

// contextRule pairs an end-anchored pattern over the preceding-text window
// with a fixed confidence adjustment.
type contextRule struct {
	re     *regexp.Regexp
	amount float64
}

// Rule order is an explicit priority list: the first matching rule wins
// within each list.
var boostRules = []contextRule{
	{regexp.MustCompile(`(?i)(?:patient|pt)\s*(?:name)?\s*[:#]?\s*$`), 0.15},
	{regexp.MustCompile(`(?i)\bssn\s*[:#]?\s*$`), 0.15},
	{regexp.MustCompile(`(?i)(?:mrn|medical record)\s*[:#]?\s*$`), 0.15},
	{regexp.MustCompile(`(?i)(?:dob|date of birth)\s*[:#]?\s*$`), 0.12},
	{regexp.MustCompile(`(?i)(?:name|contact|address)\s*[:#]?\s*$`), 0.10},
}

var reduceRules = []contextRule{
	{regexp.MustCompile(`(?i)\bdr\.?\s+$`), 0.10},
	{regexp.MustCompile(`(?i)(?:hospital|clinic|facility)\s*[:#]?\s*$`), 0.10},
	{regexp.MustCompile(`(?i)(?:room|rm|suite)\s*[:#]?\s*$`), 0.12},
	{regexp.MustCompile(`(?i)(?:test|example|sample)\s*[:#]?\s*$`), 0.15},
}

const contextWindow = 30

// contextModifier inspects up to 30 characters preceding each span. The
// first matching boost rule and, independently, the first matching reduce
// rule both apply.
func newContextModifierStage() Stage {
	return Stage{
		Name:     "contextModifier",
		Priority: PriorityContextModifier,
		Enabled:  true,
		Transform: func(_ context.Context, spans []*detector.Span, text string, _ Context) []*detector.Span {
			runes := []rune(text)
			for _, s := range spans {
				start := s.Start
				if start > len(runes) {
					start = len(runes)
				}
				from := start - contextWindow
				if from < 0 {
					from = 0
				}
				window := string(runes[from:start])

				for _, rule := range boostRules {
					if rule.re.MatchString(window) {
						s.Confidence = detector.ClampConfidence(s.Confidence + rule.amount)
						break
					}
				}
				for _, rule := range reduceRules {
					if rule.re.MatchString(window) {
						s.Confidence = detector.ClampConfidence(s.Confidence - rule.amount)
						break
					}
				}
			}
			return spans
		},
	}
}

// spanEnhancer rewards matches from explicitly labeled patterns and
// high-confidence multi-word matches.
func newSpanEnhancerStage() Stage {
	return Stage{
		Name:     "spanEnhancer",
		Priority: PrioritySpanEnhancer,
		Enabled:  true,
		Transform: func(_ context.Context, spans []*detector.Span, _ string, _ Context) []*detector.Span {
			for _, s := range spans {
				id := strings.ToLower(s.PatternID)
				if strings.Contains(id, "labeled") || strings.Contains(id, "explicit") {
					s.Confidence = detector.ClampConfidence(s.Confidence * 1.05)
				}
				if len(strings.Fields(s.Text)) >= 2 && s.Confidence >= 0.7 {
					s.Confidence = detector.ClampConfidence(s.Confidence * 1.02)
				}
			}
			return spans
		},
	}
}

// vectorDisambiguation marks every overlapping span pair as mutually
// ambiguous and applies a 2% penalty per overlap. A span overlapping N
// others is penalized N times; re-running the pipeline penalizes
// still-overlapping spans again. That is deliberate.
func newVectorDisambiguationStage() Stage {
	return Stage{
		Name:     "vectorDisambiguation",
		Priority: PriorityVectorDisambiguation,
		Enabled:  true,
		Transform: func(_ context.Context, spans []*detector.Span, _ string, _ Context) []*detector.Span {
			sorted := make([]*detector.Span, len(spans))
			copy(sorted, spans)
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].Start < sorted[j].Start
			})

			for i := 0; i < len(sorted); i++ {
				for j := i + 1; j < len(sorted) && sorted[j].Start < sorted[i].End; j++ {
					sorted[i].MarkAmbiguous(sorted[j].Category)
					sorted[j].MarkAmbiguous(sorted[i].Category)
					sorted[i].Confidence = detector.ClampConfidence(sorted[i].Confidence * 0.98)
					sorted[j].Confidence = detector.ClampConfidence(sorted[j].Confidence * 0.98)
				}
			}
			return spans
		},
	}
}

// rerankTimeout bounds the external model call. The pipeline owns no other
// timeout; document-level deadlines are the caller's responsibility.
const rerankTimeout = 2 * time.Second

// mlConfidenceRanking delegates borderline spans to the external re-ranker.
// An absent or erroring collaborator is an ordinary pass-through.
func newMLConfidenceRankingStage(reranker Reranker, band BorderlineBand) Stage {
	return Stage{
		Name:     "mlConfidenceRanking",
		Priority: PriorityMLConfidenceRanking,
		Enabled:  true,
		Transform: func(ctx context.Context, spans []*detector.Span, text string, _ Context) []*detector.Span {
			if reranker == nil {
				return spans
			}

			var borderline []*detector.Span
			for _, s := range spans {
				if s.Confidence >= band.Low && s.Confidence < band.High {
					borderline = append(borderline, s)
				}
			}
			if len(borderline) == 0 {
				return spans
			}

			rctx, cancel := context.WithTimeout(ctx, rerankTimeout)
			defer cancel()

			reranked, err := reranker.Rerank(rctx, borderline, text)
			if err != nil || len(reranked) != len(borderline) {
				return spans
			}
			for i, s := range borderline {
				// The collaborator may move confidence only; a span whose
				// identity changed is ignored.
				if reranked[i].Start != s.Start || reranked[i].End != s.End || reranked[i].Category != s.Category {
					continue
				}
				s.Confidence = detector.ClampConfidence(reranked[i].Confidence)
			}
			return spans
		},
	}
}

// DefaultExclusivePairs returns the category pairs treated as mutually
// exclusive readings of the same text.
func DefaultExclusivePairs() [][2]string {
	return [][2]string{
		{"SSN", "PHONE"},
		{"NPI", "PHONE"},
	}
}

// crossTypeReasoning resolves same-offset spans from mutually exclusive
// categories in favor of the higher-confidence reading, then penalizes
// later spans whose text was first seen under a different category. A span
// matching multiple exclusive pairs compounds penalties; that mirrors the
// trained behavior and is intentionally not guarded.
func newCrossTypeReasoningStage(pairs [][2]string) Stage {
	return Stage{
		Name:     "crossTypeReasoning",
		Priority: PriorityCrossTypeReasoning,
		Enabled:  true,
		Transform: func(_ context.Context, spans []*detector.Span, _ string, _ Context) []*detector.Span {
			for _, pair := range pairs {
				for i := 0; i < len(spans); i++ {
					for j := i + 1; j < len(spans); j++ {
						a, b := spans[i], spans[j]
						if !a.SameOffsets(b) {
							continue
						}
						if !(a.Category == pair[0] && b.Category == pair[1]) &&
							!(a.Category == pair[1] && b.Category == pair[0]) {
							continue
						}
						// Equal confidence favors the first operand.
						hi, lo := a, b
						if b.Confidence > a.Confidence {
							hi, lo = b, a
						}
						hi.Confidence = detector.ClampConfidence(hi.Confidence * 1.1)
						lo.Confidence = detector.ClampConfidence(lo.Confidence * 0.7)
					}
				}
			}

			firstSeen := make(map[string]*detector.Span)
			for _, s := range spans {
				key := strings.ToLower(s.Text)
				prior, ok := firstSeen[key]
				if !ok {
					firstSeen[key] = s
					continue
				}
				// Same occurrence under two categories is the exclusion
				// case above, not a cross-document inconsistency.
				if prior.Category != s.Category && !prior.SameOffsets(s) {
					s.Confidence = detector.ClampConfidence(s.Confidence * 0.95)
				}
			}
			return spans
		},
	}
}

var clinicalKeywords = []string{
	"patient", "diagnosis", "medical record", "hospital", "physician",
	"treatment", "prescribed", "admission", "discharge", "clinic",
}

// contextualConfidence applies a small document-level boost when the text
// reads clinical. Disabled by default; it raised false positives on mixed
// corpora.
func newContextualConfidenceStage() Stage {
	return Stage{
		Name:     "contextualConfidence",
		Priority: PriorityContextualConfidence,
		Enabled:  false,
		Transform: func(_ context.Context, spans []*detector.Span, text string, _ Context) []*detector.Span {
			lower := strings.ToLower(text)
			clinical := false
			for _, kw := range clinicalKeywords {
				if strings.Contains(lower, kw) {
					clinical = true
					break
				}
			}
			if !clinical {
				return spans
			}
			for _, s := range spans {
				s.Confidence = detector.ClampConfidence(s.Confidence * 1.03)
			}
			return spans
		},
	}
}

// newCalibrationStage sharpens scores with a fixed-steepness logistic
// centered at 0.5. Placeholder for a fitted calibrator; the curve must stay
// exactly 1/(1+exp(-10*(c-0.5))).
func newCalibrationStage() Stage {
	return Stage{
		Name:     "calibration",
		Priority: PriorityCalibration,
		Enabled:  true,
		Transform: func(_ context.Context, spans []*detector.Span, _ string, _ Context) []*detector.Span {
			for _, s := range spans {
				s.Confidence = detector.ClampConfidence(1.0 / (1.0 + math.Exp(-10.0*(s.Confidence-0.5))))
			}
			return spans
		},
	}
}
