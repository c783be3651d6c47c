// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scanner runs a compiled pattern corpus over document text in one
// logical pass, producing raw candidate spans for the confidence pipeline.
package scanner

import (
	"sync/atomic"
	"time"

	"github.com/DocHatty/vulpes-celare/internal/detector"
	"github.com/DocHatty/vulpes-celare/internal/observability"
)

// Backend is the scanning strategy surface. Backends must produce identical
// spans (same order, offsets, confidence) for identical inputs; selection
// happens once at construction and a failing backend call falls back to the
// reference path for that call.
type Backend interface {
	Name() string
	Scan(text string, patterns []detector.PatternDef) []*detector.Span
}

// Stats describes a single scan call.
type Stats struct {
	PatternsChecked int
	MatchesFound    int
	Elapsed         time.Duration
}

// Result is the outcome of one scan call.
type Result struct {
	Matches []*detector.Span
	Stats   Stats
}

// TotalStats is a snapshot of cumulative counters across all calls. Under
// concurrent scans the fields are individually consistent but not guaranteed
// to be a coherent cross-field snapshot.
type TotalStats struct {
	Scans           int64
	PatternsChecked int64
	MatchesFound    int64
	Elapsed         time.Duration
}

// Options configures scanner construction.
type Options struct {
	// Accelerated selects the worker-pool backend. Construction failure
	// falls back silently to the reference backend.
	Accelerated bool

	// Workers bounds the accelerated backend's pool. Zero means NumCPU.
	Workers int

	Observer *observability.StandardObserver
}

// Scanner runs a fixed pattern corpus over input text. Safe for concurrent
// use: the corpus is read-only after construction and the cumulative
// counters are atomic.
type Scanner struct {
	patterns []detector.PatternDef
	backend  Backend
	observer *observability.StandardObserver

	totalScans    atomic.Int64
	totalPatterns atomic.Int64
	totalMatches  atomic.Int64
	totalElapsed  atomic.Int64 // nanoseconds
}

// New builds a scanner over the given corpus. Backend selection is resolved
// here, once, and never re-evaluated per call.
func New(patterns []detector.PatternDef, opts Options) *Scanner {
	var backend Backend = referenceBackend{}
	if opts.Accelerated {
		if b, err := newParallelBackend(opts.Workers); err == nil {
			backend = b
		}
	}

	return &Scanner{
		patterns: patterns,
		backend:  backend,
		observer: opts.Observer,
	}
}

// BackendName reports which backend the scanner resolved to.
func (s *Scanner) BackendName() string {
	return s.backend.Name()
}

// Scan runs the full corpus over text.
func (s *Scanner) Scan(text string) *Result {
	return s.scan(text, s.patterns)
}

// ScanForTypes restricts the corpus to the given categories, for targeted
// re-scans.
func (s *Scanner) ScanForTypes(text string, categories []string) *Result {
	enabled := make(map[string]bool, len(categories))
	for _, c := range categories {
		enabled[c] = true
	}

	var filtered []detector.PatternDef
	for _, p := range s.patterns {
		if enabled[p.Category] {
			filtered = append(filtered, p)
		}
	}
	return s.scan(text, filtered)
}

func (s *Scanner) scan(text string, patterns []detector.PatternDef) *Result {
	var finish func(bool, map[string]interface{})
	if s.observer != nil {
		finish = s.observer.StartTiming("pattern_scanner", "scan")
	}

	start := time.Now()
	matches := s.runBackend(text, patterns)
	elapsed := time.Since(start)

	s.totalScans.Add(1)
	s.totalPatterns.Add(int64(len(patterns)))
	s.totalMatches.Add(int64(len(matches)))
	s.totalElapsed.Add(int64(elapsed))

	if finish != nil {
		finish(true, map[string]interface{}{
			"match_count":      len(matches),
			"patterns_checked": len(patterns),
			"backend":          s.backend.Name(),
		})
	}

	return &Result{
		Matches: matches,
		Stats: Stats{
			PatternsChecked: len(patterns),
			MatchesFound:    len(matches),
			Elapsed:         elapsed,
		},
	}
}

// runBackend invokes the selected backend, substituting the reference path
// when the backend faults. Transparent to the caller.
func (s *Scanner) runBackend(text string, patterns []detector.PatternDef) []*detector.Span {
	if _, isRef := s.backend.(referenceBackend); isRef {
		return referenceBackend{}.Scan(text, patterns)
	}
	if spans, ok := s.tryBackend(text, patterns); ok {
		return spans
	}
	return referenceBackend{}.Scan(text, patterns)
}

func (s *Scanner) tryBackend(text string, patterns []detector.PatternDef) (spans []*detector.Span, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			spans, ok = nil, false
		}
	}()
	return s.backend.Scan(text, patterns), true
}

// Totals returns a snapshot of the cumulative counters.
func (s *Scanner) Totals() TotalStats {
	return TotalStats{
		Scans:           s.totalScans.Load(),
		PatternsChecked: s.totalPatterns.Load(),
		MatchesFound:    s.totalMatches.Load(),
		Elapsed:         time.Duration(s.totalElapsed.Load()),
	}
}

// referenceBackend is the single-threaded scanning implementation all other
// backends must agree with.
type referenceBackend struct{}

func (referenceBackend) Name() string { return "reference" }

func (referenceBackend) Scan(text string, patterns []detector.PatternDef) []*detector.Span {
	if text == "" {
		return nil
	}

	idx := detector.NewRuneIndex(text)
	var spans []*detector.Span
	for i := range patterns {
		spans = append(spans, scanPattern(text, idx, &patterns[i])...)
	}
	return spans
}

// scanPattern finds all matches of one pattern. A faulting validator drops
// only that match; the scan continues.
func scanPattern(text string, idx *detector.RuneIndex, p *detector.PatternDef) []*detector.Span {
	if p.Regex == nil {
		return nil
	}

	var spans []*detector.Span
	for _, loc := range p.Regex.FindAllStringSubmatchIndex(text, -1) {
		matchText := text[loc[0]:loc[1]]

		var groups []string
		for g := 1; g*2 < len(loc); g++ {
			if loc[g*2] < 0 {
				groups = append(groups, "")
			} else {
				groups = append(groups, text[loc[g*2]:loc[g*2+1]])
			}
		}

		if p.Validator != nil && !safeValidate(p.Validator, matchText, groups) {
			continue
		}

		spans = append(spans, &detector.Span{
			Category:   p.Category,
			Text:       matchText,
			Start:      idx.RuneOffset(loc[0]),
			End:        idx.RuneOffset(loc[1]),
			Confidence: detector.ClampConfidence(p.Confidence),
			PatternID:  p.ID,
			Groups:     groups,
		})
	}
	return spans
}

// safeValidate treats a panicking validator as a failed validation.
func safeValidate(v detector.ValidatorFunc, match string, groups []string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return v(match, groups)
}
