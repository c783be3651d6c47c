// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"regexp"
	"sync"
	"testing"

	"github.com/DocHatty/vulpes-celare/internal/detector"
	"github.com/DocHatty/vulpes-celare/internal/patterns"
)

func TestScan_EmptyText(t *testing.T) {
	s := New(patterns.DefaultCorpus(), Options{})

	result := s.Scan("")
	if len(result.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(result.Matches))
	}
	if result.Stats.Elapsed < 0 {
		t.Error("elapsed time must be non-negative")
	}
	if result.Stats.PatternsChecked != len(patterns.DefaultCorpus()) {
		t.Errorf("expected %d patterns checked, got %d",
			len(patterns.DefaultCorpus()), result.Stats.PatternsChecked)
	}
}

func TestScan_SSN(t *testing.T) {
	s := New(patterns.DefaultCorpus(), Options{})

	result := s.Scan("SSN: 123-45-6789")

	var dashed, labeled *detector.Span
	for _, m := range result.Matches {
		switch m.PatternID {
		case "ssn-dashed":
			dashed = m
		case "ssn-labeled":
			labeled = m
		}
	}

	if dashed == nil {
		t.Fatal("expected ssn-dashed match")
	}
	if dashed.Text != "123-45-6789" || dashed.Start != 5 || dashed.End != 16 {
		t.Errorf("unexpected dashed span: %q [%d:%d)", dashed.Text, dashed.Start, dashed.End)
	}
	if dashed.Confidence != 0.92 {
		t.Errorf("expected base confidence 0.92, got %v", dashed.Confidence)
	}

	if labeled == nil {
		t.Fatal("expected ssn-labeled match")
	}
	if labeled.Start != 0 {
		t.Errorf("labeled span should start at 0, got %d", labeled.Start)
	}
	if labeled.Category != patterns.CategorySSN {
		t.Errorf("unexpected category %q", labeled.Category)
	}
}

func TestScan_ValidatorRejectsMatch(t *testing.T) {
	s := New(patterns.DefaultCorpus(), Options{})

	result := s.Scan("server at 999.999.999.999 and 192.168.1.1")

	var ips []*detector.Span
	for _, m := range result.Matches {
		if m.Category == patterns.CategoryIP {
			ips = append(ips, m)
		}
	}
	if len(ips) != 1 {
		t.Fatalf("expected 1 valid IP, got %d", len(ips))
	}
	if ips[0].Text != "192.168.1.1" {
		t.Errorf("unexpected IP text %q", ips[0].Text)
	}
}

func TestScan_PanickingValidatorDropsOnlyThatPattern(t *testing.T) {
	corpus := []detector.PatternDef{
		{
			ID:         "panicky",
			Category:   "TEST",
			Regex:      regexp.MustCompile(`\d+`),
			Confidence: 0.9,
			Validator:  func(string, []string) bool { panic("validator bug") },
		},
		{
			ID:         "letters",
			Category:   "TEST",
			Regex:      regexp.MustCompile(`[a-z]+`),
			Confidence: 0.8,
		},
	}
	s := New(corpus, Options{})

	result := s.Scan("abc 123")
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if result.Matches[0].PatternID != "letters" {
		t.Errorf("expected letters match, got %q", result.Matches[0].PatternID)
	}
}

func TestScan_RuneOffsets(t *testing.T) {
	s := New(patterns.DefaultCorpus(), Options{})

	// Multi-byte runes before the match shift byte offsets but not rune
	// offsets; spans must report the latter.
	result := s.Scan("café visit — SSN 123-45-6789")

	var labeled *detector.Span
	for _, m := range result.Matches {
		if m.PatternID == "ssn-labeled" {
			labeled = m
		}
	}
	if labeled == nil {
		t.Fatal("expected ssn-labeled match")
	}
	if labeled.Start != 13 {
		t.Errorf("expected rune offset 13, got %d", labeled.Start)
	}
	runes := []rune("café visit — SSN 123-45-6789")
	if string(runes[labeled.Start:labeled.End]) != labeled.Text {
		t.Errorf("span text does not round-trip through rune offsets")
	}
}

func TestScanForTypes(t *testing.T) {
	s := New(patterns.DefaultCorpus(), Options{})
	text := "SSN: 123-45-6789 phone 555-123-4567"

	result := s.ScanForTypes(text, []string{patterns.CategorySSN})
	if len(result.Matches) == 0 {
		t.Fatal("expected SSN matches")
	}
	for _, m := range result.Matches {
		if m.Category != patterns.CategorySSN {
			t.Errorf("unexpected category %q in filtered scan", m.Category)
		}
	}
	if result.Stats.PatternsChecked >= len(patterns.DefaultCorpus()) {
		t.Error("filtered scan should check fewer patterns than the full corpus")
	}
}

func TestScan_BackendEquivalence(t *testing.T) {
	corpus := patterns.DefaultCorpus()
	ref := New(corpus, Options{})
	par := New(corpus, Options{Accelerated: true, Workers: 4})

	if par.BackendName() != "parallel" {
		t.Fatalf("expected parallel backend, got %q", par.BackendName())
	}

	text := `Patient record MRN: 44857291
SSN: 123-45-6789 or 987 65 4321, masked ***-**-1234
Contact: phone (555) 123-4567, fax: 555.867.5309
Email john.doe@example.org, site https://example.org/chart?id=9
Visit 2024-03-15, follow-up 3/20/2024, aged 45 years old
NPI 1234567893, zip: 90210, card 4532-0151-1283-0366 at 10.0.0.1`

	a := ref.Scan(text).Matches
	b := par.Scan(text).Matches

	if len(a) != len(b) {
		t.Fatalf("backend mismatch: reference %d spans, parallel %d spans", len(a), len(b))
	}
	for i := range a {
		if a[i].PatternID != b[i].PatternID || a[i].Start != b[i].Start ||
			a[i].End != b[i].End || a[i].Text != b[i].Text ||
			a[i].Confidence != b[i].Confidence || a[i].Category != b[i].Category {
			t.Errorf("span %d differs:\n  reference %+v\n  parallel  %+v", i, *a[i], *b[i])
		}
	}
}

func TestScan_CumulativeTotals(t *testing.T) {
	corpus := patterns.DefaultCorpus()
	s := New(corpus, Options{})

	for i := 0; i < 3; i++ {
		s.Scan("SSN: 123-45-6789")
	}

	totals := s.Totals()
	if totals.Scans != 3 {
		t.Errorf("expected 3 scans, got %d", totals.Scans)
	}
	if totals.PatternsChecked != int64(3*len(corpus)) {
		t.Errorf("expected %d patterns checked, got %d", 3*len(corpus), totals.PatternsChecked)
	}
	if totals.MatchesFound < 3 {
		t.Errorf("expected at least 3 matches total, got %d", totals.MatchesFound)
	}
}

func TestScan_ConcurrentUse(t *testing.T) {
	s := New(patterns.DefaultCorpus(), Options{Accelerated: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				result := s.Scan("SSN: 123-45-6789 email a@b.co")
				if len(result.Matches) == 0 {
					t.Error("expected matches under concurrency")
				}
			}
		}()
	}
	wg.Wait()

	if got := s.Totals().Scans; got != 40 {
		t.Errorf("expected 40 scans recorded, got %d", got)
	}
}

func TestNewParallelBackend_WorkerBounds(t *testing.T) {
	if _, err := newParallelBackend(-1); err == nil {
		t.Error("expected error for negative worker count")
	}
	b, err := newParallelBackend(64)
	if err != nil {
		t.Fatal(err)
	}
	if b.workers != maxWorkers {
		t.Errorf("expected worker cap %d, got %d", maxWorkers, b.workers)
	}
	if _, err := newParallelBackend(0); err != nil {
		t.Errorf("zero workers should default to NumCPU, got error %v", err)
	}
}
