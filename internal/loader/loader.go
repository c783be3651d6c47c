// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package loader brings external data into the engine: term dictionaries,
// document text, and pattern corpus overrides. The scanner and matcher only
// ever see in-memory data produced here.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

// LoadDictionary reads a newline-delimited term file. Terms are trimmed and
// NFC-normalized; blank lines and #-comments are skipped.
func LoadDictionary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer f.Close()

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, norm.NFC.String(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	return terms, nil
}

// LoadDocument returns the text content of a file. PDFs are run through
// text extraction; everything else is read as plain text.
func LoadDocument(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDFText(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return string(data), nil
}

// patternFile is the YAML shape of a pattern corpus override file.
type patternFile struct {
	Patterns []struct {
		ID         string  `yaml:"id"`
		Category   string  `yaml:"category"`
		Regex      string  `yaml:"regex"`
		Confidence float64 `yaml:"confidence"`
	} `yaml:"patterns"`
}

// LoadPatterns reads additional pattern definitions from a YAML file.
// Loaded patterns carry no validator predicate; checksum validation is only
// available to built-in patterns.
func LoadPatterns(path string) ([]detector.PatternDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file %s: %w", path, err)
	}

	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}

	var defs []detector.PatternDef
	for _, p := range pf.Patterns {
		if p.ID == "" || p.Category == "" || p.Regex == "" {
			return nil, fmt.Errorf("pattern file %s: id, category, and regex are required", path)
		}
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern file %s: pattern %s: %w", path, p.ID, err)
		}
		defs = append(defs, detector.PatternDef{
			ID:         p.ID,
			Category:   strings.ToUpper(p.Category),
			Regex:      re,
			Confidence: detector.ClampConfidence(p.Confidence),
		})
	}
	return defs, nil
}
