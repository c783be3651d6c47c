// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/DocHatty/vulpes-celare/internal/config"
	"github.com/DocHatty/vulpes-celare/internal/detector"
	"github.com/DocHatty/vulpes-celare/internal/fuzzy"
	"github.com/DocHatty/vulpes-celare/internal/loader"
	"github.com/DocHatty/vulpes-celare/internal/observability"
	"github.com/DocHatty/vulpes-celare/internal/patterns"
	"github.com/DocHatty/vulpes-celare/internal/pipeline"
	"github.com/DocHatty/vulpes-celare/internal/reranker"
	"github.com/DocHatty/vulpes-celare/internal/scanner"
	"github.com/DocHatty/vulpes-celare/internal/version"
)

type cliFlags struct {
	file        string
	configFile  string
	format      string
	debug       bool
	noColor     bool
	accelerated bool
	firstNames  string
	surnames    string
	locations   string
	patternFile string
	showVersion bool
}

func main() {
	flags := parseFlags()
	if flags.showVersion {
		fmt.Println(version.Info())
		return
	}
	if flags.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg := loadConfiguration(flags.configFile)
	if flags.accelerated {
		cfg.Scanner.Accelerated = true
		cfg.Fuzzy.Accelerated = true
	}

	if flags.noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	level := observability.ObservabilityMetrics
	if flags.debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)

	text, err := loader.LoadDocument(flags.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	spans, summary, err := run(cfg, flags, observer, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch flags.format {
	case "json":
		printJSON(spans)
	default:
		printText(spans)
	}

	if flags.debug && summary != nil {
		printSummary(summary)
	}
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}
	flag.StringVar(&flags.file, "file", "", "Document to scan (.txt or .pdf)")
	flag.StringVar(&flags.configFile, "config", "", "Configuration file (YAML)")
	flag.StringVar(&flags.format, "format", "text", "Output format: text, json")
	flag.BoolVar(&flags.debug, "debug", false, "Enable debug output")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.accelerated, "accelerated", false, "Force accelerated backends")
	flag.StringVar(&flags.firstNames, "first-names", "", "First-name dictionary file")
	flag.StringVar(&flags.surnames, "surnames", "", "Surname dictionary file")
	flag.StringVar(&flags.locations, "locations", "", "Location dictionary file")
	flag.StringVar(&flags.patternFile, "patterns", "", "Additional pattern corpus (YAML)")
	flag.BoolVar(&flags.showVersion, "version", false, "Print version information and exit")
	flag.Parse()
	return flags
}

func loadConfiguration(configFile string) *config.Config {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using default configuration")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// run is the composition root: it builds the scanner, the fuzzy matchers,
// and the pipeline explicitly and wires them together for one document.
func run(cfg *config.Config, flags *cliFlags, observer *observability.StandardObserver, text string) ([]*detector.Span, *pipeline.Summary, error) {
	corpus := patterns.DefaultCorpus()
	if flags.patternFile != "" {
		extra, err := loader.LoadPatterns(flags.patternFile)
		if err != nil {
			return nil, nil, err
		}
		corpus = append(corpus, extra...)
	}

	sc := scanner.New(corpus, scanner.Options{
		Accelerated: cfg.Scanner.Accelerated,
		Workers:     cfg.Scanner.Workers,
		Observer:    observer,
	})

	var result *scanner.Result
	if categories := cfg.Categories(); categories != nil {
		result = sc.ScanForTypes(text, categories)
	} else {
		result = sc.Scan(text)
	}
	spans := result.Matches

	fuzzyCfg := fuzzy.Config{
		MaxEditDistance: cfg.Fuzzy.MaxEditDistance,
		EnablePhonetic:  cfg.Fuzzy.EnablePhonetic,
		MinTermLength:   cfg.Fuzzy.MinTermLength,
		CacheSize:       cfg.Fuzzy.CacheSize,
	}
	dictionaries := []struct {
		path      string
		patternID string
	}{
		{firstPath(flags.firstNames, cfg.Dictionaries.FirstNames), "fuzzy-first-name"},
		{firstPath(flags.surnames, cfg.Dictionaries.Surnames), "fuzzy-surname"},
		{firstPath(flags.locations, cfg.Dictionaries.Locations), "fuzzy-location"},
	}
	for _, dict := range dictionaries {
		if dict.path == "" {
			continue
		}
		terms, err := loader.LoadDictionary(dict.path)
		if err != nil {
			return nil, nil, err
		}
		backend := fuzzy.NewBackend(terms, fuzzyCfg, cfg.Fuzzy.Accelerated)
		category := patterns.CategoryName
		if dict.patternID == "fuzzy-location" {
			category = "LOCATION"
		}
		spans = append(spans, fuzzy.ScanTokens(backend, text, category, dict.patternID, 0.75)...)
	}

	var rr pipeline.Reranker
	if cfg.Reranker.ModelPath != "" {
		onnx, err := reranker.New(cfg.Reranker.ModelPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: re-ranker unavailable: %v\n", err)
		} else {
			defer onnx.Close()
			rr = onnx
		}
	}

	overrides := make(map[string]pipeline.StageOverride, len(cfg.Pipeline.Stages))
	for name, sc := range cfg.Pipeline.Stages {
		overrides[name] = pipeline.StageOverride{Enabled: sc.Enabled, Priority: sc.Priority}
	}

	pipe := pipeline.New(pipeline.Options{
		Reranker:  rr,
		Band:      pipeline.BorderlineBand{Low: cfg.Pipeline.BorderlineLow, High: cfg.Pipeline.BorderlineHigh},
		Overrides: overrides,
		Observer:  observer,
	})

	spans = pipe.Execute(context.Background(), spans, text, pipeline.Context{"source": flags.file})

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans, pipe.LastSummary(), nil
}

func firstPath(paths ...string) string {
	for _, p := range paths {
		if p != "" {
			return p
		}
	}
	return ""
}

func printText(spans []*detector.Span) {
	if len(spans) == 0 {
		fmt.Println("No PHI detected")
		return
	}

	high := color.New(color.FgRed, color.Bold)
	medium := color.New(color.FgYellow)
	low := color.New(color.FgGreen)

	for _, s := range spans {
		level := low
		label := "LOW"
		switch {
		case s.Confidence >= 0.8:
			level, label = high, "HIGH"
		case s.Confidence >= 0.5:
			level, label = medium, "MEDIUM"
		}
		level.Printf("[%s] %-12s %.3f  [%d:%d)  %s\n",
			label, s.Category, s.Confidence, s.Start, s.End, s.Text)
	}
	fmt.Printf("\n%d findings\n", len(spans))
}

type jsonSpan struct {
	Category      string   `json:"category"`
	Text          string   `json:"text"`
	Start         int      `json:"start"`
	End           int      `json:"end"`
	Confidence    float64  `json:"confidence"`
	PatternID     string   `json:"pattern_id"`
	AmbiguousWith []string `json:"ambiguous_with,omitempty"`
}

func printJSON(spans []*detector.Span) {
	out := make([]jsonSpan, len(spans))
	for i, s := range spans {
		js := jsonSpan{
			Category:   s.Category,
			Text:       s.Text,
			Start:      s.Start,
			End:        s.End,
			Confidence: s.Confidence,
			PatternID:  s.PatternID,
		}
		for cat := range s.AmbiguousWith {
			js.AmbiguousWith = append(js.AmbiguousWith, cat)
		}
		sort.Strings(js.AmbiguousWith)
		out[i] = js
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

func printSummary(summary *pipeline.Summary) {
	fmt.Fprintln(os.Stderr, "\nPipeline stages:")
	for _, st := range summary.Stages {
		status := "ran"
		if st.Skipped {
			status = "skipped"
		} else if st.Faulted {
			status = "faulted"
		}
		fmt.Fprintf(os.Stderr, "  %-22s p%-3d %-8s in=%-4d out=%-4d changed=%-4d avgΔ=%.4f %v\n",
			st.Name, st.Priority, status, st.InputCount, st.OutputCount,
			st.ChangedCount, st.AvgDelta, st.Duration)
	}
	fmt.Fprintf(os.Stderr, "Total changed: %d in %v\n", summary.TotalChanged, summary.Duration)
}
