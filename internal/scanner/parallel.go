// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

const maxWorkers = 16

// parallelBackend fans the pattern corpus out across a bounded worker pool
// and merges per-pattern results back in corpus order, so its output is
// byte-for-byte identical to the reference backend.
type parallelBackend struct {
	workers int
}

func newParallelBackend(workers int) (*parallelBackend, error) {
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		return nil, fmt.Errorf("parallel backend: invalid worker count %d", workers)
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return &parallelBackend{workers: workers}, nil
}

func (b *parallelBackend) Name() string { return "parallel" }

func (b *parallelBackend) Scan(text string, patterns []detector.PatternDef) []*detector.Span {
	if text == "" || len(patterns) == 0 {
		return nil
	}

	idx := detector.NewRuneIndex(text)
	results := make([][]*detector.Span, len(patterns))

	jobs := make(chan int, len(patterns))
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = scanPattern(text, idx, &patterns[i])
			}
		}()
	}
	for i := range patterns {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var spans []*detector.Span
	for _, r := range results {
		spans = append(spans, r...)
	}
	return spans
}
