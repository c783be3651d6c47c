// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline refines candidate span confidence through an ordered
// sequence of independently toggleable stages.
package pipeline

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/DocHatty/vulpes-celare/internal/detector"
	"github.com/DocHatty/vulpes-celare/internal/observability"
)

// Context is the opaque redaction context handed through to stages that
// need document-level metadata. The pipeline never inspects it.
type Context map[string]any

// Transform is a stage's span transformation. Stages mutate spans in place
// and return the (possibly re-sliced) span list for the next stage.
type Transform func(ctx context.Context, spans []*detector.Span, text string, rctx Context) []*detector.Span

// Stage is one pipeline step. Priority determines execution order, lowest
// first; ties keep registration order.
type Stage struct {
	Name      string
	Priority  int
	Enabled   bool
	Transform Transform
}

// StageOverride adjusts a default stage at construction.
type StageOverride struct {
	Enabled  *bool
	Priority *int
}

// StageReport records one stage of the last run. Disabled stages appear
// with Skipped set; faulted stages appear with Faulted set and zero impact.
type StageReport struct {
	Name         string
	Priority     int
	Skipped      bool
	Faulted      bool
	InputCount   int
	OutputCount  int
	ChangedCount int
	AvgDelta     float64
	Duration     time.Duration
}

// Summary describes the last Execute call.
type Summary struct {
	Stages       []StageReport
	TotalChanged int
	Duration     time.Duration
	ExecutedAt   time.Time
}

// Options configures pipeline construction.
type Options struct {
	// Reranker is the optional external ML collaborator for the
	// mlConfidenceRanking stage. Nil means identity pass-through.
	Reranker Reranker

	// Band restricts re-ranking to uncertain spans. Zero value uses
	// DefaultBand.
	Band BorderlineBand

	// ExclusivePairs configures the mutually-exclusive category pairs for
	// crossTypeReasoning. Nil uses DefaultExclusivePairs.
	ExclusivePairs [][2]string

	// Overrides adjusts default stages by name.
	Overrides map[string]StageOverride

	Observer *observability.StandardObserver
}

type stageRecord struct {
	Stage
	seq int
}

// Pipeline executes stages strictly sequentially in priority order. Safe
// for concurrent Execute calls: span data is caller-owned and the summary
// is guarded.
type Pipeline struct {
	observer *observability.StandardObserver

	mu          sync.Mutex
	stages      []*stageRecord
	nextSeq     int
	lastSummary *Summary
}

// New builds a pipeline with the default stage set, applying any overrides.
func New(opts Options) *Pipeline {
	band := opts.Band
	if band == (BorderlineBand{}) {
		band = DefaultBand()
	}
	pairs := opts.ExclusivePairs
	if pairs == nil {
		pairs = DefaultExclusivePairs()
	}

	p := &Pipeline{observer: opts.Observer}
	for _, stage := range defaultStages(opts.Reranker, band, pairs) {
		if ov, ok := opts.Overrides[stage.Name]; ok {
			if ov.Enabled != nil {
				stage.Enabled = *ov.Enabled
			}
			if ov.Priority != nil {
				stage.Priority = *ov.Priority
			}
		}
		p.registerLocked(stage)
	}
	return p
}

// RegisterStage inserts a stage and re-sorts the execution order.
func (p *Pipeline) RegisterStage(stage Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registerLocked(stage)
}

func (p *Pipeline) registerLocked(stage Stage) {
	p.stages = append(p.stages, &stageRecord{Stage: stage, seq: p.nextSeq})
	p.nextSeq++
	sort.SliceStable(p.stages, func(i, j int) bool {
		if p.stages[i].Priority != p.stages[j].Priority {
			return p.stages[i].Priority < p.stages[j].Priority
		}
		return p.stages[i].seq < p.stages[j].seq
	})
}

// SetStageEnabled toggles a stage by name, reporting whether it was found.
func (p *Pipeline) SetStageEnabled(name string, enabled bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, st := range p.stages {
		if st.Name == name {
			st.Enabled = enabled
			return true
		}
	}
	return false
}

// StageNames returns the configured stages in execution order.
func (p *Pipeline) StageNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name
	}
	return names
}

// Execute runs all stages over spans in priority order. A faulting stage is
// recorded as zero-impact and the pre-stage span list flows onward. The run
// summary is retrievable via LastSummary.
func (p *Pipeline) Execute(ctx context.Context, spans []*detector.Span, text string, rctx Context) []*detector.Span {
	p.mu.Lock()
	stages := make([]*stageRecord, len(p.stages))
	copy(stages, p.stages)
	p.mu.Unlock()

	var finish func(bool, map[string]interface{})
	if p.observer != nil {
		finish = p.observer.StartTiming("confidence_pipeline", "execute")
	}

	summary := &Summary{ExecutedAt: time.Now()}
	start := time.Now()
	current := spans

	for _, st := range stages {
		report := StageReport{
			Name:       st.Name,
			Priority:   st.Priority,
			InputCount: len(current),
		}

		if !st.Enabled {
			report.Skipped = true
			report.OutputCount = len(current)
			summary.Stages = append(summary.Stages, report)
			continue
		}

		before := make(map[*detector.Span]float64, len(current))
		for _, s := range current {
			before[s] = s.Confidence
		}

		stageStart := time.Now()
		out, ok := runStage(ctx, st, current, text, rctx)
		report.Duration = time.Since(stageStart)

		if !ok {
			report.Faulted = true
			out = current
		} else {
			var sum float64
			compared := 0
			for _, s := range out {
				prev, existed := before[s]
				if !existed {
					continue
				}
				delta := math.Abs(s.Confidence - prev)
				sum += delta
				compared++
				if delta > 0.001 {
					report.ChangedCount++
				}
			}
			if compared > 0 {
				report.AvgDelta = sum / float64(compared)
			}
		}

		report.OutputCount = len(out)
		summary.Stages = append(summary.Stages, report)
		summary.TotalChanged += report.ChangedCount
		current = out
	}

	summary.Duration = time.Since(start)

	p.mu.Lock()
	p.lastSummary = summary
	p.mu.Unlock()

	if finish != nil {
		finish(true, map[string]interface{}{
			"stage_count":   len(stages),
			"span_count":    len(current),
			"total_changed": summary.TotalChanged,
		})
	}
	return current
}

// runStage isolates stage faults: a panic yields ok=false and the caller
// substitutes the unmodified input.
func runStage(ctx context.Context, st *stageRecord, spans []*detector.Span, text string, rctx Context) (out []*detector.Span, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()
	return st.Transform(ctx, spans, text, rctx), true
}

// LastSummary returns the summary of the most recent Execute call, nil
// before the first run.
func (p *Pipeline) LastSummary() *Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSummary
}
