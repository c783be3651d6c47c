// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package reranker provides the optional ONNX-backed implementation of the
// pipeline's re-ranking collaborator. When no model is configured the
// pipeline runs without it; this package is never required.
package reranker

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

// featureDim is the fixed width of the per-span feature vector the model
// was trained on.
const featureDim = 8

// ortEnv manages global ONNX Runtime initialization (process-wide).
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXReranker scores borderline spans with a small feed-forward model:
// featurize → ONNX inference → calibrated score per span.
type ONNXReranker struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// New loads the ONNX model and creates an inference session. The ONNX
// Runtime shared library is expected alongside the model file.
func New(modelPath string) (*ONNXReranker, error) {
	libPath := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("reranker: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reranker: failed to read model info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("reranker: expected 1 input and 1 output tensor, got %d/%d", len(inputs), len(outputs))
	}
	dims := inputs[0].Dimensions
	if len(dims) != 2 || dims[1] != featureDim {
		return nil, fmt.Errorf("reranker: expected input shape [batch, %d], got %v", featureDim, dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("reranker: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(2)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("reranker: failed to create session: %w", err)
	}

	return &ONNXReranker{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
	}, nil
}

// Rerank scores each span and returns adjusted copies. Span identity and
// offsets are never modified; only confidence moves.
func (r *ONNXReranker) Rerank(ctx context.Context, spans []*detector.Span, text string) ([]*detector.Span, error) {
	if len(spans) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := int64(len(spans))
	features := make([]float32, 0, batch*featureDim)
	for _, s := range spans {
		features = append(features, featurize(s, text)...)
	}

	inShape := ort.NewShape(batch, featureDim)
	tIn, err := ort.NewTensor(inShape, features)
	if err != nil {
		return nil, fmt.Errorf("reranker: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	outShape := ort.NewShape(batch, 1)
	tOut, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("reranker: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := r.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("reranker: inference failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := tOut.GetData()
	out := make([]*detector.Span, len(spans))
	for i, s := range spans {
		adjusted := *s
		adjusted.Confidence = detector.ClampConfidence(float64(scores[i]))
		out[i] = &adjusted
	}
	return out, nil
}

// featurize builds the model's fixed feature vector for one span.
func featurize(s *detector.Span, text string) []float32 {
	digits, uppers := 0, 0
	for _, c := range s.Text {
		if unicode.IsDigit(c) {
			digits++
		}
		if unicode.IsUpper(c) {
			uppers++
		}
	}
	n := len([]rune(s.Text))
	if n == 0 {
		n = 1
	}

	labeled := float32(0)
	id := strings.ToLower(s.PatternID)
	if strings.Contains(id, "labeled") || strings.Contains(id, "explicit") {
		labeled = 1
	}

	docLen := len([]rune(text))
	position := float32(0)
	if docLen > 0 {
		position = float32(s.Start) / float32(docLen)
	}

	return []float32{
		float32(s.Confidence),
		float32(n) / 64.0,
		float32(len(strings.Fields(s.Text))),
		float32(digits) / float32(n),
		float32(uppers) / float32(n),
		labeled,
		float32(len(s.AmbiguousWith)),
		position,
	}
}

// Close releases the ONNX session resources.
func (r *ONNXReranker) Close() error {
	return r.session.Destroy()
}
