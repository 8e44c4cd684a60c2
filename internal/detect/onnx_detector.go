// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package detect

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// classifierSeqLen is the fixed input length fed to the classifier.
const classifierSeqLen = 128

// ONNXDetector runs a local language-identification classifier through the
// ONNX runtime. It keeps one session for the process lifetime and serializes
// inference behind a lock.
type ONNXDetector struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *classifierTokenizer
	labels    []string

	modelPath string
	vocabPath string

	enabled bool
	mu      sync.RWMutex
}

// ONNXConfig holds the model artifacts for a local detector.
type ONNXConfig struct {
	ModelPath         string
	VocabPath         string
	LabelsPath        string
	SharedLibraryPath string
}

// NewONNXDetector creates the detector and loads the model immediately.
func NewONNXDetector(cfg ONNXConfig) (*ONNXDetector, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load label file: %w", err)
	}

	tokenizer, err := newClassifierTokenizer(cfg.VocabPath, classifierSeqLen)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier model: %w", err)
	}

	log.Infof("loaded local language classifier (%d labels)", len(labels))
	return &ONNXDetector{
		session:   session,
		tokenizer: tokenizer,
		labels:    labels,
		modelPath: cfg.ModelPath,
		vocabPath: cfg.VocabPath,
		enabled:   true,
	}, nil
}

// Detect classifies the prefix of text against the label set.
func (d *ONNXDetector) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.enabled {
		return Result{}, fmt.Errorf("classifier is not initialized")
	}

	ids, mask := d.tokenizer.Encode(Prefix(text))
	logits, err := d.runInference(ids, mask)
	if err != nil {
		return Result{}, err
	}
	if len(logits) != len(d.labels) {
		return Result{}, fmt.Errorf("classifier emitted %d logits for %d labels", len(logits), len(d.labels))
	}

	probs := softmax(logits)
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	label := d.labels[best]
	return Result{
		Label:      label,
		Code:       lang.Code(strings.ToLower(label)),
		Confidence: RoundConfidence(float64(probs[best])),
	}, nil
}

// Close releases the ONNX session. The detector is unusable afterwards.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		return nil
	}
	d.enabled = false
	return d.session.Destroy()
}

func (d *ONNXDetector) runInference(ids, mask []int64) ([]float32, error) {
	seqLen := int64(len(ids))

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, seqLen), ids)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, seqLen), mask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, int64(len(d.labels))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	err = d.session.Run(
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor},
		[]ort.ArbitraryTensor{outputTensor},
	)
	if err != nil {
		return nil, fmt.Errorf("ONNX inference failed: %w", err)
	}

	logits := outputTensor.GetData()
	out := make([]float32, len(logits))
	copy(out, logits)
	return out, nil
}

func softmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float64
	exps := make([]float64, len(logits))
	for i, v := range logits {
		exps[i] = math.Exp(float64(v - maxLogit))
		sum += exps[i]
	}
	out := make([]float32, len(logits))
	for i := range exps {
		out[i] = float32(exps[i] / sum)
	}
	return out
}

// loadLabels reads the label file, one classifier label per line in logit
// order.
func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label != "" {
			labels = append(labels, label)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("label file %s is empty", path)
	}
	return labels, nil
}
