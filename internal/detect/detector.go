// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package detect identifies the language of a text sample. Detection is a
// hint, not exhaustive classification: only a fixed prefix of the input is
// examined and the reported confidence is rounded for display stability.
package detect

import (
	"context"
	"math"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// MaxPrefixChars is the number of characters examined by the detector.
const MaxPrefixChars = 512

// Result is one detection outcome. Label is the raw classifier label, which
// may or may not map onto the supported language set.
type Result struct {
	Label      string
	Code       lang.Code
	Confidence float64
}

// Detector classifies the language of a text sample.
type Detector interface {
	Detect(ctx context.Context, text string) (Result, error)
}

// Prefix truncates text to the detection window, counting characters rather
// than bytes so multi-byte scripts keep a full-width window.
func Prefix(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxPrefixChars {
		return text
	}
	return string(runes[:MaxPrefixChars])
}

// RoundConfidence rounds a score to 4 decimal digits.
func RoundConfidence(score float64) float64 {
	return math.Round(score*10000) / 10000
}
