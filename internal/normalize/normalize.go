// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package normalize turns any supported input modality into plain text. It
// is the first pipeline stage: whatever enters the system leaves this
// package as a non-empty UTF-8 string or a classified fault.
package normalize

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/extract"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/ocr"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/speech"
)

// Modality names the kind of input a run starts from.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityDocument Modality = "document"
	ModalityImage    Modality = "image"
	ModalityAudio    Modality = "audio"
)

// Input is one upload, fully read from the client exactly once. Data is nil
// for the text modality.
type Input struct {
	Modality Modality
	Text     string
	Filename string
	Data     []byte
}

// Normalizer dispatches inputs to the extractor matching their modality.
type Normalizer struct {
	extractors  *extract.Registry
	recognizer  ocr.Recognizer
	transcriber speech.Transcriber
	stagingDir  string

	// defaultSource is the speech model used when the caller did not
	// declare a source language.
	defaultSource lang.Code
}

// New creates a normalizer. stagingDir receives short-lived copies of
// document uploads; it is created on demand.
func New(extractors *extract.Registry, recognizer ocr.Recognizer, transcriber speech.Transcriber, stagingDir string, defaultSource lang.Code) *Normalizer {
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	if defaultSource == "" {
		defaultSource = "fr"
	}
	return &Normalizer{
		extractors:    extractors,
		recognizer:    recognizer,
		transcriber:   transcriber,
		stagingDir:    stagingDir,
		defaultSource: defaultSource,
	}
}

// Normalize converts the input to text. source and target are the run's
// language codes; they steer OCR reader selection and transcription models.
// The returned text is never empty: inputs that reduce to whitespace fail
// with an empty-input fault.
func (n *Normalizer) Normalize(ctx context.Context, input Input, source, target lang.Code) (string, error) {
	var text string
	var err error

	switch input.Modality {
	case ModalityText:
		text = input.Text
	case ModalityDocument:
		text, err = n.extractDocument(input)
	case ModalityImage:
		if len(input.Data) == 0 {
			return "", fault.New(fault.KindEmptyInput, "image upload is empty")
		}
		text, err = n.recognizer.Recognize(ctx, input.Data, input.Filename, source, target)
	case ModalityAudio:
		if len(input.Data) == 0 {
			return "", fault.New(fault.KindEmptyInput, "audio upload is empty")
		}
		text, err = n.transcriber.Transcribe(ctx, input.Data, n.transcriptionLang(source))
	default:
		return "", fault.New(fault.KindUnsupportedFormat, "unknown input modality %q", input.Modality)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fault.New(fault.KindEmptyInput, "input produced no text")
	}
	return text, nil
}

// extractDocument stages the upload under a throwaway name and removes it
// whatever the extractor does.
func (n *Normalizer) extractDocument(input Input) (string, error) {
	if len(input.Data) == 0 {
		return "", fault.New(fault.KindEmptyInput, "document upload is empty")
	}
	ext := strings.TrimPrefix(filepath.Ext(input.Filename), ".")
	if ext == "" {
		return "", fault.New(fault.KindUnsupportedFormat, "document %q has no extension", input.Filename)
	}

	if err := os.MkdirAll(n.stagingDir, 0o700); err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to create staging directory")
	}
	staged := filepath.Join(n.stagingDir, uuid.New().String()+"."+ext)
	if err := os.WriteFile(staged, input.Data, 0o600); err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to stage document")
	}
	defer func() {
		if err := os.Remove(staged); err != nil {
			log.Warnf("failed to remove staged upload %s: %v", staged, err)
		}
	}()

	return n.extractors.Extract(staged, ext)
}

// transcriptionLang picks the speech model language. An unresolved source
// falls back to the configured default.
func (n *Normalizer) transcriptionLang(source lang.Code) lang.Code {
	if source == lang.Unknown || source == "" {
		return n.defaultSource
	}
	return source
}
