// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ocr recognizes text in images through a remote recognition
// backend. The backend exposes one recognizer per script family; selection
// is driven by the translation target so the recognizer matches the script
// the user expects to read.
package ocr

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// Recognizer extracts text from an image. An empty string with a nil error
// means the image genuinely contained no recognizable text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, filename string, source, target lang.Code) (string, error)
}

// HTTPRecognizer calls the remote OCR service.
type HTTPRecognizer struct {
	baseURL      string
	latinReader  string
	arabicReader string

	// selectBySource switches reader selection from the translation target
	// to the declared source language.
	selectBySource bool

	client *http.Client
}

// Config holds the recognizer profiles of the OCR backend.
type Config struct {
	BaseURL        string
	LatinReader    string
	ArabicReader   string
	SelectBySource bool
	Timeout        time.Duration
}

// NewHTTPRecognizer creates a recognizer against the given OCR service.
func NewHTTPRecognizer(cfg Config) *HTTPRecognizer {
	latin := cfg.LatinReader
	if latin == "" {
		latin = "latin"
	}
	arabic := cfg.ArabicReader
	if arabic == "" {
		arabic = "arabic"
	}
	return &HTTPRecognizer{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		latinReader:    latin,
		arabicReader:   arabic,
		selectBySource: cfg.SelectBySource,
		client:         &http.Client{Timeout: cfg.Timeout},
	}
}

// Recognize uploads the image and returns the recognized lines joined with
// newlines.
func (r *HTTPRecognizer) Recognize(ctx context.Context, image []byte, filename string, source, target lang.Code) (string, error) {
	reader := r.readerFor(source, target)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to build OCR request")
	}
	if _, err := part.Write(image); err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to build OCR request")
	}
	if err := mw.WriteField("reader", reader); err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to build OCR request")
	}
	if err := mw.Close(); err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to build OCR request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/recognize", &buf)
	if err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to create OCR request")
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "OCR request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to read OCR response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fault.New(fault.KindExtraction, "OCR backend returned status %d: %s", resp.StatusCode, string(body))
	}

	var lines []string
	gjson.GetBytes(body, "lines").ForEach(func(_, value gjson.Result) bool {
		lines = append(lines, value.String())
		return true
	})
	text := strings.Join(lines, "\n")

	log.Debugf("OCR reader %s recognized %d lines", reader, len(lines))
	return text, nil
}

// readerFor picks the recognizer profile. The Arabic-family reader is used
// when the selecting language belongs to the Arabic script family, the Latin
// reader otherwise. An unknown source falls back to the Latin reader.
func (r *HTTPRecognizer) readerFor(source, target lang.Code) string {
	selector := target
	if r.selectBySource {
		selector = source
		if selector == lang.Unknown || selector == "" {
			return r.latinReader
		}
	}
	if lang.ScriptFor(selector) == lang.ScriptArabic {
		return r.arabicReader
	}
	return r.latinReader
}
