// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package extract turns uploaded documents into plain text. Extractors are
// registered per file extension; unknown extensions are rejected before any
// file I/O happens.
package extract

import (
	"strings"
	"sync"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
)

// Extractor reads one document format into plain text.
type Extractor interface {
	// Extensions lists the lowercase file extensions (without dot) handled.
	Extensions() []string
	// Extract reads the staged file and returns its text content.
	Extract(path string) (string, error)
}

// Registry dispatches extraction by file extension.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Extractor
}

// NewRegistry creates a registry with the built-in txt, pdf and docx readers.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(TextExtractor{})
	r.Register(PDFExtractor{})
	r.Register(DocxExtractor{})
	return r
}

// Register adds an extractor for each of its extensions.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Supported reports whether the extension has a registered extractor.
func (r *Registry) Supported(ext string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byExt[normalizeExt(ext)]
	return ok
}

// Extract dispatches to the extractor registered for ext. Unknown extensions
// yield an unsupported-format fault; reader failures yield an extraction
// fault so corrupt uploads never crash the pipeline.
func (r *Registry) Extract(path, ext string) (string, error) {
	r.mu.RLock()
	e, ok := r.byExt[normalizeExt(ext)]
	r.mu.RUnlock()
	if !ok {
		return "", fault.New(fault.KindUnsupportedFormat, "no reader for .%s documents", normalizeExt(ext))
	}
	text, err := e.Extract(path)
	if err != nil {
		return "", fault.Wrap(fault.KindExtraction, err, "failed to read .%s document", normalizeExt(ext))
	}
	return text, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
