// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package export materializes translation records as downloadable documents.
// Formats are registered by name; rendering never mutates the record.
package export

import (
	"fmt"
	"strings"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// Artifact is one rendered export document.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Renderer materializes a record in one format.
type Renderer interface {
	Format() string
	Extension() string
	ContentType() string
	Render(rec record.TranslationRecord) ([]byte, error)
}

// Registry maps format names to renderers.
type Registry struct {
	byFormat map[string]Renderer
	order    []string
}

// NewRegistry builds a registry with the built-in formats.
func NewRegistry(fontPath string) *Registry {
	r := &Registry{byFormat: make(map[string]Renderer)}
	r.Register(TextRenderer{})
	r.Register(DocxRenderer{})
	r.Register(NewPDFRenderer(fontPath))
	return r
}

// Register adds a renderer. A renderer with a known format replaces the
// previous one.
func (r *Registry) Register(renderer Renderer) {
	format := strings.ToLower(renderer.Format())
	if _, exists := r.byFormat[format]; !exists {
		r.order = append(r.order, format)
	}
	r.byFormat[format] = renderer
}

// Formats returns the registered format names in registration order.
func (r *Registry) Formats() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Export renders a record in the named format.
func (r *Registry) Export(format string, rec record.TranslationRecord) (Artifact, error) {
	renderer, ok := r.byFormat[strings.ToLower(format)]
	if !ok {
		return Artifact{}, fault.New(fault.KindUnsupportedExportFormat, "unknown export format %q, supported: %s", format, strings.Join(r.order, ", "))
	}
	data, err := renderer.Render(rec)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Name:        fmt.Sprintf("translation-%s.%s", rec.ID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// sectionLabels returns the two section headers of every export document.
func sectionLabels(rec record.TranslationRecord) (string, string) {
	return fmt.Sprintf("Original (%s)", lang.Display(rec.SourceLang)),
		fmt.Sprintf("Translation (%s)", lang.Display(rec.TargetLang))
}
