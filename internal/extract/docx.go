// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package extract

import (
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DocxExtractor joins the paragraphs of a Word document with newlines.
type DocxExtractor struct{}

func (DocxExtractor) Extensions() []string { return []string{"docx"} }

func (DocxExtractor) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", err
	}

	var parts []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			parts = append(parts, p.String())
		}
	}
	return strings.Join(parts, "\n"), nil
}
