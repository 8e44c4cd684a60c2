// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts the text layer of PDF documents, page by page.
type PDFExtractor struct{}

func (PDFExtractor) Extensions() []string { return []string{"pdf"} }

func (PDFExtractor) Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}
