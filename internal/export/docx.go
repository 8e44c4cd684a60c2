// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package export

import (
	"bytes"

	"github.com/fumiama/go-docx"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// DocxRenderer writes a Word document with a heading per section.
type DocxRenderer struct{}

func (DocxRenderer) Format() string    { return "rich_document" }
func (DocxRenderer) Extension() string { return "docx" }
func (DocxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (DocxRenderer) Render(rec record.TranslationRecord) ([]byte, error) {
	original, translation := sectionLabels(rec)

	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText(original).Size("28").Bold()
	doc.AddParagraph().AddText(rec.OriginalText)
	doc.AddParagraph()
	doc.AddParagraph().AddText(translation).Size("28").Bold()
	doc.AddParagraph().AddText(rec.TranslatedText)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fault.Wrap(fault.KindBackend, err, "failed to write document")
	}
	return buf.Bytes(), nil
}
