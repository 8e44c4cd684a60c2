// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package export

import (
	"bytes"
	"os"
	"unicode"

	"github.com/go-pdf/fpdf"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// PDFRenderer writes a paginated document. Non-Latin text needs the bundled
// Unicode font; without it only Latin content can be rendered with the core
// PDF fonts.
type PDFRenderer struct {
	fontPath string
}

// NewPDFRenderer creates a renderer using the Unicode font at fontPath.
func NewPDFRenderer(fontPath string) PDFRenderer {
	return PDFRenderer{fontPath: fontPath}
}

func (PDFRenderer) Format() string      { return "paginated_document" }
func (PDFRenderer) Extension() string   { return "pdf" }
func (PDFRenderer) ContentType() string { return "application/pdf" }

func (r PDFRenderer) Render(rec record.TranslationRecord) ([]byte, error) {
	original, translation := sectionLabels(rec)
	body := rec.OriginalText + rec.TranslatedText

	pdf := fpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	if r.fontAvailable() {
		pdf.AddUTF8Font("unicode", "", r.fontPath)
		pdf.AddUTF8Font("unicode", "B", r.fontPath)
		family = "unicode"
	} else if !isLatinOnly(body) {
		return nil, fault.New(fault.KindMissingFontResource, "unicode font %s is missing and the record contains non-Latin text", r.fontPath)
	} else {
		log.Warnf("unicode font %s not found, falling back to core fonts", r.fontPath)
	}

	pdf.AddPage()
	writeSection := func(title, text string) {
		pdf.SetFont(family, "B", 14)
		pdf.MultiCell(0, 8, title, "", "L", false)
		pdf.Ln(2)
		pdf.SetFont(family, "", 12)
		pdf.MultiCell(0, 6, text, "", "L", false)
		pdf.Ln(6)
	}
	writeSection(original, rec.OriginalText)
	writeSection(translation, rec.TranslatedText)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fault.Wrap(fault.KindBackend, err, "failed to write PDF")
	}
	return buf.Bytes(), nil
}

func (r PDFRenderer) fontAvailable() bool {
	if r.fontPath == "" {
		return false
	}
	info, err := os.Stat(r.fontPath)
	return err == nil && !info.IsDir()
}

// isLatinOnly reports whether text survives the core PDF fonts, which cover
// roughly Latin-1.
func isLatinOnly(text string) bool {
	for _, r := range text {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}
