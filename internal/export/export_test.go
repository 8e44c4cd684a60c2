// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

func sampleRecord() record.TranslationRecord {
	return record.New("Bonjour le monde", "Hello world", "fr", "en", 0.99)
}

func arabicRecord() record.TranslationRecord {
	return record.New("Hello world", "اهلا بالعالم", "en", "ar", 0.97)
}

func TestRegistry_Formats(t *testing.T) {
	r := NewRegistry("")
	assert.Equal(t, []string{"plain_text", "rich_document", "paginated_document"}, r.Formats())
}

func TestRegistry_UnknownFormat(t *testing.T) {
	r := NewRegistry("")
	_, err := r.Export("xlsx", sampleRecord())
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnsupportedExportFormat))
	assert.Contains(t, err.Error(), "plain_text")
}

func TestTextRenderer_Sections(t *testing.T) {
	r := NewRegistry("")
	rec := sampleRecord()

	artifact, err := r.Export("plain_text", rec)
	require.NoError(t, err)

	text := string(artifact.Data)
	assert.Contains(t, text, "Original (FR)")
	assert.Contains(t, text, "Translation (EN)")
	assert.Contains(t, text, "Bonjour le monde")
	assert.Contains(t, text, "Hello world")
	assert.True(t, strings.Index(text, "Original (FR)") < strings.Index(text, "Translation (EN)"))
	assert.Equal(t, "text/plain; charset=utf-8", artifact.ContentType)
	assert.Equal(t, "translation-"+rec.ID+".txt", artifact.Name)
}

func TestTextRenderer_UnknownSourceLabel(t *testing.T) {
	rec := sampleRecord()
	rec.SourceLang = "unknown"

	data, err := TextRenderer{}.Render(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Original (unknown)")
}

func TestDocxRenderer_ProducesValidArchive(t *testing.T) {
	data, err := DocxRenderer{}.Render(arabicRecord())
	require.NoError(t, err)
	// DOCX is a zip container.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestPDFRenderer_LatinWithoutFont(t *testing.T) {
	data, err := NewPDFRenderer("").Render(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRenderer_ArabicWithoutFontFails(t *testing.T) {
	_, err := NewPDFRenderer("fonts/missing.ttf").Render(arabicRecord())
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindMissingFontResource))
	assert.True(t, fault.Recoverable(err))
}

func TestArtifactStore_EncodeGzip(t *testing.T) {
	s := &ArtifactStore{compression: "gzip"}
	data, name, encoding, err := s.encode(Artifact{Name: "doc.txt", Data: []byte("hello hello hello")})
	require.NoError(t, err)
	assert.Equal(t, "doc.txt.gz", name)
	assert.Equal(t, "gzip", encoding)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])
}

func TestArtifactStore_EncodeBrotli(t *testing.T) {
	s := &ArtifactStore{compression: "brotli"}
	_, name, encoding, err := s.encode(Artifact{Name: "doc.pdf", Data: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf.br", name)
	assert.Equal(t, "br", encoding)
}

func TestArtifactStore_EncodeNone(t *testing.T) {
	s := &ArtifactStore{compression: "none"}
	data, name, encoding, err := s.encode(Artifact{Name: "doc.txt", Data: []byte("raw")})
	require.NoError(t, err)
	assert.Equal(t, "doc.txt", name)
	assert.Empty(t, encoding)
	assert.Equal(t, []byte("raw"), data)
}
