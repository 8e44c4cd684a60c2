// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
)

func TestRegistry_SupportedExtensions(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Supported("txt"))
	assert.True(t, r.Supported("pdf"))
	assert.True(t, r.Supported("docx"))
	assert.True(t, r.Supported(".TXT"))
	assert.False(t, r.Supported("rtf"))
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract("whatever.rtf", "rtf")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnsupportedFormat))
}

func TestTextExtractor_ReadsUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Bonjour le monde\nاهلا"), 0o600))

	r := NewRegistry()
	text, err := r.Extract(path, "txt")
	require.NoError(t, err)
	assert.Contains(t, text, "Bonjour le monde")
	assert.Contains(t, text, "اهلا")
}

func TestTextExtractor_RejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o600))

	r := NewRegistry()
	_, err := r.Extract(path, "txt")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindExtraction))
}

func TestPDFExtractor_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	r := NewRegistry()
	_, err := r.Extract(path, "pdf")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindExtraction))
}

func TestDocxExtractor_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o600))

	r := NewRegistry()
	_, err := r.Extract(path, "docx")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindExtraction))
}
