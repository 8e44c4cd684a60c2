// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package normalize

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/extract"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

type fakeRecognizer struct {
	text    string
	err     error
	gotSrc  lang.Code
	gotTgt  lang.Code
	gotData []byte
}

func (f *fakeRecognizer) Recognize(_ context.Context, image []byte, _ string, source, target lang.Code) (string, error) {
	f.gotData = image
	f.gotSrc = source
	f.gotTgt = target
	return f.text, f.err
}

type fakeTranscriber struct {
	text    string
	err     error
	gotLang lang.Code
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, language lang.Code) (string, error) {
	f.gotLang = language
	return f.text, f.err
}

func newTestNormalizer(t *testing.T, rec *fakeRecognizer, tr *fakeTranscriber) *Normalizer {
	t.Helper()
	return New(extract.NewRegistry(), rec, tr, t.TempDir(), "fr")
}

func TestNormalize_TextPassthrough(t *testing.T) {
	n := newTestNormalizer(t, &fakeRecognizer{}, &fakeTranscriber{})
	text, err := n.Normalize(context.Background(), Input{Modality: ModalityText, Text: "  Bonjour  "}, "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", text)
}

func TestNormalize_WhitespaceOnlyText(t *testing.T) {
	n := newTestNormalizer(t, &fakeRecognizer{}, &fakeTranscriber{})
	_, err := n.Normalize(context.Background(), Input{Modality: ModalityText, Text: " \n\t "}, "fr", "en")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindEmptyInput))
}

func TestNormalize_DocumentStagedAndCleanedUp(t *testing.T) {
	stagingDir := t.TempDir()
	n := New(extract.NewRegistry(), &fakeRecognizer{}, &fakeTranscriber{}, stagingDir, "fr")

	input := Input{
		Modality: ModalityDocument,
		Filename: "report.txt",
		Data:     []byte("Bonjour le monde"),
	}
	text, err := n.Normalize(context.Background(), input, "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", text)

	entries, err := os.ReadDir(stagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged upload must be removed")
}

func TestNormalize_DocumentCleanupOnExtractionFailure(t *testing.T) {
	stagingDir := t.TempDir()
	n := New(extract.NewRegistry(), &fakeRecognizer{}, &fakeTranscriber{}, stagingDir, "fr")

	input := Input{
		Modality: ModalityDocument,
		Filename: "broken.pdf",
		Data:     []byte("not a pdf"),
	}
	_, err := n.Normalize(context.Background(), input, "fr", "en")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindExtraction))

	entries, err := os.ReadDir(stagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNormalize_DocumentUnsupportedExtension(t *testing.T) {
	n := newTestNormalizer(t, &fakeRecognizer{}, &fakeTranscriber{})
	input := Input{Modality: ModalityDocument, Filename: "notes.rtf", Data: []byte("x")}
	_, err := n.Normalize(context.Background(), input, "fr", "en")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnsupportedFormat))
}

func TestNormalize_ImagePassesLanguages(t *testing.T) {
	rec := &fakeRecognizer{text: "recognized line"}
	n := newTestNormalizer(t, rec, &fakeTranscriber{})

	input := Input{Modality: ModalityImage, Filename: "scan.png", Data: []byte("img-bytes")}
	text, err := n.Normalize(context.Background(), input, "en", "ar")
	require.NoError(t, err)
	assert.Equal(t, "recognized line", text)
	assert.Equal(t, lang.Code("en"), rec.gotSrc)
	assert.Equal(t, lang.Code("ar"), rec.gotTgt)
	assert.Equal(t, []byte("img-bytes"), rec.gotData)
}

func TestNormalize_ImageWithNoTextIsEmptyInput(t *testing.T) {
	n := newTestNormalizer(t, &fakeRecognizer{text: "  "}, &fakeTranscriber{})
	input := Input{Modality: ModalityImage, Filename: "blank.png", Data: []byte("img")}
	_, err := n.Normalize(context.Background(), input, "fr", "en")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindEmptyInput))
}

func TestNormalize_AudioUsesDefaultWhenSourceUnknown(t *testing.T) {
	tr := &fakeTranscriber{text: "bonjour"}
	n := newTestNormalizer(t, &fakeRecognizer{}, tr)

	input := Input{Modality: ModalityAudio, Filename: "rec.wav", Data: []byte("wav")}
	_, err := n.Normalize(context.Background(), input, lang.Unknown, "en")
	require.NoError(t, err)
	assert.Equal(t, lang.Code("fr"), tr.gotLang)

	_, err = n.Normalize(context.Background(), input, "es", "en")
	require.NoError(t, err)
	assert.Equal(t, lang.Code("es"), tr.gotLang)
}

func TestNormalize_UnknownModality(t *testing.T) {
	n := newTestNormalizer(t, &fakeRecognizer{}, &fakeTranscriber{})
	_, err := n.Normalize(context.Background(), Input{Modality: "video"}, "fr", "en")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnsupportedFormat))
}

func TestNormalize_EmptyUploads(t *testing.T) {
	n := newTestNormalizer(t, &fakeRecognizer{}, &fakeTranscriber{})
	for _, modality := range []Modality{ModalityDocument, ModalityImage, ModalityAudio} {
		_, err := n.Normalize(context.Background(), Input{Modality: modality, Filename: "f.txt"}, "fr", "en")
		require.Error(t, err, string(modality))
		assert.True(t, fault.IsKind(err, fault.KindEmptyInput), string(modality))
	}
}
