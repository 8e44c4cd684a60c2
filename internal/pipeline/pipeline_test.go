// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/detect"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/normalize"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/speech"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/translate"
)

type fakeDetector struct {
	result detect.Result
	err    error
	calls  int32
	delay  time.Duration
}

func (d *fakeDetector) Detect(ctx context.Context, text string) (detect.Result, error) {
	atomic.AddInt32(&d.calls, 1)
	if d.delay > 0 {
		select {
		case <-ctx.Done():
			return detect.Result{}, ctx.Err()
		case <-time.After(d.delay):
		}
	}
	return d.result, d.err
}

type fakeTranslator struct {
	response translate.Response
	err      error
	delay    time.Duration
	lastReq  translate.Request
}

func (t *fakeTranslator) Translate(ctx context.Context, req translate.Request) (translate.Response, error) {
	t.lastReq = req
	if t.delay > 0 {
		select {
		case <-ctx.Done():
			return translate.Response{}, ctx.Err()
		case <-time.After(t.delay):
		}
	}
	return t.response, t.err
}

type fakeSynthesizer struct {
	mu       sync.Mutex
	voiced   map[speech.Role]string
	inFlight int32
	maxSeen  int32
	err      error
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, sink io.Writer, text string, language lang.Code, role speech.Role) (int64, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	for {
		prev := atomic.LoadInt32(&s.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&s.maxSeen, prev, cur) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	atomic.AddInt32(&s.inFlight, -1)

	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	if s.voiced == nil {
		s.voiced = make(map[speech.Role]string)
	}
	s.voiced[role] = text
	s.mu.Unlock()

	n, err := sink.Write([]byte("RIFFfake"))
	return int64(n), err
}

type fakeStore struct {
	mu      sync.Mutex
	records []record.TranslationRecord
	err     error
}

func (s *fakeStore) Append(ctx context.Context, rec record.TranslationRecord) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) ListAll(ctx context.Context) ([]record.TranslationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.TranslationRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

type fixture struct {
	detector    *fakeDetector
	translator  *fakeTranslator
	synthesizer *fakeSynthesizer
	store       *fakeStore
	audioDir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		detector:    &fakeDetector{result: detect.Result{Label: "fr", Code: "fr", Confidence: 0.97}},
		translator:  &fakeTranslator{response: translate.Response{Text: "Hello world"}},
		synthesizer: &fakeSynthesizer{},
		store:       &fakeStore{},
		audioDir:    t.TempDir(),
	}
}

func (f *fixture) pipeline(t *testing.T, mutate func(*Config)) *Pipeline {
	t.Helper()
	cfg := Config{
		Normalizer:  normalize.New(nil, nil, nil, t.TempDir(), "fr"),
		Detector:    f.detector,
		Translator:  f.translator,
		Synthesizer: f.synthesizer,
		Store:       f.store,
		Langs:       lang.NewTable(),
		AudioDir:    f.audioDir,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func textRequest(text string, source, target lang.Code) Request {
	return Request{
		Input:  normalize.Input{Modality: normalize.ModalityText, Text: text},
		Source: source,
		Target: target,
	}
}

func TestRun_TextEndToEnd(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	session, err := p.Run(context.Background(), textRequest("Bonjour le monde", lang.Unknown, "en"))
	require.NoError(t, err)

	assert.Equal(t, "Bonjour le monde", session.Record.OriginalText)
	assert.Equal(t, "Hello world", session.Record.TranslatedText)
	assert.Equal(t, lang.Code("fr"), session.Record.SourceLang)
	assert.Equal(t, lang.Code("en"), session.Record.TargetLang)
	assert.InDelta(t, 0.97, session.Record.Confidence, 1e-9)
	assert.NotEmpty(t, session.Record.ID)

	// Both sides were voiced with the exact pipeline texts.
	assert.Equal(t, "Bonjour le monde", f.synthesizer.voiced[speech.RoleOriginal])
	assert.Equal(t, "Hello world", f.synthesizer.voiced[speech.RoleTranslation])
	for _, name := range []string{session.OriginalAudio, session.TranslationAudio} {
		require.NotEmpty(t, name)
		data, err := os.ReadFile(filepath.Join(f.audioDir, name))
		require.NoError(t, err)
		assert.Equal(t, "RIFFfake", string(data))
	}

	// The record landed in history.
	records, err := f.store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, session.Record.ID, records[0].ID)
}

func TestRun_DeclaredSourceSkipsDetection(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	session, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "en"))
	require.NoError(t, err)

	assert.Equal(t, int32(0), atomic.LoadInt32(&f.detector.calls))
	assert.Equal(t, 1.0, session.Record.Confidence)
	assert.Equal(t, lang.Code("fr"), session.Record.SourceLang)
}

func TestRun_UnmappableDetectionFallsBackToDefault(t *testing.T) {
	f := newFixture(t)
	f.detector.result = detect.Result{Label: "swahili", Code: lang.Unknown, Confidence: 0.51}
	p := f.pipeline(t, func(cfg *Config) { cfg.DefaultSource = "es" })

	session, err := p.Run(context.Background(), textRequest("habari", lang.Unknown, "en"))
	require.NoError(t, err)
	assert.Equal(t, lang.Code("es"), session.Record.SourceLang)
	assert.InDelta(t, 0.51, session.Record.Confidence, 1e-9)
}

func TestRun_UnsupportedTargetFailsBeforeAnyStage(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "tlh"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnsupportedLanguage))
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.detector.calls))
}

func TestRun_UnsupportedDeclaredSourceFails(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), textRequest("Bonjour", "xx", "en"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUnsupportedLanguage))
}

func TestRun_DetectTimeoutIsClassified(t *testing.T) {
	f := newFixture(t)
	f.detector.delay = 200 * time.Millisecond
	p := f.pipeline(t, func(cfg *Config) {
		cfg.Timeouts = Timeouts{Detect: 20 * time.Millisecond}
	})

	_, err := p.Run(context.Background(), textRequest("Bonjour", lang.Unknown, "en"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindTimeout))
	assert.Contains(t, err.Error(), "detect")
}

func TestRun_TranslateTimeoutIsClassified(t *testing.T) {
	f := newFixture(t)
	f.translator.delay = 200 * time.Millisecond
	p := f.pipeline(t, func(cfg *Config) {
		cfg.Timeouts = Timeouts{Translate: 20 * time.Millisecond}
	})

	_, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "en"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindTimeout))
}

func TestRun_SynthesisIsConcurrent(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "en"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.synthesizer.maxSeen),
		"both synthesis calls should overlap")
}

func TestRun_SynthesisFailureCleansUpAudio(t *testing.T) {
	f := newFixture(t)
	f.synthesizer.err = fault.New(fault.KindBackend, "speech backend down")
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "en"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindBackend))

	entries, err := os.ReadDir(f.audioDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial audio artifacts should be removed")
}

func TestRun_StoreFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t)
	f.store.err = fault.New(fault.KindStoreWrite, "disk full")
	p := f.pipeline(t, nil)

	session, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "en"))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", session.Record.TranslatedText)
}

func TestRun_NoSynthesizerSkipsAudio(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, func(cfg *Config) {
		cfg.Synthesizer = nil
		cfg.AudioDir = ""
	})

	session, err := p.Run(context.Background(), textRequest("Bonjour", "fr", "en"))
	require.NoError(t, err)
	assert.Empty(t, session.OriginalAudio)
	assert.Empty(t, session.TranslationAudio)
	assert.Equal(t, "Hello world", session.Record.TranslatedText)
}

func TestRun_TruncatedFlagPropagates(t *testing.T) {
	f := newFixture(t)
	f.translator.response = translate.Response{Text: "short", Truncated: true}
	p := f.pipeline(t, nil)

	session, err := p.Run(context.Background(), textRequest(strings.Repeat("mot ", 500), "fr", "en"))
	require.NoError(t, err)
	assert.True(t, session.Truncated)
	assert.Equal(t, "short", f.synthesizer.voiced[speech.RoleTranslation])
}

func TestRun_EmptyInputFault(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), textRequest("   \n\t ", "fr", "en"))
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindEmptyInput))
}

func TestRun_TranslatorReceivesNormalizedText(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, nil)

	_, err := p.Run(context.Background(), textRequest("  Bonjour le monde  ", "fr", "en"))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", f.translator.lastReq.Text)
	assert.Equal(t, lang.Code("fr"), f.translator.lastReq.Source)
	assert.Equal(t, lang.Code("en"), f.translator.lastReq.Target)
}
