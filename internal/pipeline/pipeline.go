// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pipeline orchestrates a full translation run: normalize the input
// to text, resolve the source language, translate, voice both sides, and
// persist the outcome. Every stage talks to its adapter under its own
// timeout so one stuck backend cannot hang a run forever.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/detect"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/history"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/hooks"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/normalize"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/speech"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/translate"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/util"
)

// Timeouts bounds each adapter call. Zero values fall back to the default.
type Timeouts struct {
	Normalize  time.Duration
	Detect     time.Duration
	Translate  time.Duration
	Synthesize time.Duration
}

const defaultStageTimeout = 120 * time.Second

func (t Timeouts) normalized() Timeouts {
	if t.Normalize <= 0 {
		t.Normalize = defaultStageTimeout
	}
	if t.Detect <= 0 {
		t.Detect = defaultStageTimeout
	}
	if t.Translate <= 0 {
		t.Translate = defaultStageTimeout
	}
	if t.Synthesize <= 0 {
		t.Synthesize = defaultStageTimeout
	}
	return t
}

// Request is one translation run.
type Request struct {
	Input normalize.Input

	// Source may be lang.Unknown to request detection.
	Source lang.Code
	Target lang.Code
}

// Session is the immutable outcome of one run handed back to the caller.
type Session struct {
	Record    record.TranslationRecord
	Truncated bool

	// OriginalAudio and TranslationAudio are artifact file names under the
	// audio directory, empty when synthesis was skipped.
	OriginalAudio    string
	TranslationAudio string
}

// Pipeline wires the stages together.
type Pipeline struct {
	normalizer  *normalize.Normalizer
	detector    detect.Detector
	translator  translate.Translator
	synthesizer speech.Synthesizer
	store       history.Store
	bus         *hooks.EventBus
	langs       *lang.Table

	audioDir      string
	defaultSource lang.Code
	timeouts      Timeouts
}

// Config collects the pipeline collaborators.
type Config struct {
	Normalizer    *normalize.Normalizer
	Detector      detect.Detector
	Translator    translate.Translator
	Synthesizer   speech.Synthesizer
	Store         history.Store
	Bus           *hooks.EventBus
	Langs         *lang.Table
	AudioDir      string
	DefaultSource lang.Code
	Timeouts      Timeouts
}

// New creates a pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Normalizer == nil || cfg.Detector == nil || cfg.Translator == nil || cfg.Store == nil || cfg.Langs == nil {
		return nil, fmt.Errorf("pipeline is missing a required collaborator")
	}
	if cfg.AudioDir != "" {
		if err := util.EnsureDir(cfg.AudioDir); err != nil {
			return nil, fmt.Errorf("failed to create audio directory: %w", err)
		}
	}
	defaultSource := cfg.DefaultSource
	if defaultSource == "" {
		defaultSource = "fr"
	}
	return &Pipeline{
		normalizer:    cfg.Normalizer,
		detector:      cfg.Detector,
		translator:    cfg.Translator,
		synthesizer:   cfg.Synthesizer,
		store:         cfg.Store,
		bus:           cfg.Bus,
		langs:         cfg.Langs,
		audioDir:      cfg.AudioDir,
		defaultSource: defaultSource,
		timeouts:      cfg.Timeouts.normalized(),
	}, nil
}

// Run executes the full chain and returns the session. The record is
// persisted best effort: a store failure is logged and published as an
// event but does not fail a run that already produced a translation.
func (p *Pipeline) Run(ctx context.Context, req Request) (Session, error) {
	session, err := p.run(ctx, req)
	if err != nil {
		p.publish(&hooks.EventContext{
			Event:        hooks.EventRunFailed,
			Timestamp:    time.Now().UTC(),
			SourceLang:   string(req.Source),
			TargetLang:   string(req.Target),
			Error:        err,
			ErrorMessage: err.Error(),
			Data:         map[string]any{"kind": string(fault.KindOf(err))},
		})
		return Session{}, err
	}

	p.publish(&hooks.EventContext{
		Event:      hooks.EventRunCompleted,
		Timestamp:  time.Now().UTC(),
		SourceLang: string(session.Record.SourceLang),
		TargetLang: string(session.Record.TargetLang),
		Data: map[string]any{
			"record_id":  session.Record.ID,
			"confidence": session.Record.Confidence,
			"truncated":  session.Truncated,
		},
	})
	return session, nil
}

func (p *Pipeline) run(ctx context.Context, req Request) (Session, error) {
	if !p.langs.Supported(req.Target) {
		return Session{}, fault.New(fault.KindUnsupportedLanguage,
			"target language %q is not supported", req.Target)
	}

	// Stage 1: normalize.
	var text string
	err := p.stage(ctx, p.timeouts.Normalize, "normalize", func(sctx context.Context) error {
		var serr error
		text, serr = p.normalizer.Normalize(sctx, req.Input, req.Source, req.Target)
		return serr
	})
	if err != nil {
		return Session{}, err
	}

	// Stage 2: resolve the source language.
	source, confidence, err := p.resolveSource(ctx, req.Source, text)
	if err != nil {
		return Session{}, err
	}

	// Stage 3: translate. The translated text below is reused verbatim for
	// synthesis and the history record.
	var translated translate.Response
	err = p.stage(ctx, p.timeouts.Translate, "translate", func(sctx context.Context) error {
		var serr error
		translated, serr = p.translator.Translate(sctx, translate.Request{
			Text:   text,
			Source: source,
			Target: req.Target,
		})
		return serr
	})
	if err != nil {
		return Session{}, err
	}

	session := Session{Truncated: translated.Truncated}

	// Stage 4: voice both sides concurrently.
	if p.synthesizer != nil && p.audioDir != "" {
		rec := record.New(text, translated.Text, source, req.Target, confidence)
		session.Record = rec

		var wg sync.WaitGroup
		var origErr, transErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			session.OriginalAudio, origErr = p.synthesize(ctx, rec.ID, text, source, speech.RoleOriginal)
		}()
		go func() {
			defer wg.Done()
			session.TranslationAudio, transErr = p.synthesize(ctx, rec.ID, translated.Text, req.Target, speech.RoleTranslation)
		}()
		wg.Wait()

		if origErr != nil {
			p.cleanupAudio(session)
			return Session{}, origErr
		}
		if transErr != nil {
			p.cleanupAudio(session)
			return Session{}, transErr
		}
	} else {
		session.Record = record.New(text, translated.Text, source, req.Target, confidence)
	}

	// Stage 5: persist, best effort.
	if err := p.store.Append(ctx, session.Record); err != nil {
		log.Errorf("failed to persist translation record %s: %v", session.Record.ID, err)
		p.publish(&hooks.EventContext{
			Event:        hooks.EventHistoryWriteFailed,
			Timestamp:    time.Now().UTC(),
			SourceLang:   string(session.Record.SourceLang),
			TargetLang:   string(session.Record.TargetLang),
			Error:        err,
			ErrorMessage: err.Error(),
			Data:         map[string]any{"record_id": session.Record.ID},
		})
	}

	return session, nil
}

// resolveSource returns the run's source language and detection confidence.
// A declared supported source short-circuits detection with full confidence.
// A detected label outside the supported set falls back to the configured
// default rather than failing the run.
func (p *Pipeline) resolveSource(ctx context.Context, declared lang.Code, text string) (lang.Code, float64, error) {
	if declared != "" && declared != lang.Unknown {
		if !p.langs.Supported(declared) {
			return "", 0, fault.New(fault.KindUnsupportedLanguage,
				"source language %q is not supported", declared)
		}
		return declared, 1.0, nil
	}

	var result detect.Result
	err := p.stage(ctx, p.timeouts.Detect, "detect", func(sctx context.Context) error {
		var serr error
		result, serr = p.detector.Detect(sctx, text)
		return serr
	})
	if err != nil {
		return "", 0, err
	}

	if !p.langs.Supported(result.Code) {
		log.Warnf("detected language %q is outside the supported set, falling back to %s",
			result.Label, p.defaultSource)
		return p.defaultSource, result.Confidence, nil
	}
	return result.Code, result.Confidence, nil
}

// synthesize voices one side of the run into the audio directory and
// returns the artifact file name.
func (p *Pipeline) synthesize(ctx context.Context, runID, text string, language lang.Code, role speech.Role) (string, error) {
	name := fmt.Sprintf("%s-%s.mp3", runID, role)

	f, err := os.Create(filepath.Join(p.audioDir, name))
	if err != nil {
		return "", fault.Wrap(fault.KindBackend, err, "failed to create audio file")
	}

	err = p.stage(ctx, p.timeouts.Synthesize, "synthesize", func(sctx context.Context) error {
		_, serr := p.synthesizer.Synthesize(sctx, f, text, language, role)
		return serr
	})
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fault.Wrap(fault.KindBackend, cerr, "failed to close audio file")
	}
	if err != nil {
		_ = os.Remove(filepath.Join(p.audioDir, name))
		return "", err
	}
	return name, nil
}

func (p *Pipeline) cleanupAudio(session Session) {
	for _, name := range []string{session.OriginalAudio, session.TranslationAudio} {
		if name != "" {
			_ = os.Remove(filepath.Join(p.audioDir, name))
		}
	}
}

// stage runs fn under its own deadline and converts deadline expiry into a
// timeout fault naming the stage.
func (p *Pipeline) stage(ctx context.Context, timeout time.Duration, name string, fn func(context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(sctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fault.Wrap(fault.KindTimeout, err, "%s stage exceeded its %s budget", name, timeout)
	}
	return err
}

func (p *Pipeline) publish(ctx *hooks.EventContext) {
	if p.bus != nil {
		p.bus.PublishAsync(ctx)
	}
}
