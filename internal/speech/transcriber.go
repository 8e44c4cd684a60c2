// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package speech converts between audio and text. Transcription runs on
// local Vosk models; synthesis goes through a remote TTS backend.
package speech

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// transcribeChunkBytes is the waveform slice fed to the recognizer per call.
const transcribeChunkBytes = 8192

// Transcriber converts a recorded utterance to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language lang.Code) (string, error)
}

// ModelManager caches loaded Vosk models by language, with reference counts
// so a model shared by concurrent transcriptions is freed only when the last
// user releases it.
type ModelManager struct {
	mu       sync.Mutex
	models   map[lang.Code]*modelEntry
	modelDir string
	dirs     map[lang.Code]string
}

type modelEntry struct {
	model    *vosk.VoskModel
	refCount int
}

var (
	globalModelManager *ModelManager
	modelManagerOnce   sync.Once
)

// GetModelManager returns the process-wide manager. modelDir and dirs are
// fixed on first call.
func GetModelManager(modelDir string, dirs map[lang.Code]string) *ModelManager {
	modelManagerOnce.Do(func() {
		vosk.SetLogLevel(-1) // suppress vosk's own logs
		globalModelManager = &ModelManager{
			models:   make(map[lang.Code]*modelEntry),
			modelDir: modelDir,
			dirs:     dirs,
		}
	})
	return globalModelManager
}

// GetModel loads or reuses the model for a language. Callers must pair every
// successful call with ReleaseModel.
func (mm *ModelManager) GetModel(language lang.Code) (*vosk.VoskModel, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if entry, ok := mm.models[language]; ok {
		entry.refCount++
		log.Debugf("reusing cached vosk model for %s (refs=%d)", language, entry.refCount)
		return entry.model, nil
	}

	dir, ok := mm.dirs[language]
	if !ok {
		return nil, fault.New(fault.KindTranscription, "no speech model available for language %q", language)
	}

	modelPath := filepath.Join(mm.modelDir, dir)
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fault.New(fault.KindTranscription, "speech model directory not found: %s", modelPath)
	}

	log.Infof("loading vosk model for %s from %s", language, modelPath)
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fault.Wrap(fault.KindTranscription, err, "failed to load speech model for %s", language)
	}

	mm.models[language] = &modelEntry{model: model, refCount: 1}
	return model, nil
}

// ReleaseModel drops one reference and frees the model at zero.
func (mm *ModelManager) ReleaseModel(language lang.Code) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	entry, ok := mm.models[language]
	if !ok {
		return
	}
	entry.refCount--
	if entry.refCount <= 0 {
		entry.model.Free()
		delete(mm.models, language)
		log.Debugf("freed vosk model for %s", language)
	}
}

// Available reports whether the model directory for a language exists.
func (mm *ModelManager) Available(language lang.Code) bool {
	dir, ok := mm.dirs[language]
	if !ok {
		return false
	}
	info, err := os.Stat(filepath.Join(mm.modelDir, dir))
	return err == nil && info.IsDir()
}

// VoskTranscriber transcribes complete recordings with a local Vosk model.
type VoskTranscriber struct {
	manager *ModelManager
}

// NewVoskTranscriber creates a transcriber backed by the model manager.
func NewVoskTranscriber(manager *ModelManager) *VoskTranscriber {
	return &VoskTranscriber{manager: manager}
}

type voskResult struct {
	Text string `json:"text"`
}

// Transcribe decodes the WAV payload and runs it through the recognizer in
// chunks, returning the final text.
func (t *VoskTranscriber) Transcribe(ctx context.Context, audio []byte, language lang.Code) (string, error) {
	pcm, err := parseWAV(audio)
	if err != nil {
		return "", err
	}

	model, err := t.manager.GetModel(language)
	if err != nil {
		return "", err
	}
	defer t.manager.ReleaseModel(language)

	rec, err := vosk.NewRecognizer(model, pcm.sampleRate)
	if err != nil {
		return "", fault.Wrap(fault.KindTranscription, err, "failed to create recognizer")
	}
	defer rec.Free()
	rec.SetWords(0) // no word-level timing

	for off := 0; off < len(pcm.data); off += transcribeChunkBytes {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		end := off + transcribeChunkBytes
		if end > len(pcm.data) {
			end = len(pcm.data)
		}
		rec.AcceptWaveform(pcm.data[off:end])
	}

	var result voskResult
	if err := json.Unmarshal([]byte(rec.FinalResult()), &result); err != nil {
		return "", fault.Wrap(fault.KindTranscription, err, "failed to decode recognizer output")
	}
	return result.Text, nil
}
