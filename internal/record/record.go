// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package record defines the persisted unit of translation state.
package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// TranslationRecord is created exactly once at the end of a successful
// pipeline run and never mutated afterwards. The history store only appends.
type TranslationRecord struct {
	ID             string    `json:"id"`
	OriginalText   string    `json:"original"`
	TranslatedText string    `json:"translated"`
	SourceLang     lang.Code `json:"source_lang"`
	TargetLang     lang.Code `json:"target_lang"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
}

// New builds an immutable record with a fresh ID and creation time.
func New(original, translated string, src, tgt lang.Code, confidence float64) TranslationRecord {
	return TranslationRecord{
		ID:             uuid.New().String(),
		OriginalText:   original,
		TranslatedText: translated,
		SourceLang:     src,
		TargetLang:     tgt,
		Confidence:     confidence,
		Timestamp:      time.Now().UTC(),
	}
}
