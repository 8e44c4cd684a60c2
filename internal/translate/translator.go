// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package translate converts text between supported languages through a
// remote sequence-to-sequence backend.
package translate

import (
	"context"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// Request is one translation call. Source and Target are UI language codes
// from the supported set.
type Request struct {
	Text   string
	Source lang.Code
	Target lang.Code
}

// Response carries the translated text. Truncated is set when the input
// exceeded the model window and only a prefix was translated.
type Response struct {
	Text      string
	Truncated bool
}

// Translator converts text between two supported languages.
type Translator interface {
	Translate(ctx context.Context, req Request) (Response, error)
}
