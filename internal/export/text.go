// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package export

import (
	"bytes"
	"fmt"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// TextRenderer writes both sides of the translation as UTF-8 plain text.
type TextRenderer struct{}

func (TextRenderer) Format() string      { return "plain_text" }
func (TextRenderer) Extension() string   { return "txt" }
func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TextRenderer) Render(rec record.TranslationRecord) ([]byte, error) {
	original, translation := sectionLabels(rec)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s\n\n", original, rec.OriginalText)
	fmt.Fprintf(&buf, "%s\n%s\n", translation, rec.TranslatedText)
	return buf.Bytes(), nil
}
