// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package extract

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// TextExtractor reads plain UTF-8 text files.
type TextExtractor struct{}

func (TextExtractor) Extensions() []string { return []string{"txt"} }

func (TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8")
	}
	return string(data), nil
}
