// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package util contains small shared helpers with no domain knowledge.
package util

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// SetLogLevel applies the configured verbosity to the global logger.
func SetLogLevel(debug bool) {
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// WritablePath returns the base directory for runtime state (history, audio
// artifacts, logs). NEUROTRANSLATE_STATE_DIR overrides the default of the
// current working directory.
func WritablePath() string {
	if dir := os.Getenv("NEUROTRANSLATE_STATE_DIR"); dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// EnsureDir creates a directory (and parents) if missing.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Clean(path), 0o755)
}
