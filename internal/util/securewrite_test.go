// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSecureWrite_SuccessfulWrite(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")

	testData := []byte("test content")
	if err := SecureWrite(testFile, testData, 0); err != nil {
		t.Fatalf("SecureWrite() failed: %v", err)
	}

	content, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(testData) {
		t.Errorf("Expected content %s, got %s", testData, content)
	}

	// Verify no temp files remain
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read directory: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "test.txt" {
			t.Errorf("Unexpected file in directory: %s", entry.Name())
		}
	}
}

func TestSecureWrite_OverwritesExisting(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")

	if err := SecureWrite(testFile, []byte("first"), 0); err != nil {
		t.Fatalf("first SecureWrite() failed: %v", err)
	}
	if err := SecureWrite(testFile, []byte("second"), 0); err != nil {
		t.Fatalf("second SecureWrite() failed: %v", err)
	}

	content, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("Expected overwritten content, got %s", content)
	}
}

func TestSecureWrite_CreatesParentDirs(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "a", "b", "test.txt")

	if err := SecureWrite(testFile, []byte("nested"), 0o644); err != nil {
		t.Fatalf("SecureWrite() failed: %v", err)
	}
	if _, err := os.Stat(testFile); err != nil {
		t.Fatalf("target file missing: %v", err)
	}
}
