// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package history

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// FileStore keeps history as one JSON document per line. Writes go through
// O_APPEND only, so a crashed write can at worst leave one partial trailing
// line, which ListAll skips.
type FileStore struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
}

// NewFileStore creates a store at path. The file is created lazily on the
// first append. maxBytes > 0 enables archival: when the live file grows past
// the limit it is compressed aside and restarted.
func NewFileStore(path string, maxBytes int64) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileStore{path: path, maxBytes: maxBytes}, nil
}

// Append writes one record as a single line.
func (s *FileStore) Append(ctx context.Context, rec record.TranslationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fault.Wrap(fault.KindStoreWrite, err, "failed to encode history record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.maybeArchive(); err != nil {
		// Archival failure must not lose the record. Keep appending to the
		// oversized file.
		log.Warnf("history archival failed: %v", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fault.Wrap(fault.KindStoreWrite, err, "failed to open history file")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fault.Wrap(fault.KindStoreWrite, err, "failed to append history record")
	}
	return nil
}

// ListAll reads the live file and returns records newest first. Lines that
// fail to decode are skipped with a warning rather than failing the read.
func (s *FileStore) ListAll(ctx context.Context) ([]record.TranslationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []record.TranslationRecord{}, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var records []record.TranslationRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record.TranslationRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Warnf("skipping corrupt history line: %v", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	// Stored oldest first, served newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if records == nil {
		records = []record.TranslationRecord{}
	}
	return records, nil
}

func (s *FileStore) Close() error { return nil }

// maybeArchive compresses the live file aside once it exceeds the size
// limit. Must be called with s.mu held.
func (s *FileStore) maybeArchive() error {
	if s.maxBytes <= 0 {
		return nil
	}
	info, err := os.Stat(s.path)
	if err != nil || info.Size() < s.maxBytes {
		return nil
	}

	archivePath := fmt.Sprintf("%s.%s.gz", s.path, time.Now().UTC().Format("20060102T150405"))
	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		_ = gw.Close()
		_ = dst.Close()
		_ = os.Remove(archivePath)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = dst.Close()
		_ = os.Remove(archivePath)
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(archivePath)
		return err
	}

	if err := os.Remove(s.path); err != nil {
		return err
	}
	log.Infof("archived history to %s", archivePath)
	return nil
}
