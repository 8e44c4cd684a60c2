// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package speech

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// DownloadModels fetches missing Vosk model archives and unpacks them under
// modelDir. Models already present on disk are skipped.
func DownloadModels(ctx context.Context, baseURL, modelDir string, dirs map[lang.Code]string) error {
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	var fetched int
	for language, dir := range dirs {
		dest := filepath.Join(modelDir, dir)
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			continue
		}
		if err := downloadModel(ctx, baseURL, modelDir, dir); err != nil {
			return fmt.Errorf("download model for %s: %w", language, err)
		}
		fetched++
	}

	if fetched > 0 {
		log.Infof("downloaded %d speech models", fetched)
	}
	return nil
}

func downloadModel(ctx context.Context, baseURL, modelDir, dir string) error {
	url := fmt.Sprintf("%s/%s.zip", strings.TrimSuffix(baseURL, "/"), dir)
	log.Infof("fetching speech model %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request %s: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	archive, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	return unpackModel(archive, modelDir, dir)
}

// unpackModel extracts the archive, rejecting entries that escape the model
// directory.
func unpackModel(archive []byte, modelDir, dir string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	root := filepath.Join(modelDir, dir)
	for _, f := range zr.File {
		dest := filepath.Join(modelDir, filepath.Clean(f.Name))
		if !strings.HasPrefix(dest, filepath.Clean(modelDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes model dir: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}

	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("archive did not contain %s", dir)
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}
