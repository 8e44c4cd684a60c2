// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package detect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// HTTPDetector calls a remote text-classification endpoint serving a
// language-identification model. The endpoint follows the common inference
// contract: POST {"inputs": "...", "model": "..."} returning ranked
// [{"label": "fr", "score": 0.99}, ...] candidates.
type HTTPDetector struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewHTTPDetector creates a detector for the classification endpoint.
func NewHTTPDetector(baseURL, model string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Detect classifies the prefix of text and returns the top candidate.
func (d *HTTPDetector) Detect(ctx context.Context, text string) (Result, error) {
	payload := "{}"
	payload, _ = sjson.Set(payload, "inputs", Prefix(text))
	if d.model != "" {
		payload, _ = sjson.Set(payload, "model", d.model)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/classify", bytes.NewReader([]byte(payload)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create detection request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read detection response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("detection backend returned status %d: %s", resp.StatusCode, string(body))
	}

	// Responses come either as a flat candidate list or wrapped in one extra
	// array, depending on the serving stack.
	candidates := gjson.GetBytes(body, "0")
	if !candidates.IsArray() {
		candidates = gjson.ParseBytes(body)
	}
	var best Result
	candidates.ForEach(func(_, value gjson.Result) bool {
		score := value.Get("score").Float()
		if score > best.Confidence {
			best = Result{
				Label:      value.Get("label").String(),
				Confidence: score,
			}
		}
		return true
	})
	if best.Label == "" {
		return Result{}, fmt.Errorf("detection backend returned no candidates")
	}

	best.Confidence = RoundConfidence(best.Confidence)
	best.Code = lang.Code(strings.ToLower(best.Label))
	log.Debugf("detected language %s (%.4f)", best.Label, best.Confidence)
	return best, nil
}
