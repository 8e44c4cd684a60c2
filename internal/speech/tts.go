// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package speech

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// Role marks which side of a translation an utterance voices.
type Role string

const (
	RoleOriginal    Role = "original"
	RoleTranslation Role = "translation"
)

// Synthesizer renders text as speech audio.
type Synthesizer interface {
	// Synthesize writes the rendered audio to sink and returns the number of
	// bytes written. The sink is owned by the caller.
	Synthesize(ctx context.Context, sink io.Writer, text string, language lang.Code, role Role) (int64, error)
}

// HTTPSynthesizer calls a remote TTS service.
type HTTPSynthesizer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSynthesizer creates a synthesizer against the given TTS service.
func NewHTTPSynthesizer(baseURL string, timeout time.Duration) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, sink io.Writer, text string, language lang.Code, role Role) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fault.New(fault.KindEmptyInput, "nothing to synthesize")
	}

	payload := "{}"
	payload, _ = sjson.Set(payload, "text", text)
	payload, _ = sjson.Set(payload, "language", string(language))
	payload, _ = sjson.Set(payload, "role", string(role))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/synthesize", bytes.NewReader([]byte(payload)))
	if err != nil {
		return 0, fault.Wrap(fault.KindBackend, err, "failed to create synthesis request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, fault.Wrap(fault.KindBackend, err, "synthesis request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fault.New(fault.KindBackend, "synthesis backend returned status %d: %s", resp.StatusCode, string(body))
	}

	n, err := io.Copy(sink, resp.Body)
	if err != nil {
		return n, fault.Wrap(fault.KindBackend, err, "failed to stream synthesized audio")
	}
	if n == 0 {
		return 0, fault.New(fault.KindBackend, "synthesis backend returned empty audio")
	}
	return n, nil
}
