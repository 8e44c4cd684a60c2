// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package translate

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
	"github.com/tiktoken-go/tokenizer"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
)

// NLLBTranslator calls a remote NLLB-style translation endpoint. Language
// codes are resolved to backend codes per call so concurrent requests never
// share mutable language state.
type NLLBTranslator struct {
	baseURL   string
	model     string
	maxLength int
	langs     *lang.Table
	client    *http.Client
	codec     tokenizer.Codec
}

// NewNLLBTranslator creates a translator against the given endpoint.
// maxLength bounds the token count of a single input.
func NewNLLBTranslator(baseURL, model string, maxLength int, langs *lang.Table, timeout time.Duration) (*NLLBTranslator, error) {
	if maxLength <= 0 {
		maxLength = 512
	}
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to load token codec: %w", err)
	}
	return &NLLBTranslator{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		model:     model,
		maxLength: maxLength,
		langs:     langs,
		client:    &http.Client{Timeout: timeout},
		codec:     codec,
	}, nil
}

// Translate converts req.Text from req.Source to req.Target. Both codes are
// validated before any network call so an unsupported pair fails fast.
func (t *NLLBTranslator) Translate(ctx context.Context, req Request) (Response, error) {
	srcCode, err := t.backendCode(req.Source)
	if err != nil {
		return Response{}, err
	}
	tgtCode, err := t.backendCode(req.Target)
	if err != nil {
		return Response{}, err
	}

	text, truncated := t.truncate(req.Text)
	if truncated {
		log.Warnf("translation input truncated to %d tokens", t.maxLength)
	}

	payload := "{}"
	payload, _ = sjson.Set(payload, "inputs", text)
	payload, _ = sjson.Set(payload, "parameters.src_lang", srcCode)
	payload, _ = sjson.Set(payload, "parameters.tgt_lang", tgtCode)
	payload, _ = sjson.Set(payload, "parameters.max_length", t.maxLength)
	if t.model != "" {
		payload, _ = sjson.Set(payload, "model", t.model)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", bytes.NewReader([]byte(payload)))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, fault.Wrap(fault.KindBackend, err, "translation request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fault.Wrap(fault.KindBackend, err, "failed to read translation response")
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fault.New(fault.KindBackend, "translation backend returned status %d: %s", resp.StatusCode, string(body))
	}

	// Serving stacks answer either {"translation_text": "..."} or the
	// wrapped [{"translation_text": "..."}] form.
	out := gjson.GetBytes(body, "translation_text")
	if !out.Exists() {
		out = gjson.GetBytes(body, "0.translation_text")
	}
	if !out.Exists() {
		return Response{}, fault.New(fault.KindBackend, "translation backend returned no translation_text")
	}

	return Response{Text: out.String(), Truncated: truncated}, nil
}

// truncate cuts text to the model token window. Truncation is deterministic:
// the same input always yields the same prefix.
func (t *NLLBTranslator) truncate(text string) (string, bool) {
	ids, _, err := t.codec.Encode(text)
	if err != nil || len(ids) <= t.maxLength {
		return text, false
	}
	prefix, err := t.codec.Decode(ids[:t.maxLength])
	if err != nil {
		// Token boundary fell inside a rune sequence. Keep the full text
		// rather than emit garbage.
		return text, false
	}
	return prefix, true
}

func (t *NLLBTranslator) backendCode(code lang.Code) (string, error) {
	backend, ok := t.langs.BackendCode(code)
	if !ok {
		return "", fault.New(fault.KindUnsupportedLanguage, "language %q is not supported for translation", code)
	}
	return backend, nil
}
