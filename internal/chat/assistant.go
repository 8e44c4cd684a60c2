// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package chat implements the conversational assistant. Each conversation
// keeps a bounded window of past turns that is replayed to the backend so
// replies stay in context.
package chat

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
)

// Turn is one user/assistant exchange.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Assistant produces a reply to a user message given prior turns.
type Assistant interface {
	Reply(ctx context.Context, history []Turn, message string) (string, error)
}

// HTTPAssistant calls a remote conversational model endpoint.
type HTTPAssistant struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewHTTPAssistant creates an assistant against the given endpoint.
func NewHTTPAssistant(baseURL, model string, timeout time.Duration) *HTTPAssistant {
	return &HTTPAssistant{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAssistant) Reply(ctx context.Context, history []Turn, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fault.New(fault.KindEmptyInput, "message is empty")
	}

	payload := "{}"
	payload, _ = sjson.Set(payload, "inputs.text", message)
	if a.model != "" {
		payload, _ = sjson.Set(payload, "model", a.model)
	}
	for _, turn := range history {
		payload, _ = sjson.Set(payload, "inputs.past_user_inputs.-1", turn.User)
		payload, _ = sjson.Set(payload, "inputs.generated_responses.-1", turn.Assistant)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat", bytes.NewReader([]byte(payload)))
	if err != nil {
		return "", fault.Wrap(fault.KindBackend, err, "failed to create chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fault.Wrap(fault.KindBackend, err, "chat request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.Wrap(fault.KindBackend, err, "failed to read chat response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fault.New(fault.KindBackend, "chat backend returned status %d: %s", resp.StatusCode, string(body))
	}

	reply := gjson.GetBytes(body, "generated_text").String()
	if reply == "" {
		return "", fault.New(fault.KindBackend, "chat backend returned no generated_text")
	}
	return reply, nil
}

// Conversation is one user's chat session. Turns beyond the window are
// dropped oldest-first so the replayed context stays bounded.
type Conversation struct {
	mu       sync.Mutex
	turns    []Turn
	maxTurns int
}

// NewConversation creates a conversation keeping at most maxTurns exchanges.
func NewConversation(maxTurns int) *Conversation {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &Conversation{maxTurns: maxTurns}
}

// Ask sends a message through the assistant and records the exchange.
func (c *Conversation) Ask(ctx context.Context, assistant Assistant, message string) (string, error) {
	c.mu.Lock()
	history := make([]Turn, len(c.turns))
	copy(history, c.turns)
	c.mu.Unlock()

	reply, err := assistant.Reply(ctx, history, message)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.turns = append(c.turns, Turn{User: message, Assistant: reply})
	if len(c.turns) > c.maxTurns {
		c.turns = c.turns[len(c.turns)-c.maxTurns:]
	}
	c.mu.Unlock()
	return reply, nil
}

// History returns a copy of the recorded turns.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Reset clears the conversation window.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}
