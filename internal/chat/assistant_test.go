// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
)

func TestHTTPAssistant_ReplaysHistory(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"generated_text":"I am fine, thanks."}`))
	}))
	defer srv.Close()

	a := NewHTTPAssistant(srv.URL, "microsoft/DialoGPT-medium", 5*time.Second)
	history := []Turn{
		{User: "Hello", Assistant: "Hi there!"},
		{User: "Nice day", Assistant: "Indeed."},
	}
	reply, err := a.Reply(context.Background(), history, "How are you?")
	require.NoError(t, err)
	assert.Equal(t, "I am fine, thanks.", reply)

	assert.Equal(t, "How are you?", gjson.GetBytes(gotBody, "inputs.text").String())
	past := gjson.GetBytes(gotBody, "inputs.past_user_inputs")
	require.True(t, past.IsArray())
	assert.Equal(t, "Hello", past.Array()[0].String())
	generated := gjson.GetBytes(gotBody, "inputs.generated_responses")
	assert.Equal(t, "Indeed.", generated.Array()[1].String())
}

func TestHTTPAssistant_EmptyMessage(t *testing.T) {
	a := NewHTTPAssistant("http://127.0.0.1:1", "", time.Second)
	_, err := a.Reply(context.Background(), nil, "  ")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindEmptyInput))
}

func TestHTTPAssistant_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewHTTPAssistant(srv.URL, "", 5*time.Second)
	_, err := a.Reply(context.Background(), nil, "hi")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindBackend))
}

type scriptedAssistant struct {
	calls int
}

func (s *scriptedAssistant) Reply(_ context.Context, history []Turn, message string) (string, error) {
	s.calls++
	return fmt.Sprintf("reply-%d (saw %d turns)", s.calls, len(history)), nil
}

func TestConversation_WindowDropsOldestTurns(t *testing.T) {
	conv := NewConversation(3)
	assistant := &scriptedAssistant{}

	for i := 0; i < 5; i++ {
		_, err := conv.Ask(context.Background(), assistant, fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
	}

	history := conv.History()
	require.Len(t, history, 3)
	assert.Equal(t, "msg-2", history[0].User)
	assert.Equal(t, "msg-4", history[2].User)
}

func TestConversation_Reset(t *testing.T) {
	conv := NewConversation(5)
	assistant := &scriptedAssistant{}

	_, err := conv.Ask(context.Background(), assistant, "hello")
	require.NoError(t, err)
	require.Len(t, conv.History(), 1)

	conv.Reset()
	assert.Empty(t, conv.History())
}
