// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hooks

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus()
	defer bus.Shutdown()

	var calls int32
	bus.Subscribe(EventRunCompleted, func(*EventContext) {
		atomic.AddInt32(&calls, 1)
	})
	bus.Subscribe(EventRunFailed, func(*EventContext) {
		t.Error("wrong event delivered")
	})

	bus.Publish(&EventContext{Event: EventRunCompleted, Timestamp: time.Now()})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Shutdown()

	var calls int32
	sub := bus.Subscribe(EventExportCreated, func(*EventContext) {
		atomic.AddInt32(&calls, 1)
	})

	bus.Publish(&EventContext{Event: EventExportCreated})
	sub.Unsubscribe()
	bus.Publish(&EventContext{Event: EventExportCreated})

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEventBus_SubscriberPanicIsContained(t *testing.T) {
	bus := NewEventBus()
	defer bus.Shutdown()

	var calls int32
	bus.Subscribe(EventRunFailed, func(*EventContext) { panic("boom") })
	bus.Subscribe(EventRunFailed, func(*EventContext) { atomic.AddInt32(&calls, 1) })

	bus.Publish(&EventContext{Event: EventRunFailed})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEventBus_PublishAsyncAfterShutdownIsNoop(t *testing.T) {
	bus := NewEventBus()
	bus.Shutdown()
	bus.PublishAsync(&EventContext{Event: EventRunCompleted})
}

func writeHook(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestManager_LoadsEnabledHooksOnly(t *testing.T) {
	dir := t.TempDir()
	writeHook(t, dir, "on-fail.yaml", `
id: on-fail
name: warn on failure
event: run_failed
action: log_warning
enabled: true
`)
	writeHook(t, dir, "disabled.yaml", `
id: disabled
name: disabled hook
event: run_completed
action: log_warning
enabled: false
`)
	writeHook(t, dir, "garbage.yaml", "{{not yaml")

	bus := NewEventBus()
	defer bus.Shutdown()
	m, err := NewManager(dir, bus)
	require.NoError(t, err)
	require.NoError(t, m.LoadHooks())

	hooks := m.Hooks()
	require.Len(t, hooks, 1)
	assert.Equal(t, "on-fail", hooks[0].ID)
}

func TestManager_ConditionEvaluation(t *testing.T) {
	bus := NewEventBus()
	defer bus.Shutdown()
	m, err := NewManager(t.TempDir(), bus)
	require.NoError(t, err)

	ctx := &EventContext{
		Event:      EventRunCompleted,
		Timestamp:  time.Now(),
		SourceLang: "fr",
		TargetLang: "ar",
		Data:       map[string]any{"confidence": 0.42},
	}

	tests := []struct {
		condition string
		want      bool
	}{
		{"", true},
		{"true", true},
		{`TargetLang == "ar"`, true},
		{`TargetLang == "en"`, false},
		{`Data.confidence < 0.5`, true},
		{`Data.confidence > 0.9`, false},
	}
	for _, tt := range tests {
		got, err := m.EvaluateCondition(&Hook{Condition: tt.condition}, ctx)
		require.NoError(t, err, tt.condition)
		assert.Equal(t, tt.want, got, tt.condition)
	}
}

func TestManager_InvalidConditionIsError(t *testing.T) {
	bus := NewEventBus()
	defer bus.Shutdown()
	m, err := NewManager(t.TempDir(), bus)
	require.NoError(t, err)

	_, err = m.EvaluateCondition(&Hook{Condition: "((("}, &EventContext{})
	require.Error(t, err)

	// Non-boolean result is also rejected.
	_, err = m.EvaluateCondition(&Hook{Condition: `"a string"`}, &EventContext{})
	require.Error(t, err)
}

func TestManager_EmptyDirRejected(t *testing.T) {
	bus := NewEventBus()
	defer bus.Shutdown()
	_, err := NewManager("", bus)
	require.Error(t, err)
}

func TestRunCommand_Whitelist(t *testing.T) {
	err := handleRunCommand(&Hook{Params: map[string]any{"command": "rm -rf /"}}, &EventContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whitelist")

	err = handleRunCommand(&Hook{Params: map[string]any{"command": "echo hook fired"}}, &EventContext{})
	assert.NoError(t, err)
}

func TestWebhookHandler_RejectsInsecureURL(t *testing.T) {
	wh := NewWebhookHandler()
	err := wh.Handle(&Hook{Params: map[string]any{"url": "http://example.com/hook"}}, &EventContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure")
}

func TestWebhookHandler_RateLimit(t *testing.T) {
	wh := NewWebhookHandler()
	for i := 0; i < 10; i++ {
		assert.True(t, wh.checkRateLimit("https://example.com/h"))
	}
	assert.False(t, wh.checkRateLimit("https://example.com/h"))
	assert.True(t, wh.checkRateLimit("https://example.com/other"))
}
