// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hooks runs user-defined automation rules in response to pipeline
// events. Rules live as YAML files and are hot-reloaded on change.
package hooks

import (
	"time"
)

// Event names a pipeline occurrence a hook can react to.
type Event string

const (
	EventRunCompleted       Event = "run_completed"
	EventRunFailed          Event = "run_failed"
	EventExportCreated      Event = "export_created"
	EventHistoryWriteFailed Event = "history_write_failed"
)

// Action names what a triggered hook does.
type Action string

const (
	ActionLogWarning    Action = "log_warning"
	ActionNotifyWebhook Action = "notify_webhook"
	ActionRunCommand    Action = "run_command"
)

// Hook is one automation rule, loaded from a YAML file.
type Hook struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Event       Event          `yaml:"event" json:"event"`
	Condition   string         `yaml:"condition" json:"condition"`
	Action      Action         `yaml:"action" json:"action"`
	Params      map[string]any `yaml:"params" json:"params"`
	Enabled     bool           `yaml:"enabled" json:"enabled"`

	// FilePath is the source file (not in YAML).
	FilePath string `yaml:"-" json:"-"`
}

// EventContext carries the data a hook condition and action can inspect.
type EventContext struct {
	Event        Event          `json:"event"`
	Timestamp    time.Time      `json:"timestamp"`
	Data         map[string]any `json:"data"`
	SourceLang   string         `json:"source_lang,omitempty"`
	TargetLang   string         `json:"target_lang,omitempty"`
	Error        error          `json:"-"`
	ErrorMessage string         `json:"error,omitempty"`
}

// ActionHandler executes one hook action.
type ActionHandler func(hook *Hook, ctx *EventContext) error
