// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Manager loads hook definitions from disk, matches them against published
// events and runs their actions.
type Manager struct {
	hooksDir       string
	hooks          map[Event][]*Hook
	eventBus       *EventBus
	programs       map[string]*vm.Program
	actionHandlers map[Action]ActionHandler
	mu             sync.RWMutex

	watcher     *fsnotify.Watcher
	stopWatcher chan struct{}
}

// NewManager creates a manager reading definitions from hooksDir.
func NewManager(hooksDir string, eventBus *EventBus) (*Manager, error) {
	if hooksDir == "" {
		return nil, fmt.Errorf("hooks directory cannot be empty")
	}

	m := &Manager{
		hooksDir:       hooksDir,
		hooks:          make(map[Event][]*Hook),
		eventBus:       eventBus,
		programs:       make(map[string]*vm.Program),
		actionHandlers: make(map[Action]ActionHandler),
		stopWatcher:    make(chan struct{}),
	}
	RegisterBuiltInActions(m)
	return m, nil
}

// LoadHooks reads every .yaml/.yml file under the hooks directory. Files
// that fail to parse are skipped, not fatal.
func (m *Manager) LoadHooks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.hooksDir); os.IsNotExist(err) {
		if err := os.MkdirAll(m.hooksDir, 0o755); err != nil {
			return fmt.Errorf("failed to create hooks directory: %w", err)
		}
	}

	newHooks := make(map[Event][]*Hook)
	err := filepath.Walk(m.hooksDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || (!strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml")) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("failed to read hook file %s: %v", path, err)
			return nil
		}
		var hook Hook
		if err := yaml.Unmarshal(data, &hook); err != nil {
			log.Errorf("failed to parse hook %s: %v", path, err)
			return nil
		}
		hook.FilePath = path
		if hook.Enabled {
			newHooks[hook.Event] = append(newHooks[hook.Event], &hook)
			log.Debugf("loaded hook %s for event %s", hook.Name, hook.Event)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.hooks = newHooks
	m.programs = make(map[string]*vm.Program)

	log.Infof("loaded hooks for %d event types", len(m.hooks))
	return nil
}

// SubscribeToAllEvents wires the manager into the bus for every known event.
func (m *Manager) SubscribeToAllEvents() {
	for _, evt := range []Event{
		EventRunCompleted, EventRunFailed, EventExportCreated, EventHistoryWriteFailed,
	} {
		m.eventBus.Subscribe(evt, m.handleEvent)
	}
}

func (m *Manager) handleEvent(ctx *EventContext) {
	m.mu.RLock()
	hooks := m.hooks[ctx.Event]
	m.mu.RUnlock()

	for _, hook := range hooks {
		matches, err := m.evaluateCondition(hook.Condition, ctx)
		if err != nil {
			log.Warnf("failed to evaluate hook condition %q: %v", hook.Condition, err)
			continue
		}
		if matches {
			log.Infof("executing hook %s (action %s)", hook.Name, hook.Action)
			go m.executeAction(hook, ctx)
		}
	}
}

func (m *Manager) evaluateCondition(condition string, ctx *EventContext) (bool, error) {
	if condition == "" || condition == "true" {
		return true, nil
	}

	m.mu.Lock()
	program, exists := m.programs[condition]
	if !exists {
		var err error
		program, err = expr.Compile(condition)
		if err != nil {
			m.mu.Unlock()
			return false, err
		}
		m.programs[condition] = program
	}
	m.mu.Unlock()

	env := map[string]any{
		"Event":      string(ctx.Event),
		"Timestamp":  ctx.Timestamp,
		"Data":       ctx.Data,
		"SourceLang": ctx.SourceLang,
		"TargetLang": ctx.TargetLang,
	}
	if ctx.Error != nil {
		env["Error"] = ctx.Error.Error()
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not return boolean")
	}
	return result, nil
}

func (m *Manager) executeAction(hook *Hook, ctx *EventContext) {
	m.mu.RLock()
	handler, exists := m.actionHandlers[hook.Action]
	m.mu.RUnlock()

	if !exists {
		log.Warnf("no handler registered for action: %s", hook.Action)
		return
	}
	if err := handler(hook, ctx); err != nil {
		log.Errorf("action %s failed for hook %s: %v", hook.Action, hook.Name, err)
	}
}

// RegisterAction registers a handler for an action type.
func (m *Manager) RegisterAction(action Action, handler ActionHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionHandlers[action] = handler
}

// StartWatcher hot-reloads hooks when the directory changes.
func (m *Manager) StartWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	if err := m.watcher.Add(m.hooksDir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Infof("hooks directory changed (%s), reloading", event.Name)
					time.Sleep(100 * time.Millisecond)
					if err := m.LoadHooks(); err != nil {
						log.Errorf("failed to reload hooks: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("hooks watcher error: %v", err)
			case <-m.stopWatcher:
				return
			}
		}
	}()
	return nil
}

// StopWatcher stops the file watcher.
func (m *Manager) StopWatcher() {
	if m.watcher != nil {
		select {
		case <-m.stopWatcher:
		default:
			close(m.stopWatcher)
		}
		m.watcher.Close()
	}
}

// Hooks returns all loaded hooks.
func (m *Manager) Hooks() []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Hook, 0)
	for _, hooks := range m.hooks {
		result = append(result, hooks...)
	}
	return result
}

// EvaluateCondition exposes condition evaluation for testing.
func (m *Manager) EvaluateCondition(h *Hook, ctx *EventContext) (bool, error) {
	return m.evaluateCondition(h.Condition, ctx)
}
