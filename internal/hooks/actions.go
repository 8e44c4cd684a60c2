// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// RegisterBuiltInActions registers the default action handlers.
func RegisterBuiltInActions(m *Manager) {
	m.RegisterAction(ActionLogWarning, handleLogWarning)
	wh := NewWebhookHandler()
	m.RegisterAction(ActionNotifyWebhook, wh.Handle)
	m.RegisterAction(ActionRunCommand, handleRunCommand)
}

func handleLogWarning(hook *Hook, ctx *EventContext) error {
	msg, _ := hook.Params["message"].(string)
	if msg == "" {
		msg = "Hook triggered"
	}
	log.Warnf("[hook: %s] %s (event: %s)", hook.Name, msg, ctx.Event)
	return nil
}

// WebhookHandler posts event payloads to external URLs, rate limited per
// URL so a hot event cannot flood a receiver.
type WebhookHandler struct {
	mu           sync.Mutex
	rateLimiters map[string]*rateLimiter
}

type rateLimiter struct {
	count    int
	lastTime time.Time
}

func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{rateLimiters: make(map[string]*rateLimiter)}
}

func (h *WebhookHandler) Handle(hook *Hook, ctx *EventContext) error {
	url, _ := hook.Params["url"].(string)
	if url == "" {
		return fmt.Errorf("missing webhook url")
	}
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://localhost") && !strings.HasPrefix(url, "http://127.0.0.1") {
		return fmt.Errorf("insecure webhook url (must be https or localhost): %s", url)
	}
	if !h.checkRateLimit(url) {
		return fmt.Errorf("rate limit exceeded for webhook: %s", url)
	}

	secret, _ := hook.Params["secret"].(string)

	payload := map[string]any{
		"event":     ctx.Event,
		"timestamp": ctx.Timestamp,
		"hook_id":   hook.ID,
		"data":      ctx.Data,
	}
	if ctx.SourceLang != "" {
		payload["source_lang"] = ctx.SourceLang
	}
	if ctx.TargetLang != "" {
		payload["target_lang"] = ctx.TargetLang
	}
	if ctx.ErrorMessage != "" {
		payload["error"] = ctx.ErrorMessage
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// Three attempts with doubling backoff.
	backoff := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	var lastErr error
	for i := 0; i <= len(backoff); i++ {
		if i > 0 {
			time.Sleep(backoff[i-1])
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "NeuroTranslate-Hooks/1.0")
		if secret != "" {
			mac := hmac.New(sha256.New, []byte(secret))
			mac.Write(body)
			req.Header.Set("X-Hook-Signature", "sha256="+hex.EncodeToString(mac.Sum(nil)))
		}

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.Warnf("webhook attempt %d failed: %v", i+1, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			log.Warnf("webhook attempt %d failed with status: %d", i+1, resp.StatusCode)
			continue
		}
		return nil
	}
	return fmt.Errorf("webhook failed after retries: %v", lastErr)
}

func (h *WebhookHandler) checkRateLimit(url string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	limiter, exists := h.rateLimiters[url]
	if !exists {
		limiter = &rateLimiter{lastTime: now}
		h.rateLimiters[url] = limiter
	}
	if now.Sub(limiter.lastTime) > time.Minute {
		limiter.count = 0
		limiter.lastTime = now
	}
	if limiter.count >= 10 {
		return false
	}
	limiter.count++
	return true
}

func handleRunCommand(hook *Hook, ctx *EventContext) error {
	cmdStr, _ := hook.Params["command"].(string)
	if cmdStr == "" {
		return fmt.Errorf("missing command")
	}

	// Whitelisted binaries only.
	allowedCommands := []string{"echo", "logger", "notify-send"}
	cmdParts := strings.Fields(cmdStr)
	if len(cmdParts) == 0 {
		return fmt.Errorf("empty command")
	}

	isAllowed := false
	for _, allowed := range allowedCommands {
		if cmdParts[0] == allowed {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		return fmt.Errorf("command %q is not in the whitelist", cmdParts[0])
	}

	cmd := exec.Command(cmdParts[0], cmdParts[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("command failed: %v, output: %s", err, string(out))
	}
	return nil
}
