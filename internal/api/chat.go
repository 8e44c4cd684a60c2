// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/chat"
)

// sessionTable keeps one conversation window per chat session.
type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]*chat.Conversation
	maxTurns int
}

func newSessionTable(maxTurns int) *sessionTable {
	return &sessionTable{
		sessions: make(map[string]*chat.Conversation),
		maxTurns: maxTurns,
	}
}

// get returns the session's conversation, creating it on first use. An empty
// id gets a fresh session.
func (t *sessionTable) get(id string) (string, *chat.Conversation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	conv, ok := t.sessions[id]
	if !ok {
		conv = chat.NewConversation(t.maxTurns)
		t.sessions[id] = conv
	}
	return id, conv
}

func (t *sessionTable) reset(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// ChatRequest is one chat exchange. A missing session_id starts a new
// session; reset drops the session's transcript instead of replying.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Reset     bool   `json:"reset"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	SessionID string      `json:"session_id"`
	Reply     string      `json:"reply,omitempty"`
	History   []chat.Turn `json:"history"`
}

// handleChat handles POST /v1/chat.
func (s *Server) handleChat(c *gin.Context) {
	if s.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "chat assistant not configured",
		})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	if req.Reset {
		s.sessions.reset(req.SessionID)
		c.JSON(http.StatusOK, ChatResponse{SessionID: req.SessionID, History: []chat.Turn{}})
		return
	}

	id, conv := s.sessions.get(req.SessionID)
	reply, err := conv.Ask(c.Request.Context(), s.assistant, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: id,
		Reply:     reply,
		History:   conv.History(),
	})
}

// handleChatWS handles GET /v1/chat/ws. Each text frame is a user message;
// the reply comes back as a JSON frame on the same connection.
func (s *Server) handleChatWS(c *gin.Context) {
	if s.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "chat assistant not configured",
		})
		return
	}

	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("chat websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, conv := s.sessions.get(c.Query("session_id"))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply, err := conv.Ask(c.Request.Context(), s.assistant, string(data))
		if err != nil {
			if werr := conn.WriteJSON(gin.H{"session_id": id, "error": err.Error()}); werr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(gin.H{"session_id": id, "reply": reply}); err != nil {
			return
		}
	}
}
