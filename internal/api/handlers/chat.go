package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/api/middleware"
	"github.com/recallweb/recall/internal/chat"
	"github.com/recallweb/recall/internal/conversation"
	"github.com/recallweb/recall/internal/search"
)

// chatRequest is the body of POST /api/chat. Data carries the search
// envelope captured during this turn's own search step so the grounding
// prompt never mixes stale results across turns.
type chatRequest struct {
	Data  json.RawMessage `json:"data"`
	Input string          `json:"input"`

	// Conversation optionally names a server-side conversation whose
	// message log and submission gate apply to this turn.
	Conversation string `json:"conversation,omitempty"`
}

// Chat handles POST /api/chat: validate, ground, assemble, stream.
func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}
	if len(req.Data) == 0 || bytes.Equal(bytes.TrimSpace(req.Data), []byte("null")) || req.Input == "" {
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	identity := middleware.Identity(c)
	if identity == "" {
		c.String(http.StatusBadRequest, "User email is required")
		return
	}

	cfg := h.getCfg()
	if cfg.OpenAI.APIKey == "" || cfg.Memory.APIKey == "" {
		log.WithFields(log.Fields{
			"openai_key_present": cfg.OpenAI.APIKey != "",
			"memory_key_present": cfg.Memory.APIKey != "",
		}).Error("missing API keys")
		c.String(http.StatusInternalServerError, "Missing API keys")
		return
	}

	var data search.Response
	if err := json.Unmarshal(req.Data, &data); err != nil {
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	var session *conversation.Session
	if req.Conversation != "" {
		found, ok := h.conversations.Get(req.Conversation)
		if !ok {
			c.String(http.StatusNotFound, "Unknown conversation")
			return
		}
		if err := found.BeginTurn(req.Input); err != nil {
			c.String(http.StatusConflict, "A response is already in progress")
			return
		}
		session = found
	}

	orchestrator := h.orchestrator()
	ctx := c.Request.Context()

	grounding, err := orchestrator.GroundingBlock(ctx, req.Input, identity)
	if err != nil {
		log.WithError(err).Error("grounding failed")
		if session != nil {
			session.FailTurn()
		}
		c.String(http.StatusBadGateway, "Upstream failure")
		return
	}

	messages := chat.BuildMessages(grounding, &data, req.Input)

	relay := newStreamRelay(c)
	middleware.StreamStarted()
	defer middleware.StreamEnded()

	completion, err := orchestrator.Stream(ctx, messages, relay.WriteDelta)
	if err != nil {
		log.WithError(err).Error("chat stream failed")
		if session != nil {
			session.FailTurn()
		}
		if !relay.Started() {
			c.String(http.StatusBadGateway, "Upstream failure")
		}
		// Mid-stream failures end the response as-is; the client sees a
		// stopped answer rather than a late status change.
		return
	}

	if session != nil {
		session.CompleteTurn(completion)
	}
	h.stats.RecordChatTurn(identity, promptText(messages), completion)
}

// promptText flattens the prompt messages for token accounting.
func promptText(messages []openai.ChatCompletionMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}
