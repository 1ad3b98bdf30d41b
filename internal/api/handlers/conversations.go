package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createConversationRequest struct {
	// Query optionally seeds the conversation with an entry query that the
	// client auto-submits exactly once.
	Query string `json:"query,omitempty"`
}

// CreateConversation handles POST /api/conversations.
func (h *Handlers) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	session := h.conversations.Create(req.Query)
	c.JSON(http.StatusCreated, gin.H{"id": session.ID()})
}

// GetConversation handles GET /api/conversations/:id. The auto_submit
// field carries the entry query on the first fetch only; re-renders never
// see it again.
func (h *Handlers) GetConversation(c *gin.Context) {
	session, ok := h.conversations.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown conversation"})
		return
	}

	autoSubmit := ""
	if query, fire := session.TakeInitialQuery(); fire {
		autoSubmit = query
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          session.ID(),
		"messages":    session.Messages(),
		"loading":     session.Loading(),
		"auto_submit": autoSubmit,
	})
}

// DeleteConversation handles DELETE /api/conversations/:id.
func (h *Handlers) DeleteConversation(c *gin.Context) {
	h.conversations.Drop(c.Param("id"))
	c.Status(http.StatusNoContent)
}
