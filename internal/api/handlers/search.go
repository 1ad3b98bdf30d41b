package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/api/middleware"
)

type searchRequest struct {
	Query string `json:"query"`
}

// Search handles POST /api/search: the server-side search action. A null
// adapter result (missing query) maps to 204 so the client can distinguish
// "nothing to do" from a provider failure.
func (h *Handlers) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	envelope, err := h.searchService().Results(c.Request.Context(), req.Query, middleware.Identity(c))
	if err != nil {
		log.WithError(err).WithField("query", req.Query).Error("search failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	if envelope == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, envelope)
}
