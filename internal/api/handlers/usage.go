package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Usage handles GET /api/usage with a point-in-time statistics snapshot.
func (h *Handlers) Usage(c *gin.Context) {
	if h.stats == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.stats.Snapshot())
}
