package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/recallweb/recall/internal/api/middleware"
)

// hydrationParallelism bounds the concurrent per-memory Get calls when
// hydrating the management list.
const hydrationParallelism = 8

// memoryView is the management-surface shape of one memory.
type memoryView struct {
	ID     string `json:"id"`
	Memory string `json:"memory"`
}

// ListMemories handles GET /api/memories. Each list entry is hydrated with
// a full Get so the summary-first resolution has every field available; a
// single hydration failure fails the whole operation (null semantics).
func (h *Handlers) ListMemories(c *gin.Context) {
	identity := middleware.Identity(c)
	client := h.memoryClient()
	ctx := c.Request.Context()

	listed, err := client.List(ctx, []string{identity})
	if err != nil {
		log.WithError(err).Error("error getting memories")
		middleware.RecordMemoryCall("list", false)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load memories"})
		return
	}

	views := make([]memoryView, len(listed))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(hydrationParallelism)
	for i, item := range listed {
		group.Go(func() error {
			full, errGet := client.Get(groupCtx, item.ID)
			if errGet != nil {
				return errGet
			}
			// The list entry may carry a title the full document lacks.
			if full.Title == "" {
				full.Title = item.Title
			}
			views[i] = memoryView{ID: item.ID, Memory: full.ResolveSummaryFirst()}
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		log.WithError(err).Error("error getting memories")
		middleware.RecordMemoryCall("list", false)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load memories"})
		return
	}

	middleware.RecordMemoryCall("list", true)
	c.JSON(http.StatusOK, views)
}

type createMemoryRequest struct {
	Text string `json:"text"`
}

// CreateMemory handles POST /api/memories: an explicit user-intent write.
// Failures surface as a null result so the UI can reflect them, unlike the
// best-effort query capture in the search path.
func (h *Handlers) CreateMemory(c *gin.Context) {
	var req createMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	identity := middleware.Identity(c)
	client := h.memoryClient()
	ctx := c.Request.Context()

	id, err := client.Add(ctx, req.Text, []string{identity})
	if err != nil || id == "" {
		log.WithError(err).Error("error creating memory")
		middleware.RecordMemoryCall("add", false)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create memory"})
		return
	}

	doc, err := client.Get(ctx, id)
	if err != nil {
		log.WithError(err).Error("error creating memory")
		middleware.RecordMemoryCall("add", false)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not create memory"})
		return
	}
	if doc.ID == "" {
		doc.ID = id
	}

	middleware.RecordMemoryCall("add", true)
	c.JSON(http.StatusOK, memoryView{ID: doc.ID, Memory: doc.Resolve()})
}

// DeleteMemory handles DELETE /api/memories/:id. The adapter swallows the
// failure and reports it as a null result; here that becomes a 502 with an
// error body the UI can render.
func (h *Handlers) DeleteMemory(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memory id is required"})
		return
	}

	if ok := h.memoryClient().Delete(c.Request.Context(), id); !ok {
		middleware.RecordMemoryCall("delete", false)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not delete memory"})
		return
	}
	middleware.RecordMemoryCall("delete", true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
