package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/recallweb/recall/internal/api/middleware"
	"github.com/recallweb/recall/internal/auth"
	"github.com/recallweb/recall/internal/config"
	"github.com/recallweb/recall/internal/conversation"
	"github.com/recallweb/recall/internal/search"
	"github.com/recallweb/recall/internal/usage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testIdentity = "a@b.com"

// harness wires a handler set against stub providers and exposes a router
// with the same route layout the server uses.
type harness struct {
	cfg      *config.Config
	handlers *Handlers
	router   *gin.Engine
	sessions *auth.Sessions
	store    *conversation.Store
	stats    *usage.Statistics
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.Search.CacheTTL = time.Hour
	if mutate != nil {
		mutate(cfg)
	}

	sessions, err := auth.NewSessions("test-secret", time.Hour)
	require.NoError(t, err)

	store := conversation.NewStore()
	stats := usage.NewStatistics()
	h := New(func() *config.Config { return cfg }, sessions, nil, search.NewCache(search.DefaultCacheConfig()), store, stats)

	router := gin.New()
	api := router.Group("/api", middleware.SessionAuth(sessions))
	api.POST("/chat", h.Chat)
	api.POST("/search", h.Search)
	api.GET("/memories", h.ListMemories)
	api.POST("/memories", h.CreateMemory)
	api.DELETE("/memories/:id", h.DeleteMemory)
	api.POST("/conversations", h.CreateConversation)
	api.GET("/conversations/:id", h.GetConversation)
	api.DELETE("/conversations/:id", h.DeleteConversation)
	api.GET("/usage", h.Usage)

	return &harness{cfg: cfg, handlers: h, router: router, sessions: sessions, store: store, stats: stats}
}

// do performs an authenticated request against the harness router.
func (hs *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := hs.sessions.Issue(testIdentity, "Test User")
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})

	rec := httptest.NewRecorder()
	hs.router.ServeHTTP(rec, req)
	return rec
}
