// Package handlers implements the HTTP surface: the chat streaming relay,
// the search action, memory management, conversations, sign-in and usage.
package handlers

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/recallweb/recall/internal/auth"
	"github.com/recallweb/recall/internal/chat"
	"github.com/recallweb/recall/internal/config"
	"github.com/recallweb/recall/internal/conversation"
	"github.com/recallweb/recall/internal/memory"
	"github.com/recallweb/recall/internal/search"
	"github.com/recallweb/recall/internal/usage"
)

// Handlers carries the long-lived dependencies. Provider clients are
// rebuilt per request from the current config so key changes picked up by
// the config watcher apply without a restart; the caches and stores
// persist for the life of the process.
type Handlers struct {
	getCfg        func() *config.Config
	sessions      *auth.Sessions
	google        *auth.Google
	cache         *search.Cache
	conversations *conversation.Store
	stats         *usage.Statistics
}

// New wires the handler set. sessions may be nil when no session secret is
// configured; authenticated routes then answer 500.
func New(getCfg func() *config.Config, sessions *auth.Sessions, google *auth.Google, cache *search.Cache, conversations *conversation.Store, stats *usage.Statistics) *Handlers {
	return &Handlers{
		getCfg:        getCfg,
		sessions:      sessions,
		google:        google,
		cache:         cache,
		conversations: conversations,
		stats:         stats,
	}
}

// Sessions exposes the session signer for middleware wiring.
func (h *Handlers) Sessions() *auth.Sessions { return h.sessions }

func (h *Handlers) memoryClient() *memory.Client {
	cfg := h.getCfg()
	return memory.NewClient(cfg.Memory.BaseURL, cfg.Memory.APIKey)
}

func (h *Handlers) searchService() *search.Service {
	cfg := h.getCfg()
	return search.NewService(search.NewClient(cfg.Search.Endpoint, cfg.Search.APIKey), h.cache, h.memoryClient())
}

func (h *Handlers) orchestrator() *chat.Orchestrator {
	cfg := h.getCfg()
	llmCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		llmCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	return chat.NewOrchestrator(h.memoryClient(), openai.NewClientWithConfig(llmCfg), cfg.OpenAI.Model, cfg.Memory.DiscoveryTag)
}
