// Package usage collects in-memory request statistics and approximate token
// counts for chat turns. Nothing here persists; the snapshot backs the
// /api/usage endpoint.
package usage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tiktoken-go/tokenizer"
)

var statisticsEnabled atomic.Bool

func init() {
	statisticsEnabled.Store(true)
}

// SetStatisticsEnabled toggles whether statistics are recorded.
func SetStatisticsEnabled(enabled bool) { statisticsEnabled.Store(enabled) }

// StatisticsEnabled reports the current recording state.
func StatisticsEnabled() bool { return statisticsEnabled.Load() }

// RouteStats aggregates request counters for one route.
type RouteStats struct {
	Requests       int64 `json:"requests"`
	Errors         int64 `json:"errors"`
	TotalLatencyMS int64 `json:"total_latency_ms"`
}

// ChatStats aggregates chat-turn token accounting.
type ChatStats struct {
	Turns            int64 `json:"turns"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// Snapshot is the JSON shape served by the usage endpoint.
type Snapshot struct {
	Routes     map[string]RouteStats `json:"routes"`
	ByIdentity map[string]ChatStats  `json:"by_identity"`
	Totals     ChatStats             `json:"totals"`
}

// Statistics maintains aggregated request metrics in memory.
type Statistics struct {
	mu         sync.Mutex
	routes     map[string]*RouteStats
	byIdentity map[string]*ChatStats
	totals     ChatStats
}

// NewStatistics creates an empty statistics store.
func NewStatistics() *Statistics {
	return &Statistics{
		routes:     make(map[string]*RouteStats),
		byIdentity: make(map[string]*ChatStats),
	}
}

// RecordRequest aggregates one handled request.
func (s *Statistics) RecordRequest(route string, status int, latency time.Duration) {
	if !statisticsEnabled.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.routes[route]
	if !ok {
		stats = &RouteStats{}
		s.routes[route] = stats
	}
	stats.Requests++
	if status >= 400 {
		stats.Errors++
	}
	stats.TotalLatencyMS += latency.Milliseconds()
}

// RecordChatTurn aggregates token counts for one completed chat turn.
func (s *Statistics) RecordChatTurn(identity, promptText, completionText string) {
	if !statisticsEnabled.Load() {
		return
	}
	promptTokens := int64(CountTokens(promptText))
	completionTokens := int64(CountTokens(completionText))

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.byIdentity[identity]
	if !ok {
		stats = &ChatStats{}
		s.byIdentity[identity] = stats
	}
	stats.Turns++
	stats.PromptTokens += promptTokens
	stats.CompletionTokens += completionTokens

	s.totals.Turns++
	s.totals.PromptTokens += promptTokens
	s.totals.CompletionTokens += completionTokens
}

// Snapshot returns a copy of the aggregates for serving.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Routes:     make(map[string]RouteStats, len(s.routes)),
		ByIdentity: make(map[string]ChatStats, len(s.byIdentity)),
		Totals:     s.totals,
	}
	for route, stats := range s.routes {
		snap.Routes[route] = *stats
	}
	for identity, stats := range s.byIdentity {
		snap.ByIdentity[identity] = *stats
	}
	return snap
}

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens approximates the token count of text with the gpt-4o BPE
// encoding, falling back to the characters/4 heuristic when the tokenizer
// is unavailable.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	codecOnce.Do(func() {
		if enc, err := tokenizer.ForModel(tokenizer.GPT4o); err == nil {
			codec = enc
		}
	})
	if codec != nil {
		if _, tokens, err := codec.Encode(text); err == nil {
			return len(tokens)
		}
	}
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}
