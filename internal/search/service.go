package search

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/api/middleware"
)

// QueryRecorder records a submitted query into the caller's memory store.
// The search service only needs the write path of the memory adapter.
type QueryRecorder interface {
	Add(ctx context.Context, content string, tags []string) (string, error)
}

// Service is the orchestrated search entry point: it records the query as a
// memory for the user, then returns results from the cache or the provider.
type Service struct {
	client   *Client
	cache    *Cache
	recorder QueryRecorder
}

// NewService wires the search client, query cache and memory recorder.
// recorder may be nil, in which case queries are not captured as memories.
func NewService(client *Client, cache *Cache, recorder QueryRecorder) *Service {
	return &Service{client: client, cache: cache, recorder: recorder}
}

// Results returns the search envelope for query scoped to identity, or nil
// when the query or identity is absent (no network call is made then).
//
// The query is recorded as a memory best-effort before the search: the
// recorded interest is independent of whether the search itself succeeds,
// so recorder failures are logged and never surfaced.
func (s *Service) Results(ctx context.Context, query, identity string) (*Response, error) {
	if query == "" || identity == "" {
		return nil, nil
	}

	s.recordQuery(query, identity)

	if cached := s.cache.Get(query); cached != nil {
		middleware.RecordSearchCacheHit()
		log.WithField("query", query).Debug("search cache hit")
		return cached, nil
	}
	middleware.RecordSearchCacheMiss()

	envelope, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cache.Set(query, envelope)
	return envelope, nil
}

// recordQuery writes the query into the user's memory store without blocking
// the search path. A detached context keeps the write alive past the request.
func (s *Service) recordQuery(query, identity string) {
	if s.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := s.recorder.Add(ctx, query, []string{identity}); err != nil {
			log.WithError(err).Error("error creating memory")
		}
	}()
}
