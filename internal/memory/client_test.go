package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is an in-memory stand-in for the memory service.
type fakeService struct {
	mu     sync.Mutex
	nextID int
	docs   map[string]map[string]any

	lastSearchBody map[string]any
}

func newFakeService() *fakeService {
	return &fakeService{docs: make(map[string]map[string]any)}
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /memories", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.nextID++
		id := fmt.Sprintf("mem-%d", f.nextID)
		f.docs[id] = map[string]any{"id": id, "content": body["content"], "containerTags": body["containerTags"]}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
	})
	mux.HandleFunc("POST /memories/list", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		items := make([]map[string]any, 0, len(f.docs))
		for _, doc := range f.docs {
			items = append(items, doc)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"memories": items})
	})
	mux.HandleFunc("GET /memories/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		doc, ok := f.docs[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("DELETE /memories/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.docs[r.PathValue("id")]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		delete(f.docs, r.PathValue("id"))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /search", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.lastSearchBody = body
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"documentId": "doc-1", "summary": "knows Go", "chunks": []map[string]any{{"content": "ignored"}}},
			{"documentId": "doc-2", "chunks": []map[string]any{{"content": "c1"}, {"content": "c2"}}},
		}})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeService) {
	t.Helper()
	svc := newFakeService()
	server := httptest.NewServer(svc.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key"), svc
}

func TestAddThenGetRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	id, err := client.Add(ctx, "remember this", []string{"a@b.com"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := client.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "remember this", doc.Resolve())
}

func TestAddGuardsShortCircuit(t *testing.T) {
	client, svc := newTestClient(t)
	ctx := context.Background()

	id, err := client.Add(ctx, "", []string{"a@b.com"})
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = client.Add(ctx, "content", nil)
	require.NoError(t, err)
	assert.Empty(t, id)

	assert.Empty(t, svc.docs, "guarded calls must not reach the service")
}

func TestListReturnsStoredMemories(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.Add(ctx, "first", []string{"a@b.com"})
	require.NoError(t, err)
	_, err = client.Add(ctx, "second", []string{"a@b.com"})
	require.NoError(t, err)

	docs, err := client.List(ctx, []string{"a@b.com"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = client.List(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, docs, "missing identity must be a no-op")
}

func TestDeleteReportsFailureAsFalse(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	id, err := client.Add(ctx, "to delete", []string{"a@b.com"})
	require.NoError(t, err)

	assert.True(t, client.Delete(ctx, id))
	assert.False(t, client.Delete(ctx, id), "second delete hits a missing id")
	assert.False(t, client.Delete(ctx, "never-existed"))
	assert.False(t, client.Delete(ctx, ""))
}

func TestSearchScopesByTags(t *testing.T) {
	client, svc := newTestClient(t)
	ctx := context.Background()

	docs, err := client.Search(ctx, "What do you know about go", []string{"a@b.com", "opensearch"})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "knows Go", docs[0].ResolveForGrounding())
	assert.Equal(t, "c1\nc2", docs[1].ResolveForGrounding())

	require.NotNil(t, svc.lastSearchBody)
	assert.Equal(t, "What do you know about go", svc.lastSearchBody["q"])
	assert.Equal(t, []any{"a@b.com", "opensearch"}, svc.lastSearchBody["containerTags"])
}

func TestSearchGuards(t *testing.T) {
	client, svc := newTestClient(t)
	ctx := context.Background()

	docs, err := client.Search(ctx, "", []string{"a@b.com"})
	require.NoError(t, err)
	assert.Nil(t, docs)

	docs, err = client.Search(ctx, "query", nil)
	require.NoError(t, err)
	assert.Nil(t, docs)

	assert.Nil(t, svc.lastSearchBody)
}

func TestUnconfiguredClientErrors(t *testing.T) {
	client := NewClient("http://localhost:0", "")

	_, err := client.Add(context.Background(), "content", []string{"a@b.com"})
	assert.Error(t, err)
	assert.False(t, client.Configured())
}
