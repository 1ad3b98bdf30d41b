package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Client talks to a supermemory-compatible REST service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a memory-service client. An empty apiKey is allowed;
// Configured lets callers decide how to report it.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client has a service key.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Add appends a memory under the given container tags and returns its id.
// Empty content or tags short-circuit to a no-op without a network call.
func (c *Client) Add(ctx context.Context, content string, tags []string) (string, error) {
	if content == "" || len(tags) == 0 {
		return "", nil
	}

	body, _ := sjson.Set("", "content", content)
	body, _ = sjson.Set(body, "containerTags", tags)

	raw, err := c.do(ctx, http.MethodPost, "/memories", []byte(body))
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(raw, "id").String(), nil
}

// List returns the user's memories in the order the service provides.
// Entries are partial documents; use Get to hydrate a single memory.
func (c *Client) List(ctx context.Context, tags []string) ([]Document, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	body, _ := sjson.Set("", "containerTags", tags)

	raw, err := c.do(ctx, http.MethodPost, "/memories/list", []byte(body))
	if err != nil {
		return nil, err
	}

	var docs []Document
	gjson.GetBytes(raw, "memories").ForEach(func(_, item gjson.Result) bool {
		docs = append(docs, documentFromJSON(item))
		return true
	})
	return docs, nil
}

// Get returns the full document for one memory id.
func (c *Client) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, nil
	}

	raw, err := c.do(ctx, http.MethodGet, "/memories/"+url.PathEscape(id), nil)
	if err != nil {
		return Document{}, err
	}
	return documentFromJSON(gjson.ParseBytes(raw)), nil
}

// Delete removes a memory. Failures are logged and reported as false so the
// caller can reflect them as a null result; nothing is ever raised.
func (c *Client) Delete(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}

	if _, err := c.do(ctx, http.MethodDelete, "/memories/"+url.PathEscape(id), nil); err != nil {
		log.WithError(err).WithField("memory_id", id).Error("error deleting memory")
		return false
	}
	return true
}

// Search returns ranked relevant memories for the semantic query, scoped by
// tags. This is the only retrieval path used during a chat turn.
func (c *Client) Search(ctx context.Context, semanticQuery string, tags []string) ([]Document, error) {
	if semanticQuery == "" || len(tags) == 0 {
		return nil, nil
	}

	body, _ := sjson.Set("", "q", semanticQuery)
	body, _ = sjson.Set(body, "containerTags", tags)

	raw, err := c.do(ctx, http.MethodPost, "/search", []byte(body))
	if err != nil {
		return nil, err
	}

	var docs []Document
	gjson.GetBytes(raw, "results").ForEach(func(_, item gjson.Result) bool {
		docs = append(docs, documentFromJSON(item))
		return true
	})
	return docs, nil
}

// documentFromJSON probes the service's duck-typed payloads into the
// optional-field record. Search hits carry documentId instead of id.
func documentFromJSON(item gjson.Result) Document {
	doc := Document{
		ID:      item.Get("id").String(),
		Title:   item.Get("title").String(),
		Summary: item.Get("summary").String(),
		Content: item.Get("content").String(),
	}
	if doc.ID == "" {
		doc.ID = item.Get("documentId").String()
	}
	item.Get("chunks").ForEach(func(_, chunk gjson.Result) bool {
		doc.Chunks = append(doc.Chunks, Chunk{Content: chunk.Get("content").String()})
		return true
	})
	return doc
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("memory: missing service API key")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("memory: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("memory: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("memory: service returned %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
