// Package memory provides the client adapter for the external memory
// service. All operations are scoped by container tags carrying the user's
// identity; cross-user visibility must never occur.
package memory

import "strings"

// Placeholder is the content returned when a document carries no usable text.
const Placeholder = "No memory content"

// Chunk is one retrieved fragment of a document.
type Chunk struct {
	Content string `json:"content"`
}

// Document is the optional-field record the service returns. Which fields
// are populated depends on the endpoint and on how far the service got with
// summarization, so readers go through the ordered resolution functions
// below instead of probing fields directly.
type Document struct {
	ID      string  `json:"id"`
	Title   string  `json:"title,omitempty"`
	Summary string  `json:"summary,omitempty"`
	Content string  `json:"content,omitempty"`
	Chunks  []Chunk `json:"chunks,omitempty"`
}

// Resolve returns the document's text following the canonical priority:
// content, then summary, then title, then joined chunk contents, then the
// placeholder. Used wherever the caller asked for the memory itself.
func (d Document) Resolve() string {
	if s := strings.TrimSpace(d.Content); s != "" {
		return d.Content
	}
	if s := strings.TrimSpace(d.Summary); s != "" {
		return d.Summary
	}
	if s := strings.TrimSpace(d.Title); s != "" {
		return d.Title
	}
	if joined := d.joinChunks(); joined != "" {
		return joined
	}
	return Placeholder
}

// ResolveSummaryFirst prefers the generated summary over raw content:
// summary, then title, then content, then placeholder. The management list
// uses this so long documents render as their short form.
func (d Document) ResolveSummaryFirst() string {
	if s := strings.TrimSpace(d.Summary); s != "" {
		return d.Summary
	}
	if s := strings.TrimSpace(d.Title); s != "" {
		return d.Title
	}
	if s := strings.TrimSpace(d.Content); s != "" {
		return d.Content
	}
	return Placeholder
}

// ResolveForGrounding resolves a semantic-search hit for prompt grounding:
// summary, then title, then joined chunk contents, then placeholder. Search
// hits carry chunks rather than full content.
func (d Document) ResolveForGrounding() string {
	if s := strings.TrimSpace(d.Summary); s != "" {
		return d.Summary
	}
	if s := strings.TrimSpace(d.Title); s != "" {
		return d.Title
	}
	if joined := d.joinChunks(); joined != "" {
		return joined
	}
	return Placeholder
}

func (d Document) joinChunks() string {
	if len(d.Chunks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(d.Chunks))
	for _, chunk := range d.Chunks {
		parts = append(parts, chunk.Content)
	}
	joined := strings.Join(parts, "\n")
	if strings.TrimSpace(joined) == "" {
		return ""
	}
	return joined
}
