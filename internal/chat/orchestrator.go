// Package chat implements the per-turn orchestration: grounding the user's
// query against the memory service, assembling the system/user prompt from
// memories and search results, and relaying the streamed completion.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/memory"
	"github.com/recallweb/recall/internal/search"
)

// GroundingPrefix is prepended to the user's input to form the semantic
// query sent to the memory service.
const GroundingPrefix = "What do you know about "

// noQuestion substitutes for an absent user input in the prompt.
const noQuestion = "No question"

// MemorySearcher is the retrieval path used during a chat turn. List/Get
// are deliberately absent: they serve the management surface only.
type MemorySearcher interface {
	Search(ctx context.Context, semanticQuery string, tags []string) ([]memory.Document, error)
}

// Orchestrator runs one chat turn end to end.
type Orchestrator struct {
	memories     MemorySearcher
	llm          *openai.Client
	model        string
	discoveryTag string
}

// NewOrchestrator wires the memory retrieval path and the model client.
func NewOrchestrator(memories MemorySearcher, llm *openai.Client, model, discoveryTag string) *Orchestrator {
	return &Orchestrator{
		memories:     memories,
		llm:          llm,
		model:        model,
		discoveryTag: discoveryTag,
	}
}

// GroundingBlock retrieves memories relevant to the input and concatenates
// their resolved contents with blank-line separators.
func (o *Orchestrator) GroundingBlock(ctx context.Context, input, identity string) (string, error) {
	docs, err := o.memories.Search(ctx, GroundingPrefix+input, []string{identity, o.discoveryTag})
	if err != nil {
		return "", fmt.Errorf("chat: memory search failed: %w", err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.ResolveForGrounding())
	}
	return strings.Join(parts, "\n\n"), nil
}

// BuildMessages assembles the two-message prompt: a system message embedding
// the grounding block and every search hit flattened as
// "title\n\ndescription\n\nurl\n\n", and a user message with the literal input.
func BuildMessages(grounding string, data *search.Response, input string) []openai.ChatCompletionMessage {
	hits := make([]string, 0, len(data.Web.Results))
	for _, result := range data.Web.Results {
		hits = append(hits, fmt.Sprintf("%s\n\n%s\n\n%s\n\n", result.Title, result.Description, result.URL))
	}

	system := fmt.Sprintf(
		"You are a search assistant that answers the user query based on search results. "+
			"We already know this about the user, try to tell the user about this showing up!: %s. "+
			"Give answers in markdown format. the search results are %s",
		grounding, strings.Join(hits, " "))

	userContent := input
	if userContent == "" {
		userContent = noQuestion
	}

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: userContent},
	}
}

// Stream requests the completion for the assembled messages and forwards
// each content delta to sink as soon as it arrives. It returns the full
// completion text for usage accounting. Nothing is buffered: the first
// token reaches sink as soon as the provider emits it.
func (o *Orchestrator) Stream(ctx context.Context, messages []openai.ChatCompletionMessage, sink func(delta string) error) (string, error) {
	stream, err := o.llm.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("chat: completion request failed: %w", err)
	}
	defer func() { _ = stream.Close() }()

	var full strings.Builder
	for {
		chunk, errRecv := stream.Recv()
		if errors.Is(errRecv, io.EOF) {
			break
		}
		if errRecv != nil {
			// Mid-stream failure: the client sees a stopped response.
			log.WithError(errRecv).Error("completion stream interrupted")
			return full.String(), fmt.Errorf("chat: stream interrupted: %w", errRecv)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if errSink := sink(delta); errSink != nil {
			return full.String(), fmt.Errorf("chat: client write failed: %w", errSink)
		}
	}
	return full.String(), nil
}
