package pipeline

import (
	"context"
	"fmt"
)

// ChunkFunc splits text into chunks. Paths are "<basePath>_<index>".
type ChunkFunc func(text string, basePath string) ([]ChunkWithPath, error)

// EmbedFunc generates the embedding of a text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// CompleteFunc returns the chat model answer for a completion request.
type CompleteFunc func(ctx context.Context, completion Completion) (string, error)

// Completion is a single system + user prompt exchange.
// MaxTokens <= 0 leaves the limit to the provider.
type Completion struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// ChunkWithPath represents a chunk with its identifier path
type ChunkWithPath struct {
	Content    string
	Path       string
	ChunkIndex int
}

// EmbeddedChunk is a chunk with its embedding.
type EmbeddedChunk struct {
	ChunkWithPath
	Embedding []float32
}

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process chunks text and embeds every chunk in order. The first embedding
// error aborts processing.
func (p *Pipeline) Process(ctx context.Context, text string, basePath string) ([]*EmbeddedChunk, error) {
	if p.Chunker == nil || p.Embedder == nil {
		return nil, fmt.Errorf("pipeline needs a chunker and an embedder")
	}

	chunks, err := p.Chunker(text, basePath)
	if err != nil {
		return nil, err
	}

	embedded := make([]*EmbeddedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := p.Embedder(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %s: %w", chunk.Path, err)
		}

		embedded = append(embedded, &EmbeddedChunk{
			ChunkWithPath: chunk,
			Embedding:     embedding,
		})
	}

	return embedded, nil
}
