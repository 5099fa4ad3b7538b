package retrieval

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/siherrmann/meetgraph/core/graph"
	graphmock "github.com/siherrmann/meetgraph/core/graph/mock"
	"github.com/siherrmann/meetgraph/core/ingest"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/core/vector"
	vectormock "github.com/siherrmann/meetgraph/core/vector/mock"
	"github.com/siherrmann/meetgraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter answers keyword requests with keywords and everything else
// with answer. It records every completion.
type fakeCompleter struct {
	mu          sync.Mutex
	keywords    string
	answer      string
	err         error
	completions []pipeline.Completion
}

func (f *fakeCompleter) Complete(ctx context.Context, completion pipeline.Completion) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, completion)

	if f.err != nil {
		return "", f.err
	}
	if completion.System == KeywordPrompt {
		return f.keywords, nil
	}
	return f.answer, nil
}

func (f *fakeCompleter) last() pipeline.Completion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completions[len(f.completions)-1]
}

// lengthEmbed maps text to a 2 dimensional vector that only depends on its length.
func lengthEmbed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, float32(len(text)%7) + 1}, nil
}

func testVectorConfig() model.VectorConfig {
	config := model.DefaultVectorConfig()
	config.Dimension = 2
	config.ChunkSize = 200
	config.EmbedInterval = 0
	config.BatchInterval = 0
	config.DeleteWait = 0
	config.ReadyInitialWait = 0
	config.ReadyPollInterval = time.Millisecond
	return config
}

func initVectors(t *testing.T, embed pipeline.EmbedFunc) *vector.Store {
	ctx := context.Background()

	store, err := vector.NewStore(ctx, vectormock.NewIndex("meeting-analysis"), embed, testVectorConfig(), false, nil)
	require.NoError(t, err)

	_, err = store.StoreText(ctx, "meeting_notes.txt", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ingest.SampleMeetingNotes)
	require.NoError(t, err)
	return store
}

func initGraph(t *testing.T) graph.Store {
	store := graphmock.NewStore()
	_, err := ingest.NewAgent(store, pipeline.SeedPolicy(), nil).Seed(context.Background())
	require.NoError(t, err)
	return store
}

func TestEngineQuery(t *testing.T) {
	ctx := context.Background()
	vectors := initVectors(t, lengthEmbed)
	graphStore := initGraph(t)

	t.Run("Answer with vector and graph sources", func(t *testing.T) {
		completer := &fakeCompleter{keywords: " Neo4j , Integration Framework,", answer: "The team integrates Neo4j."}
		engine := NewEngine(vectors, graphStore, completer.Complete, model.DefaultQueryConfig(), nil)

		result := engine.Query(ctx, "What was decided about Neo4j?")

		assert.Empty(t, result.Error)
		assert.Equal(t, "The team integrates Neo4j.", result.Response)
		assert.Len(t, result.VectorResults, 3, "Expected top 3 vector matches")
		for _, v := range result.VectorResults {
			assert.Equal(t, "meeting_notes.txt", v.File)
			assert.NotEmpty(t, v.Content)
		}
		require.NotEmpty(t, result.GraphResults)
		for _, g := range result.GraphResults {
			content := strings.ToLower(g.Content)
			assert.True(t, strings.Contains(content, "neo4j") || strings.Contains(content, "integration framework"))
		}
	})

	t.Run("Completions use the configured prompts", func(t *testing.T) {
		completer := &fakeCompleter{keywords: "neo4j", answer: "ok"}
		engine := NewEngine(vectors, graphStore, completer.Complete, model.DefaultQueryConfig(), nil)

		engine.Query(ctx, "What about Neo4j?")

		require.Len(t, completer.completions, 2)
		keyword := completer.completions[0]
		assert.Equal(t, KeywordPrompt, keyword.System)
		assert.Equal(t, "What about Neo4j?", keyword.Prompt)
		assert.Equal(t, 0.3, keyword.Temperature)

		synthesis := completer.last()
		assert.Equal(t, AnalystPrompt, synthesis.System)
		assert.Equal(t, 0.7, synthesis.Temperature)
		assert.Equal(t, 1000, synthesis.MaxTokens)
		assert.True(t, strings.HasPrefix(synthesis.Prompt, "Context from vector search:\nRelevant meeting notes:\n- "))
		assert.Contains(t, synthesis.Prompt, "Context from graph database:\nRelevant discussion points:\nMeeting: ")
		assert.True(t, strings.HasSuffix(synthesis.Prompt, "\n\nQuestion: What about Neo4j?"))
	})

	t.Run("Embedder failure becomes a structured result", func(t *testing.T) {
		failing := initVectors(t, lengthEmbed)
		failing = mustStoreWithEmbed(t, failing, func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("embedding service unavailable")
		})
		completer := &fakeCompleter{keywords: "neo4j", answer: "unused"}
		engine := NewEngine(failing, graphStore, completer.Complete, model.DefaultQueryConfig(), nil)

		result := engine.Query(ctx, "What about Neo4j?")

		assert.Contains(t, result.Error, "embedding service unavailable")
		assert.True(t, strings.HasPrefix(result.Response, ErrorResponse))
		assert.Contains(t, result.Response, "embedding service unavailable")
		assert.Nil(t, result.VectorResults)
		assert.Nil(t, result.GraphResults)
	})

	t.Run("Completion failure becomes a structured result", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("rate limited")}
		engine := NewEngine(vectors, graphStore, completer.Complete, model.DefaultQueryConfig(), nil)

		result := engine.Query(ctx, "What about Neo4j?")

		assert.Contains(t, result.Error, "rate limited")
		assert.Equal(t, ErrorResponse+result.Error, result.Response)
	})

	t.Run("Graph failure becomes a structured result", func(t *testing.T) {
		broken := graphmock.NewStore()
		broken.FailOn["SearchDiscussions"] = errors.New("connection refused")
		completer := &fakeCompleter{keywords: "neo4j", answer: "unused"}
		engine := NewEngine(vectors, broken, completer.Complete, model.DefaultQueryConfig(), nil)

		result := engine.Query(ctx, "What about Neo4j?")

		assert.Contains(t, result.Error, "connection refused")
	})
}

// mustStoreWithEmbed returns a store over the same index using embed for queries.
func mustStoreWithEmbed(t *testing.T, store *vector.Store, embed pipeline.EmbedFunc) *vector.Store {
	config := store.Config
	restored, err := vector.NewStore(context.Background(), store.Index, embed, config, false, nil)
	require.NoError(t, err)
	return restored
}

func TestEngineGenerateResponse(t *testing.T) {
	ctx := context.Background()
	vectors := initVectors(t, lengthEmbed)
	graphStore := initGraph(t)

	t.Run("Return the answer", func(t *testing.T) {
		completer := &fakeCompleter{keywords: "timeline", answer: "Two weeks."}
		engine := NewEngine(vectors, graphStore, completer.Complete, model.DefaultQueryConfig(), nil)

		answer, err := engine.GenerateResponse(ctx, "What is the timeline?")
		require.NoError(t, err)
		assert.Equal(t, "Two weeks.", answer)
	})

	t.Run("Return the error", func(t *testing.T) {
		completer := &fakeCompleter{err: errors.New("quota exceeded")}
		engine := NewEngine(vectors, graphStore, completer.Complete, model.DefaultQueryConfig(), nil)

		_, err := engine.GenerateResponse(ctx, "What is the timeline?")
		assert.ErrorContains(t, err, "quota exceeded")
	})
}

func TestEngineActionItems(t *testing.T) {
	ctx := context.Background()

	t.Run("List the seeded action items", func(t *testing.T) {
		engine := NewEngine(nil, initGraph(t), nil, model.DefaultQueryConfig(), nil)

		items, err := engine.ActionItems(ctx)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(items, "Meeting: "+ingest.SampleMeetingTitle+"\n- "))
		assert.Equal(t, 5, strings.Count(items, "\n- "))
	})

	t.Run("Empty graph", func(t *testing.T) {
		engine := NewEngine(nil, graphmock.NewStore(), nil, model.DefaultQueryConfig(), nil)

		items, err := engine.ActionItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, "No action items found.", items)
	})
}

func TestExtractKeywords(t *testing.T) {
	t.Run("Split trim and lower-case", func(t *testing.T) {
		completer := &fakeCompleter{keywords: "Neo4j, Project Charter , ,Rajat"}
		engine := NewEngine(nil, nil, completer.Complete, model.DefaultQueryConfig(), nil)

		keywords, err := engine.ExtractKeywords(context.Background(), "question")
		require.NoError(t, err)
		assert.Equal(t, []string{"neo4j", "project charter", "rajat"}, keywords)
	})
}
