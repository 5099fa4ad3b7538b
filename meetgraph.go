package meetgraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph/core/graph"
	"github.com/siherrmann/meetgraph/core/ingest"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/core/report"
	"github.com/siherrmann/meetgraph/core/retrieval"
	"github.com/siherrmann/meetgraph/core/vector"
	"github.com/siherrmann/meetgraph/database"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	"github.com/siherrmann/meetgraph/neo4jdb"
)

// MeetGraph wires the configured graph backend, vector index and chat
// model together. Vectors and Engine stay nil until they are opened.
type MeetGraph struct {
	Config  *helper.Configuration
	DB      *helper.Database
	Graph   graph.Store
	Agent   *ingest.Agent
	Vectors *vector.Store
	Engine  *retrieval.Engine

	vectorConfig model.VectorConfig
	queryConfig  model.QueryConfig
	embed        pipeline.EmbedFunc
	complete     pipeline.CompleteFunc
	log          *slog.Logger
}

// Option changes the defaults of a MeetGraph.
type Option func(*MeetGraph)

func WithLogger(logger *slog.Logger) Option {
	return func(m *MeetGraph) {
		m.log = logger
	}
}

// WithVectorConfig replaces the chunking, batching and rate settings.
// The dimension always comes from the embedding configuration.
func WithVectorConfig(config model.VectorConfig) Option {
	return func(m *MeetGraph) {
		m.vectorConfig = config
	}
}

func WithQueryConfig(config model.QueryConfig) Option {
	return func(m *MeetGraph) {
		m.queryConfig = config
	}
}

// WithEmbedder replaces the embedder built from the configuration.
func WithEmbedder(embed pipeline.EmbedFunc) Option {
	return func(m *MeetGraph) {
		m.embed = embed
	}
}

// WithCompleter replaces the chat model built from the configuration.
func WithCompleter(complete pipeline.CompleteFunc) Option {
	return func(m *MeetGraph) {
		m.complete = complete
	}
}

// New connects to the configured graph backend. The ingestion agent uses
// the general extraction policy.
func New(ctx context.Context, config *helper.Configuration, options ...Option) (*MeetGraph, error) {
	if config == nil {
		return nil, helper.NewError("configuration validation", fmt.Errorf("configuration is nil"))
	}

	m := &MeetGraph{
		Config:       config,
		vectorConfig: model.DefaultVectorConfig(),
		queryConfig:  model.DefaultQueryConfig(),
	}
	for _, option := range options {
		option(m)
	}
	if m.log == nil {
		m.log = helper.NewLogger(config.SlogLevel())
	}

	if config.GraphBackend == helper.GraphBackendPostgres || config.VectorBackend == helper.VectorBackendPgvector {
		db, err := helper.NewDatabase("meetgraph", config.Database, m.log)
		if err != nil {
			return nil, err
		}
		m.DB = db
	}

	switch config.GraphBackend {
	case helper.GraphBackendPostgres:
		g, err := database.NewGraph(m.DB, false)
		if err != nil {
			_ = m.DB.Close()
			return nil, helper.NewError("create postgres graph", err)
		}
		m.Graph = g
	default:
		g, err := neo4jdb.NewGraph(ctx, config.Neo4j, m.log)
		if err != nil {
			_ = m.DB.Close()
			return nil, helper.NewError("create neo4j graph", err)
		}
		m.Graph = g
	}

	m.Agent = ingest.NewAgent(m.Graph, pipeline.GeneralPolicy(), m.log)
	return m, nil
}

// Seed clears the graph and loads the sample meeting.
func (m *MeetGraph) Seed(ctx context.Context) (uuid.UUID, error) {
	return m.Agent.Seed(ctx)
}

// Ingest loads a transcript with the given extraction policy.
func (m *MeetGraph) Ingest(ctx context.Context, title string, date *string, notes string, policy pipeline.ExtractionPolicy) (uuid.UUID, error) {
	agent := ingest.NewAgent(m.Graph, policy, m.log)
	return agent.ProcessMeetingNotes(ctx, title, date, notes)
}

// OpenVectors prepares the configured vector index. With recreate an
// existing index is dropped first.
func (m *MeetGraph) OpenVectors(ctx context.Context, recreate bool) (*vector.Store, error) {
	embed := m.embed
	if embed == nil {
		var err error
		embed, err = pipeline.NewEmbedder(m.Config.OpenAI)
		if err != nil {
			return nil, helper.NewError("create embedder", err)
		}
	}

	var index vector.Index
	switch m.Config.VectorBackend {
	case helper.VectorBackendPgvector:
		handler, err := database.NewVectorsDBHandler(m.DB, m.Config.Index.Name, false)
		if err != nil {
			return nil, helper.NewError("create pgvector index", err)
		}
		index = handler
	default:
		qdrant, err := vector.NewQdrantIndex(m.Config.Qdrant, m.Config.Index.Name)
		if err != nil {
			return nil, helper.NewError("create qdrant index", err)
		}
		index = qdrant
	}

	config := m.vectorConfig
	config.Dimension = m.Config.OpenAI.EmbeddingDimension

	store, err := vector.NewStore(ctx, index, embed, config, recreate, m.log)
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	if m.Vectors != nil {
		_ = m.Vectors.Close()
		m.Engine = nil
	}
	m.Vectors = store
	return store, nil
}

// OpenEngine opens the vector index without recreating it and builds the
// question answering engine.
func (m *MeetGraph) OpenEngine(ctx context.Context) (*retrieval.Engine, error) {
	if m.Vectors == nil {
		_, err := m.OpenVectors(ctx, false)
		if err != nil {
			return nil, err
		}
	}

	complete := m.complete
	if complete == nil {
		var err error
		complete, err = pipeline.OpenAICompleter(m.Config.OpenAI)
		if err != nil {
			return nil, helper.NewError("create completer", err)
		}
	}

	m.Engine = retrieval.NewEngine(m.Vectors, m.Graph, complete, m.queryConfig, m.log)
	return m.Engine, nil
}

// Analyze writes the analysis report to the configured output directory.
func (m *MeetGraph) Analyze(ctx context.Context, now time.Time) (string, error) {
	engine, err := m.engine(ctx)
	if err != nil {
		return "", err
	}

	path, err := report.WriteAnalysis(ctx, m.Config.OutputDir, engine, now)
	if err != nil {
		return "", err
	}
	m.log.Info("Analysis written", slog.String("file", path))
	return path, nil
}

// Vectorize stores a file in the vector index. Without a path the latest
// analysis report is used.
func (m *MeetGraph) Vectorize(ctx context.Context, path string, recreate bool) (int, error) {
	if path == "" {
		latest, err := report.LatestFile(m.Config.OutputDir)
		if err != nil {
			return 0, err
		}
		path = latest
	}
	if _, err := os.Stat(path); err != nil {
		return 0, helper.NewError("stat file", err)
	}

	store, err := m.OpenVectors(ctx, recreate)
	if err != nil {
		return 0, err
	}

	m.log.Info("Vectorizing file", slog.String("file", filepath.Base(path)))
	return store.StoreFile(ctx, path)
}

func (m *MeetGraph) engine(ctx context.Context) (*retrieval.Engine, error) {
	if m.Engine != nil {
		return m.Engine, nil
	}
	return m.OpenEngine(ctx)
}

// Query answers a question with sources. Failures are part of the result.
func (m *MeetGraph) Query(ctx context.Context, question string) *model.QueryResult {
	engine, err := m.engine(ctx)
	if err != nil {
		return &model.QueryResult{
			Error:    err.Error(),
			Response: retrieval.ErrorResponse + err.Error(),
		}
	}
	return engine.Query(ctx, question)
}

// Close releases the vector index, the graph and the shared database.
func (m *MeetGraph) Close(ctx context.Context) error {
	var firstErr error
	if m.Vectors != nil {
		firstErr = m.Vectors.Close()
	}
	if m.Graph != nil {
		if err := m.Graph.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	// The postgres graph owns the database connection.
	if m.DB != nil && m.Config.GraphBackend != helper.GraphBackendPostgres {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
