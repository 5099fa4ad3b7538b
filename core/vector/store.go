package vector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	"golang.org/x/time/rate"
)

// Index is a named similarity index using the cosine metric.
type Index interface {
	Name() string
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context, dimension int) error
	Delete(ctx context.Context) error
	Ready(ctx context.Context) (bool, error)
	Upsert(ctx context.Context, records []model.VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]model.VectorMatch, error)
	Close() error
}

// Store chunks, embeds and uploads documents into an Index.
type Store struct {
	Index    Index
	Config   model.VectorConfig
	pipeline *pipeline.Pipeline
	embed    pipeline.EmbedFunc
	batches  *rate.Limiter
	log      *slog.Logger
}

// NewStore prepares the index and returns a store writing into it.
// With recreate an existing index is deleted first. A missing index is
// created and polled until it is ready or ctx ends.
func NewStore(ctx context.Context, index Index, embed pipeline.EmbedFunc, config model.VectorConfig, recreate bool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "vector", "index", index.Name())

	embedLimiter := newLimiter(config.EmbedInterval)
	limitedEmbed := func(ctx context.Context, text string) ([]float32, error) {
		if err := embedLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		return embed(ctx, text)
	}

	s := &Store{
		Index:    index,
		Config:   config,
		pipeline: pipeline.NewPipeline(pipeline.WordChunker(config.ChunkSize), limitedEmbed),
		embed:    embed,
		batches:  newLimiter(config.BatchInterval),
		log:      logger,
	}

	if err := s.prepare(ctx, recreate); err != nil {
		logger.Error("Error initializing vector index", slog.String("error", err.Error()))
		return nil, err
	}
	return s, nil
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

func (s *Store) prepare(ctx context.Context, recreate bool) error {
	exists, err := s.Index.Exists(ctx)
	if err != nil {
		return helper.NewError("check index", err)
	}

	if exists && recreate {
		s.log.Info("Deleting existing index")
		if err := s.Index.Delete(ctx); err != nil {
			return helper.NewError("delete index", err)
		}
		if err := sleep(ctx, s.Config.DeleteWait); err != nil {
			return helper.NewError("delete index", err)
		}

		exists, err = s.Index.Exists(ctx)
		if err != nil {
			return helper.NewError("check index", err)
		}
	}

	if exists {
		s.log.Info("Using existing index")
		return nil
	}

	s.log.Info("Creating new index", slog.Int("dimension", s.Config.Dimension))
	if err := s.Index.Create(ctx, s.Config.Dimension); err != nil {
		return helper.NewError("create index", err)
	}

	return s.waitUntilReady(ctx)
}

func (s *Store) waitUntilReady(ctx context.Context) error {
	if err := sleep(ctx, s.Config.ReadyInitialWait); err != nil {
		return helper.NewError("wait for index", err)
	}

	for {
		ready, err := s.Index.Ready(ctx)
		if err != nil {
			return helper.NewError("describe index", err)
		}
		if ready {
			s.log.Info("Index is ready")
			return nil
		}

		s.log.Debug("Still waiting for index to be ready")
		if err := sleep(ctx, s.Config.ReadyPollInterval); err != nil {
			return helper.NewError("wait for index", err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StoreFile vectorizes a file. Records are named after the file's base name
// and stamped with its modification time.
func (s *Store) StoreFile(ctx context.Context, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, helper.NewError("stat file", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, helper.NewError("read file", err)
	}

	return s.StoreText(ctx, filepath.Base(path), info.ModTime(), string(content))
}

// StoreText chunks and embeds text and upserts the records in batches.
// Any failure aborts the remaining work. It returns the number of chunks
// stored.
func (s *Store) StoreText(ctx context.Context, fileName string, createdAt time.Time, text string) (int, error) {
	s.log.Info("Processing file", slog.String("file", fileName))

	chunks, err := s.pipeline.Process(ctx, text, fileName)
	if err != nil {
		s.log.Error("Error processing file", slog.String("file", fileName), slog.String("error", err.Error()))
		return 0, helper.NewError("embed chunks", err)
	}

	records := make([]model.VectorRecord, 0, len(chunks))
	for _, chunk := range chunks {
		records = append(records, model.VectorRecord{
			ID:       chunk.Path,
			Values:   chunk.Embedding,
			Metadata: model.NewVectorMetadata(fileName, createdAt, chunk.ChunkIndex, len(chunks), chunk.Content, s.Config.MaxContentLength),
		})
	}

	if err := s.upsertBatches(ctx, records); err != nil {
		s.log.Error("Error upserting batch", slog.String("file", fileName), slog.String("error", err.Error()))
		return 0, err
	}

	s.log.Info("Stored file", slog.String("file", fileName), slog.Int("chunks", len(records)))
	return len(records), nil
}

func (s *Store) upsertBatches(ctx context.Context, records []model.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	batchSize := s.Config.BatchSize
	if batchSize <= 0 {
		batchSize = len(records)
	}
	total := (len(records) + batchSize - 1) / batchSize

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		if err := s.batches.Wait(ctx); err != nil {
			return helper.NewError("wait for batch", err)
		}

		s.log.Debug("Upserting batch", slog.Int("batch", i/batchSize+1), slog.Int("total", total))
		if err := s.Index.Upsert(ctx, records[i:end]); err != nil {
			return helper.NewError(fmt.Sprintf("upsert batch %d", i/batchSize+1), err)
		}
	}
	return nil
}

// Search returns the topK records most similar to query.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]model.VectorMatch, error) {
	embedding, err := s.embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	matches, err := s.Index.Query(ctx, embedding, topK)
	if err != nil {
		return nil, helper.NewError("query index", err)
	}
	return matches, nil
}

// Close releases the index client.
func (s *Store) Close() error {
	return s.Index.Close()
}
