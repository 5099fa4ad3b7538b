// Package retrieval answers questions from vector and graph context.
package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/siherrmann/meetgraph/core/graph"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/siherrmann/meetgraph/model"
	"golang.org/x/sync/errgroup"
)

// VectorSearcher returns the chunks most similar to a query.
type VectorSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]model.VectorMatch, error)
}

// Engine combines similarity search and graph keyword search into one
// chat completion. It keeps no state between queries.
type Engine struct {
	Vectors  VectorSearcher
	Graph    graph.Reader
	Config   model.QueryConfig
	complete pipeline.CompleteFunc
	log      *slog.Logger
}

// NewEngine creates a new retrieval engine
func NewEngine(vectors VectorSearcher, reader graph.Reader, complete pipeline.CompleteFunc, config model.QueryConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Vectors:  vectors,
		Graph:    reader,
		Config:   config,
		complete: complete,
		log:      logger.With("component", "retrieval"),
	}
}

// Query answers a question. Failures never escape as errors: the result
// then carries the error and a readable response.
func (e *Engine) Query(ctx context.Context, question string) *model.QueryResult {
	result, err := e.query(ctx, question)
	if err != nil {
		e.log.Error("Error processing query", slog.String("question", question), slog.String("error", err.Error()))
		return &model.QueryResult{
			Error:    err.Error(),
			Response: ErrorResponse + err.Error(),
		}
	}
	return result
}

// GenerateResponse returns only the answer of a question.
func (e *Engine) GenerateResponse(ctx context.Context, question string) (string, error) {
	result := e.Query(ctx, question)
	if result.Error != "" {
		return "", errors.New(result.Error)
	}
	return result.Response, nil
}

// ActionItems lists all action items grouped by meeting.
func (e *Engine) ActionItems(ctx context.Context) (string, error) {
	items, err := e.Graph.ActionItems(ctx)
	if err != nil {
		return "", helper.NewError("query action items", err)
	}
	return FormatActionItems(items), nil
}

// ExtractKeywords asks the chat model for graph search terms.
func (e *Engine) ExtractKeywords(ctx context.Context, question string) ([]string, error) {
	answer, err := e.complete(ctx, pipeline.Completion{
		System:      KeywordPrompt,
		Prompt:      question,
		Temperature: e.Config.KeywordTemperature,
	})
	if err != nil {
		return nil, helper.NewError("extract keywords", err)
	}
	return ParseKeywords(answer), nil
}

func (e *Engine) query(ctx context.Context, question string) (*model.QueryResult, error) {
	var matches []model.VectorMatch
	var discussions []*model.DiscussionContext

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		found, err := e.Vectors.Search(groupCtx, question, e.Config.TopK)
		if err != nil {
			return helper.NewError("vector search", err)
		}
		matches = found
		return nil
	})
	group.Go(func() error {
		keywords, err := e.ExtractKeywords(groupCtx, question)
		if err != nil {
			return err
		}
		e.log.Debug("Extracted keywords", slog.Any("keywords", keywords))

		found, err := e.Graph.SearchDiscussions(groupCtx, keywords)
		if err != nil {
			return helper.NewError("graph search", err)
		}
		discussions = found
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	response, err := e.complete(ctx, pipeline.Completion{
		System:      AnalystPrompt,
		Prompt:      UserPrompt(question, matches, discussions),
		Temperature: e.Config.ResponseTemperature,
		MaxTokens:   e.Config.ResponseMaxTokens,
	})
	if err != nil {
		return nil, helper.NewError("generate response", err)
	}

	return &model.QueryResult{
		Response:      response,
		VectorResults: vectorResults(matches),
		GraphResults:  graphResults(discussions),
	}, nil
}

func vectorResults(matches []model.VectorMatch) []*model.VectorResult {
	results := make([]*model.VectorResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, &model.VectorResult{
			Content: match.Metadata.Content,
			Score:   match.Score,
			File:    match.Metadata.FileName,
		})
	}
	return results
}

func graphResults(discussions []*model.DiscussionContext) []*model.GraphResult {
	results := make([]*model.GraphResult, 0, len(discussions))
	for _, d := range discussions {
		results = append(results, &model.GraphResult{
			MeetingTitle: d.MeetingTitle,
			Content:      d.Content,
			Topics:       d.Topics,
			People:       d.People,
		})
	}
	return results
}
