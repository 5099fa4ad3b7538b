package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/meetgraph/helper"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAICompleter creates a chat completion function for the configured chat model.
func OpenAICompleter(config helper.OpenAIConfiguration) (CompleteFunc, error) {
	options := []openai.Option{
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ChatModel),
	}
	if config.BaseURL != "" {
		options = append(options, openai.WithBaseURL(config.BaseURL))
	}

	client, err := openai.New(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return func(ctx context.Context, completion Completion) (string, error) {
		content := []llms.MessageContent{
			{
				Role:  llms.ChatMessageTypeSystem,
				Parts: []llms.ContentPart{llms.TextPart(completion.System)},
			},
			{
				Role:  llms.ChatMessageTypeHuman,
				Parts: []llms.ContentPart{llms.TextPart(completion.Prompt)},
			},
		}

		callOptions := []llms.CallOption{llms.WithTemperature(completion.Temperature)}
		if completion.MaxTokens > 0 {
			callOptions = append(callOptions, llms.WithMaxTokens(completion.MaxTokens))
		}

		response, err := client.GenerateContent(ctx, content, callOptions...)
		if err != nil {
			return "", fmt.Errorf("failed to generate completion: %w", err)
		}
		if len(response.Choices) == 0 {
			return "", fmt.Errorf("completion returned no choices")
		}

		return response.Choices[0].Content, nil
	}, nil
}
