/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
)

// OpenAIClient completes requests against the OpenAI chat completions API or
// any compatible gateway (Groq in the original deployment) via a base URL
// override.
type OpenAIClient struct {
	client openai.Client
	opts   Options
}

// NewOpenAI returns a Client backed by an OpenAI-compatible endpoint.
// baseURL may be empty for the official API.
func NewOpenAI(apiKey, baseURL string, opts Options) *OpenAIClient {
	opts.applyDefaults("gpt-4o")
	reqOpts := []ooption.RequestOption{
		ooption.WithAPIKey(apiKey),
		ooption.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, ooption.WithBaseURL(baseURL))
	}
	return &OpenAIClient{client: openai.NewClient(reqOpts...), opts: opts}
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.opts.Model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
		Temperature:         openai.Float(c.opts.Temperature),
	}

	completion, err := retryWithBackoff(ctx, c.opts.Retry, "openai_complete", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return c.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("no text content in openai response")
	}
	return completion.Choices[0].Message.Content, nil
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
