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
	"strings"

	"google.golang.org/genai"
)

// GeminiClient completes requests against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	opts   Options
}

// NewGemini returns a Client backed by Gemini.
func NewGemini(ctx context.Context, apiKey string, opts Options) (*GeminiClient, error) {
	opts.applyDefaults("gemini-2.5-flash")
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, opts: opts}, nil
}

// Complete implements Client.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	temp := float32(c.opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(c.opts.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	response, err := retryWithBackoff(ctx, c.opts.Retry, "gemini_complete", isRetryableGeminiError, func() (*genai.GenerateContentResponse, error) {
		return c.client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(req.User), config)
	})
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}

	text := response.Text()
	if text == "" {
		return "", errors.New("no text content in gemini response")
	}
	return text, nil
}

// isRetryableGeminiError classifies rate limit, quota exhaustion, and
// transient server errors. The genai SDK does not expose a stable error
// type across transports, so this matches on message text.
func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "Overloaded") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "Internal error")
}
