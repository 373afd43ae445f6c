/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package inference

import (
	"context"
	"time"
)

// Request is one inference invocation: a system turn and a user turn.
type Request struct {
	System string
	User   string
}

// Client produces a single text completion for a request.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Options are shared backend settings.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Timeout     time.Duration
	Retry       RetryConfig
}

func (o *Options) applyDefaults(defaultModel string) {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 8192
	}
	if o.Temperature == 0 {
		o.Temperature = 0.1
	}
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}
	if o.Retry == (RetryConfig{}) {
		o.Retry = DefaultRetryConfig()
	}
}
