/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the menderaf agent: a webhook listener that triages CI
// failure reports and repairs the watched repository, plus an interactive
// console chat sharing the same brain and knowledge store.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/menderaf/brain"
	"chainguard.dev/menderaf/chat"
	"chainguard.dev/menderaf/githubrepo"
	"chainguard.dev/menderaf/inference"
	"chainguard.dev/menderaf/knowledge"
	"chainguard.dev/menderaf/notify"
	"chainguard.dev/menderaf/patch"
	"chainguard.dev/menderaf/triage"
	"chainguard.dev/menderaf/webhook"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/oauth2"
)

type config struct {
	Port        int `env:"PORT,default=8080"`
	MetricsPort int `env:"METRICS_PORT,default=2112"`

	// Repository under repair.
	GitHubToken  string `env:"GITHUB_TOKEN,required"`
	GitHubOwner  string `env:"GITHUB_OWNER,required"`
	GitHubRepo   string `env:"GITHUB_REPO,required"`
	GitHubBranch string `env:"GITHUB_BRANCH,default=main"`

	// Inference backend selection.
	LLMProvider   string        `env:"LLM_PROVIDER,default=anthropic"`
	Model         string        `env:"MODEL"`
	MaxTokens     int64         `env:"MAX_TOKENS,default=8192"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT,default=120s"`
	AnthropicKey  string        `env:"ANTHROPIC_API_KEY"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	GeminiKey     string        `env:"GEMINI_API_KEY"`

	DBPath   string `env:"DB_PATH,default=menderaf.db"`
	Operator string `env:"OPERATOR_NAME,default=Sam"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	store, err := knowledge.Open(cfg.DBPath)
	if err != nil {
		clog.FatalContextf(ctx, "opening knowledge store: %v", err)
	}
	defer store.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))
	repo := githubrepo.New(gh, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch)

	llm, err := newLLM(ctx, &cfg)
	if err != nil {
		clog.FatalContextf(ctx, "creating inference client: %v", err)
	}
	clog.InfoContextf(ctx, "Inference backend: %s", cfg.LLMProvider)

	applier := patch.New(repo)
	br := brain.New(store, repo, applier, llm)

	notifier := notify.New(16)
	defer notifier.Close()

	loop := triage.NewLoop(repo, br, notifier)
	server := webhook.NewServer(ctx, loop)

	go serveMetrics(ctx, cfg.MetricsPort)

	console := chat.NewConsole(cfg.Operator, os.Stdin, os.Stdout)
	go chat.NewLoop(console, br, store, notifier).Run(ctx)

	clog.InfoContextf(ctx, "Watching %s/%s@%s on port %d",
		cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch, cfg.Port)
	if err := server.ListenAndServe(ctx, cfg.Port); err != nil {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}

func newLLM(ctx context.Context, cfg *config) (inference.Client, error) {
	opts := inference.Options{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.LLMTimeout,
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
		return inference.NewAnthropic(cfg.AnthropicKey, opts), nil

	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		return inference.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, opts), nil

	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
		return inference.NewGemini(ctx, cfg.GeminiKey, opts)

	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want anthropic, openai, or gemini)", cfg.LLMProvider)
	}
}

// serveMetrics exposes Prometheus metrics on its own port so the webhook
// surface stays internet-facing-only.
func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	clog.InfoContextf(ctx, "Metrics listener on port %d", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		clog.ErrorContextf(ctx, "metrics server: %v", err)
	}
}
