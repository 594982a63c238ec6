// Package fetch sends prompts to a resolved provider and returns normalized results.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sasanktumpati/fetchllm/internal/logger"
	"github.com/sasanktumpati/fetchllm/internal/providers"
)

// ErrNoClient is returned when a resolver yields neither a client nor an error.
var ErrNoClient = errors.New("provider resolved to no client")

// Resolver maps a provider name to a ready client.
type Resolver interface {
	Resolve(name string) (providers.Client, error)
}

// Options are the per-call settings shared by every prompt of a run.
type Options struct {
	Model          string
	ImageBase64    string
	ImageMediaType string
	MaxTokens      int
	// Timeout bounds each call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// FetchLLM resolves provider and sends a single prompt to it. Prompt lists
// go through Batch, which shares the same resolve and call steps.
func FetchLLM(ctx context.Context, r Resolver, provider, prompt, system string, opts Options) (providers.Result, error) {
	client, err := resolve(r, provider)
	if err != nil {
		return providers.Result{}, err
	}
	return call(ctx, client, prompt, system, opts)
}

func resolve(r Resolver, provider string) (providers.Client, error) {
	if r == nil {
		return nil, fmt.Errorf("%s: %w", provider, ErrNoClient)
	}
	client, err := r.Resolve(provider)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%s: %w", provider, ErrNoClient)
	}
	return client, nil
}

func call(ctx context.Context, client providers.Client, prompt, system string, opts Options) (providers.Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	id := uuid.NewString()
	log := logger.L().With("request_id", id, "provider", string(client.Name()))
	log.Debug("fetch start", "prompt_bytes", len(prompt), "image", opts.ImageBase64 != "")
	started := time.Now()

	res, err := client.Call(ctx, providers.Request{
		Prompt:         prompt,
		SystemPrompt:   system,
		Model:          opts.Model,
		ImageBase64:    opts.ImageBase64,
		ImageMediaType: opts.ImageMediaType,
		MaxTokens:      opts.MaxTokens,
	})
	if err != nil {
		log.Debug("fetch failed", "error", err, "elapsed", time.Since(started))
		return providers.Result{}, err
	}
	log.Debug("fetch done", "text_bytes", len(res.Text), "elapsed", time.Since(started))
	return res, nil
}
