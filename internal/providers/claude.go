package providers

import (
	"context"
	"net/http"
)

const anthropicVersion = "2023-06-01"

type claudeClient struct {
	apiKey    string
	base      string
	model     string
	maxTokens int
	http      *http.Client
}

func newClaudeClient(opts ClientOptions) Client {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &claudeClient{
		apiKey:    opts.APIKey,
		base:      trimBase(opts.BaseURL, "https://api.anthropic.com"),
		model:     optionModel(opts, Claude),
		maxTokens: maxTokens,
		http:      defaultHTTPClient(opts.HTTPClient),
	}
}

func (c *claudeClient) Name() Name { return Claude }

func (c *claudeClient) Call(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	content := []map[string]any{{"type": "text", "text": req.Prompt}}
	if req.ImageBase64 != "" {
		content = append(content, map[string]any{
			"type": "image",
			"source": map[string]string{
				"type":       "base64",
				"media_type": mediaType(req),
				"data":       req.ImageBase64,
			},
		})
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	payload := map[string]any{
		"model":      pickModel(req, c.model),
		"max_tokens": maxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}
	if req.SystemPrompt != "" {
		payload["system"] = req.SystemPrompt
	}

	body, err := postJSON(ctx, c.http, Claude, joinURL(c.base, "/v1/messages"), headers, payload)
	if err != nil {
		return Result{}, err
	}
	// content is a list of blocks; text blocks are joined.
	return newResult(body, textAt(body, "content"), nil), nil
}
