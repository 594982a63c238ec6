package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type geminiClient struct {
	apiKey string
	base   string
	model  string
	http   *http.Client
}

func newGeminiClient(opts ClientOptions) Client {
	return &geminiClient{
		apiKey: opts.APIKey,
		base:   trimBase(opts.BaseURL, "https://generativelanguage.googleapis.com/v1beta"),
		model:  optionModel(opts, Gemini),
		http:   defaultHTTPClient(opts.HTTPClient),
	}
}

func (c *geminiClient) Name() Name { return Gemini }

func (c *geminiClient) Call(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	model := strings.TrimPrefix(pickModel(req, c.model), "models/")
	endpoint := joinURL(c.base, fmt.Sprintf("/models/%s:generateContent", model)) + "?key=" + url.QueryEscape(c.apiKey)

	parts := []map[string]any{{"text": req.Prompt}}
	if req.ImageBase64 != "" {
		parts = append(parts, map[string]any{
			"inline_data": map[string]string{
				"mime_type": mediaType(req),
				"data":      req.ImageBase64,
			},
		})
	}
	payload := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": parts},
		},
	}
	if req.SystemPrompt != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}

	body, err := postJSON(ctx, c.http, Gemini, endpoint, nil, payload)
	if err != nil {
		return Result{}, err
	}
	// An empty candidates list falls through to the placeholder.
	return newResult(body, textAt(body, "candidates.0.content.parts.0.text"), nil), nil
}
