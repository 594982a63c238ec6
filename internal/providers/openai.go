package providers

import (
	"context"
	"net/http"
)

type openAIClient struct {
	apiKey string
	base   string
	model  string
	http   *http.Client
}

func newOpenAIClient(opts ClientOptions) Client {
	return &openAIClient{
		apiKey: opts.APIKey,
		base:   trimBase(opts.BaseURL, "https://api.openai.com/v1"),
		model:  optionModel(opts, OpenAI),
		http:   defaultHTTPClient(opts.HTTPClient),
	}
}

func (c *openAIClient) Name() Name { return OpenAI }

func (c *openAIClient) Call(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	payload := chatCompletionPayload(pickModel(req, c.model), req)

	body, err := postJSON(ctx, c.http, OpenAI, joinURL(c.base, "/chat/completions"), headers, payload)
	if err != nil {
		return Result{}, err
	}
	return chatCompletionResult(body), nil
}

// chatCompletionPayload builds an OpenAI-shaped chat request. Text-only
// requests always carry the system message, even when it is empty.
func chatCompletionPayload(model string, req Request) map[string]any {
	var messages []map[string]any
	if req.ImageBase64 != "" {
		if req.SystemPrompt != "" {
			messages = append(messages, map[string]any{"role": "system", "content": req.SystemPrompt})
		}
		messages = append(messages, map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": req.Prompt},
				{"type": "image_url", "image_url": map[string]string{"url": dataURI(req)}},
			},
		})
	} else {
		messages = []map[string]any{
			{"role": "system", "content": req.SystemPrompt},
			{"role": "user", "content": req.Prompt},
		}
	}
	return map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}
}

func chatCompletionResult(body []byte) Result {
	return newResult(body, textAt(body, "choices.0.message.content"), usageAt(body, "usage"))
}
