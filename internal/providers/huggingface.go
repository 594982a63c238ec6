package providers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

type huggingFaceClient struct {
	apiKey string
	base   string
	model  string
	http   *http.Client
}

func newHuggingFaceClient(opts ClientOptions) Client {
	return &huggingFaceClient{
		apiKey: opts.APIKey,
		base:   trimBase(opts.BaseURL, "https://api-inference.huggingface.co"),
		model:  optionModel(opts, HuggingFace),
		http:   defaultHTTPClient(opts.HTTPClient),
	}
}

func (c *huggingFaceClient) Name() Name { return HuggingFace }

// Call sends either the prompt or, when an image is attached, only the image
// as a data URI. The inference API has no combined text+image input.
func (c *huggingFaceClient) Call(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	inputs := req.Prompt
	if req.ImageBase64 != "" {
		inputs = dataURI(req)
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	body, err := postJSON(ctx, c.http, HuggingFace, joinURL(c.base, "/models/"+pickModel(req, c.model)), headers, map[string]any{"inputs": inputs})
	if err != nil {
		return Result{}, err
	}
	parsed := gjson.ParseBytes(body)
	switch {
	case parsed.IsArray():
		return newResult(body, textAt(body, "0.generated_text"), nil), nil
	case parsed.Type == gjson.String:
		return newResult(body, parsed.Str, nil), nil
	}
	return newResult(body, string(bytes.TrimSpace(body)), nil), nil
}
