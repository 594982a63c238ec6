package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

type ollamaClient struct {
	base  string
	model string
	http  *http.Client
}

func newOllamaClient(opts ClientOptions) Client {
	return &ollamaClient{
		base:  trimBase(opts.BaseURL, "http://localhost:11434"),
		model: optionModel(opts, Ollama),
		http:  defaultHTTPClient(opts.HTTPClient),
	}
}

func (c *ollamaClient) Name() Name { return Ollama }

func (c *ollamaClient) Call(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	model := pickModel(req, c.model)
	if req.ImageBase64 != "" {
		return c.generate(ctx, model, req)
	}

	body, err := postJSON(ctx, c.http, Ollama, joinURL(c.base, "/v1/chat/completions"), nil, chatCompletionPayload(model, req))
	if err != nil {
		return Result{}, err
	}
	return chatCompletionResult(body), nil
}

// generate uses the native endpoint, which streams newline-delimited JSON
// objects that each carry a fragment of the answer.
func (c *ollamaClient) generate(ctx context.Context, model string, req Request) (Result, error) {
	payload := map[string]any{
		"model":  model,
		"prompt": req.Prompt,
		"images": []string{req.ImageBase64},
	}
	body, err := post(ctx, c.http, Ollama, joinURL(c.base, "/api/generate"), nil, payload)
	if err != nil {
		return Result{}, err
	}
	return parseGenerateStream(body)
}

func parseGenerateStream(body []byte) (Result, error) {
	fragments := make([]json.RawMessage, 0)
	var text strings.Builder
	found := false

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return Result{}, fmt.Errorf("decode ollama stream line: %s", truncate(string(line), 200))
		}
		fragments = append(fragments, json.RawMessage(append([]byte(nil), line...)))
		if r := gjson.GetBytes(line, "response"); r.Exists() {
			found = true
			text.WriteString(r.String())
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read ollama stream: %w", err)
	}

	raw, err := json.Marshal(fragments)
	if err != nil {
		return Result{}, fmt.Errorf("encode ollama fragments: %w", err)
	}
	out := text.String()
	if !found {
		out = NoResponse
	}
	return newResult(raw, out, nil), nil
}
