package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sasanktumpati/fetchllm/internal/logger"
	"github.com/tidwall/gjson"
)

// StatusError reports a non-2xx vendor response whose body is not JSON.
type StatusError struct {
	Provider   Name
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %s: %s", e.Provider, e.Status, e.Message)
}

func defaultHTTPClient(input *http.Client) *http.Client {
	if input != nil {
		return input
	}
	return &http.Client{}
}

// postJSON sends payload and returns the raw response body whatever the
// status. Transport failures and bodies that are not JSON are errors.
func postJSON(ctx context.Context, client *http.Client, provider Name, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	body, err := post(ctx, client, provider, endpoint, headers, payload)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode %s response JSON: body=%s", provider, truncate(string(body), 700))
	}
	return body, nil
}

func post(ctx context.Context, client *http.Client, provider Name, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request JSON: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	log := logger.L().With("provider", string(provider))
	log.Debug("provider request", "url", redactURL(endpoint), "bytes", len(buf))
	started := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	log.Debug("provider response", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if !gjson.ValidBytes(body) {
			return nil, &StatusError{
				Provider:   provider,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Message:    vendorMessage(body),
			}
		}
		// A JSON error body goes through the normal field extraction.
		log.Debug("provider error body", "status", resp.StatusCode, "message", vendorMessage(body))
	}
	return body, nil
}

func vendorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "error", "message", "detail"} {
			if r := gjson.GetBytes(body, path); r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
				return r.Str
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return truncate(msg, 700)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if key := q.Get("key"); key != "" {
		q.Set("key", logger.Redact(key))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.Prompt) == "" && strings.TrimSpace(req.ImageBase64) == "" {
		return fmt.Errorf("prompt is required")
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func joinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func trimBase(base, fallback string) string {
	if strings.TrimSpace(base) == "" {
		base = fallback
	}
	return strings.TrimRight(strings.TrimSpace(base), "/")
}
