package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Name identifies one of the built-in backends.
type Name string

const (
	Ollama      Name = "ollama"
	OpenAI      Name = "openai"
	Claude      Name = "claude"
	Gemini      Name = "gemini"
	HuggingFace Name = "huggingface"
)

var (
	// ErrUnknownProvider is returned for any name outside the built-in set.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrMissingAPIKey is returned when a provider that needs a credential has none.
	ErrMissingAPIKey = errors.New("API key not configured")
)

// Request is the normalized prompt payload sent to a provider.
type Request struct {
	Prompt         string
	SystemPrompt   string
	Model          string
	ImageBase64    string
	ImageMediaType string
	// MaxTokens is only honored by Claude.
	MaxTokens int
}

// Client is the provider client interface used by the orchestrator.
type Client interface {
	Name() Name
	Call(ctx context.Context, req Request) (Result, error)
}

// ClientOptions configures a single provider client.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

var (
	_ Client = (*ollamaClient)(nil)
	_ Client = (*openAIClient)(nil)
	_ Client = (*claudeClient)(nil)
	_ Client = (*geminiClient)(nil)
	_ Client = (*huggingFaceClient)(nil)
)

// New returns a built-in provider client by name.
func New(name string, opts ClientOptions) (Client, error) {
	n, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	if RequiresAPIKey(n) && strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", n, ErrMissingAPIKey)
	}

	switch n {
	case Ollama:
		return newOllamaClient(opts), nil
	case OpenAI:
		return newOpenAIClient(opts), nil
	case Claude:
		return newClaudeClient(opts), nil
	case Gemini:
		return newGeminiClient(opts), nil
	default:
		return newHuggingFaceClient(opts), nil
	}
}

// ParseName matches name case-insensitively against the built-in set.
func ParseName(name string) (Name, error) {
	switch n := Name(normalize(name)); n {
	case Ollama, OpenAI, Claude, Gemini, HuggingFace:
		return n, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownProvider, name)
	}
}

// RequiresAPIKey reports whether the provider refuses to run without a credential.
func RequiresAPIKey(n Name) bool {
	return n != Ollama
}

// Names returns the built-in provider names sorted alphabetically.
func Names() []Name {
	names := []Name{Claude, Gemini, HuggingFace, Ollama, OpenAI}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// DefaultModel returns the model used when neither request nor config names one.
func DefaultModel(n Name) string {
	switch n {
	case Ollama:
		return "gemma3:latest"
	case OpenAI:
		return "gpt-4o-mini"
	case Claude:
		return "claude-3-5-sonnet-latest"
	case Gemini:
		return "gemini-2.0-flash"
	case HuggingFace:
		return "Salesforce/blip-image-captioning-base"
	default:
		return ""
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func pickModel(req Request, fallback string) string {
	if m := strings.TrimSpace(req.Model); m != "" {
		return m
	}
	return fallback
}

func optionModel(opts ClientOptions, n Name) string {
	if m := strings.TrimSpace(opts.Model); m != "" {
		return m
	}
	return DefaultModel(n)
}

func mediaType(req Request) string {
	if mt := strings.TrimSpace(req.ImageMediaType); mt != "" {
		return mt
	}
	return "image/jpeg"
}

func dataURI(req Request) string {
	return "data:" + mediaType(req) + ";base64," + req.ImageBase64
}
