package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sasanktumpati/fetchllm/internal/providers"
)

const (
	defaultDirName  = "fetchllm"
	defaultFileName = "config.json"
	dotEnvFileName  = ".env"
	currentVersion  = 1
	envConfigPath   = "FETCHLLM_CONFIG"
	envConfigDir    = "FETCHLLM_CONFIG_DIR"
	defaultLogLevel = "warn"
)

var (
	// ErrConfigNotFound indicates the config file does not exist yet.
	ErrConfigNotFound = errors.New("config file not found")
)

// ProviderConfig stores per-provider defaults and credentials.
type ProviderConfig struct {
	APIKey    string `json:"api_key" yaml:"api_key"`
	Model     string `json:"model" yaml:"model"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
}

// TranscriberConfig names the speech-to-text command used for --audio.
// Args may reference {audio} and {output_dir}.
type TranscriberConfig struct {
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Config is the persisted fetchllm configuration.
type Config struct {
	Version        int                       `json:"version" yaml:"version"`
	Providers      map[string]ProviderConfig `json:"providers,omitempty" yaml:"providers,omitempty"`
	OllamaHost     string                    `json:"ollama_host,omitempty" yaml:"ollama_host,omitempty"`
	RenderMarkdown bool                      `json:"render_markdown" yaml:"render_markdown"`
	LogLevel       string                    `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	MaxTokens      int                       `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Transcriber    TranscriberConfig         `json:"transcriber,omitzero" yaml:"transcriber,omitempty"`
}

// BuiltinDefaults defines immutable defaults for built-in providers.
type BuiltinDefaults struct {
	BaseURL   string
	APIKeyEnv string
}

var builtinProviders = map[string]BuiltinDefaults{
	string(providers.Claude): {
		BaseURL:   "https://api.anthropic.com",
		APIKeyEnv: "CLAUDE_API_KEY",
	},
	string(providers.Gemini): {
		BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
		APIKeyEnv: "GEMINI_API_KEY",
	},
	string(providers.HuggingFace): {
		BaseURL:   "https://api-inference.huggingface.co",
		APIKeyEnv: "HF_TOKEN",
	},
	string(providers.Ollama): {
		BaseURL:   "http://localhost:11434",
		APIKeyEnv: "",
	},
	string(providers.OpenAI): {
		BaseURL:   "https://api.openai.com/v1",
		APIKeyEnv: "OPENAI_API_KEY",
	},
}

// ResolvePath resolves config file path from CLI override, environment, or default.
func ResolvePath(pathOverride string) (string, error) {
	if path := strings.TrimSpace(pathOverride); path != "" {
		return filepath.Clean(path), nil
	}
	if path := strings.TrimSpace(os.Getenv(envConfigPath)); path != "" {
		return filepath.Clean(path), nil
	}
	return DefaultPath()
}

// DefaultDir returns the default directory where fetchllm stores its config.
func DefaultDir() (string, error) {
	if custom := strings.TrimSpace(os.Getenv(envConfigDir)); custom != "" {
		return filepath.Clean(custom), nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "", fmt.Errorf("resolve user home directory: %w", err)
	}
	return filepath.Join(home, "."+defaultDirName), nil
}

// DefaultPath returns the default full path to config.json.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultFileName), nil
}

// LoadDotEnv loads .env files from each directory, in order. Variables
// already present in the environment are never overridden, so earlier
// directories win over later ones. Missing files are skipped.
func LoadDotEnv(dirs ...string) ([]string, error) {
	var loaded []string
	seen := map[string]bool{}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		path := filepath.Join(dir, dotEnvFileName)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// BuiltinProviderNames returns built-in provider names sorted alphabetically.
func BuiltinProviderNames() []string {
	names := make([]string, 0, len(builtinProviders))
	for name := range builtinProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltinProvider reports whether name is a built-in provider.
func IsBuiltinProvider(name string) bool {
	_, ok := builtinProviders[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// BuiltinProviderDefaults returns defaults for a built-in provider.
func BuiltinProviderDefaults(name string) (BuiltinDefaults, bool) {
	defaults, ok := builtinProviders[strings.ToLower(strings.TrimSpace(name))]
	return defaults, ok
}

// Load reads config from path. When missing, it returns DefaultConfig and ErrConfigNotFound.
// Paths ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), ErrConfigNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(buf, cfg)
	} else {
		err = json.Unmarshal(buf, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save persists config to path using normalized and compact representation.
func Save(path string, cfg *Config) error {
	cfg.normalize()
	return writeSecure(path, cfg.compactForSave())
}

// DefaultConfig returns a new default configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Version:        currentVersion,
		Providers:      builtinProviderScaffold(),
		RenderMarkdown: true,
		LogLevel:       defaultLogLevel,
	}
	cfg.normalize()
	return cfg
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func (c *Config) normalize() {
	if c.Version == 0 {
		c.Version = currentVersion
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	normalized := make(map[string]ProviderConfig, len(c.Providers))
	var mixedCase []string
	for name, pc := range c.Providers {
		if key := strings.ToLower(strings.TrimSpace(name)); key == name {
			normalized[key] = pc
		} else {
			mixedCase = append(mixedCase, name)
		}
	}
	sort.Strings(mixedCase)
	for _, name := range mixedCase {
		key := strings.ToLower(strings.TrimSpace(name))
		normalized[key] = mergeProvider(normalized[key], c.Providers[name])
	}
	c.Providers = normalized
	c.OllamaHost = strings.TrimRight(strings.TrimSpace(c.OllamaHost), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxTokens < 0 {
		c.MaxTokens = 0
	}
	c.Transcriber.Command = strings.TrimSpace(c.Transcriber.Command)
}

// mergeProvider overlays the non-empty fields of over onto base.
func mergeProvider(base, over ProviderConfig) ProviderConfig {
	if over.APIKey != "" {
		base.APIKey = over.APIKey
	}
	if over.Model != "" {
		base.Model = over.Model
	}
	if over.BaseURL != "" {
		base.BaseURL = over.BaseURL
	}
	if over.APIKeyEnv != "" {
		base.APIKeyEnv = over.APIKeyEnv
	}
	return base
}

// GetModel returns the configured default model for provider.
func (c *Config) GetModel(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return ""
	}
	return strings.TrimSpace(c.Providers[provider].Model)
}

// SetModel sets the default model for provider.
func (c *Config) SetModel(provider string, model string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	c.normalize()
	pc := c.Providers[provider]
	pc.Model = strings.TrimSpace(model)
	c.Providers[provider] = pc
}

// ResolveModel returns the explicit model when set, then the configured one,
// then the provider's built-in default.
func (c *Config) ResolveModel(provider, explicit string) string {
	if m := strings.TrimSpace(explicit); m != "" {
		return m
	}
	if m := c.GetModel(provider); m != "" {
		return m
	}
	n, err := providers.ParseName(provider)
	if err != nil {
		return ""
	}
	return providers.DefaultModel(n)
}

// ResolveBaseURL returns effective base URL for provider.
func (c *Config) ResolveBaseURL(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return ""
	}

	defaults, builtin := BuiltinProviderDefaults(provider)
	pc := c.Providers[provider]
	if provider == string(providers.Ollama) {
		if strings.TrimSpace(c.OllamaHost) != "" {
			return strings.TrimRight(strings.TrimSpace(c.OllamaHost), "/")
		}
	}
	if strings.TrimSpace(pc.BaseURL) != "" {
		return strings.TrimRight(strings.TrimSpace(pc.BaseURL), "/")
	}
	if builtin {
		return strings.TrimRight(defaults.BaseURL, "/")
	}
	return ""
}

// ResolveAPIKey returns effective API key, preferring configured env vars over stored key.
func (c *Config) ResolveAPIKey(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return ""
	}

	pc := c.Providers[provider]
	if env := strings.TrimSpace(pc.APIKeyEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if defaults, ok := BuiltinProviderDefaults(provider); ok {
		if env := strings.TrimSpace(defaults.APIKeyEnv); env != "" {
			if v := strings.TrimSpace(os.Getenv(env)); v != "" {
				return v
			}
		}
	}
	if v := strings.TrimSpace(pc.APIKey); v != "" {
		return v
	}
	return ""
}

// APIKeySource describes where ResolveAPIKey found the key: an env var
// name, "config", or "" when no key is available.
func (c *Config) APIKeySource(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	pc := c.Providers[provider]
	if env := strings.TrimSpace(pc.APIKeyEnv); env != "" && strings.TrimSpace(os.Getenv(env)) != "" {
		return "$" + env
	}
	if defaults, ok := BuiltinProviderDefaults(provider); ok {
		if env := strings.TrimSpace(defaults.APIKeyEnv); env != "" && strings.TrimSpace(os.Getenv(env)) != "" {
			return "$" + env
		}
	}
	if strings.TrimSpace(pc.APIKey) != "" {
		return "config"
	}
	return ""
}

// SetAPIKey sets a provider API key in config.
func (c *Config) SetAPIKey(provider string, key string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	c.normalize()
	pc := c.Providers[provider]
	pc.APIKey = strings.TrimSpace(key)
	c.Providers[provider] = pc
}

// SetAPIKeyEnv sets a provider API key environment variable name.
func (c *Config) SetAPIKeyEnv(provider, envVar string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	c.normalize()
	pc := c.Providers[provider]
	pc.APIKeyEnv = strings.TrimSpace(envVar)
	c.Providers[provider] = pc
}

// SetBaseURL sets provider base URL.
func (c *Config) SetBaseURL(provider, baseURL string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	c.normalize()
	if provider == string(providers.Ollama) {
		c.OllamaHost = baseURL
	}
	pc := c.Providers[provider]
	pc.BaseURL = baseURL
	c.Providers[provider] = pc
}

// ProviderOptions builds client options for every built-in provider.
// modelOverride applies to target only. maxTokens overrides the configured
// max_tokens when positive.
func (c *Config) ProviderOptions(target, modelOverride string, maxTokens int) map[providers.Name]providers.ClientOptions {
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	target = strings.ToLower(strings.TrimSpace(target))
	options := make(map[providers.Name]providers.ClientOptions, len(builtinProviders))
	for _, name := range BuiltinProviderNames() {
		explicit := ""
		if name == target {
			explicit = modelOverride
		}
		options[providers.Name(name)] = providers.ClientOptions{
			APIKey:    c.ResolveAPIKey(name),
			BaseURL:   c.ResolveBaseURL(name),
			Model:     c.ResolveModel(name, explicit),
			MaxTokens: maxTokens,
		}
	}
	return options
}

func (c *Config) compactForSave() *Config {
	compacted := *c

	compacted.Providers = nil
	if len(c.Providers) > 0 {
		compact := map[string]ProviderConfig{}
		for provider, raw := range c.Providers {
			provider = strings.ToLower(strings.TrimSpace(provider))
			if provider == "" {
				continue
			}
			normalized := ProviderConfig{
				APIKey:    strings.TrimSpace(raw.APIKey),
				Model:     strings.TrimSpace(raw.Model),
				BaseURL:   strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"),
				APIKeyEnv: strings.TrimSpace(raw.APIKeyEnv),
			}
			if normalized.APIKey == "" && normalized.Model == "" && normalized.BaseURL == "" && normalized.APIKeyEnv == "" {
				continue
			}
			compact[provider] = normalized
		}
		if len(compact) > 0 {
			compacted.Providers = compact
		}
	}

	compacted.OllamaHost = strings.TrimRight(strings.TrimSpace(c.OllamaHost), "/")
	if compacted.OllamaHost == strings.TrimRight(builtinProviders[string(providers.Ollama)].BaseURL, "/") {
		compacted.OllamaHost = ""
	}

	return &compacted
}

func builtinProviderScaffold() map[string]ProviderConfig {
	scaffold := map[string]ProviderConfig{}
	for _, name := range BuiltinProviderNames() {
		defaults, _ := BuiltinProviderDefaults(name)
		cfg := ProviderConfig{Model: providers.DefaultModel(providers.Name(name))}
		if strings.TrimSpace(defaults.APIKeyEnv) != "" {
			cfg.APIKeyEnv = strings.TrimSpace(defaults.APIKeyEnv)
		}
		if name == string(providers.Ollama) {
			cfg.BaseURL = strings.TrimRight(strings.TrimSpace(defaults.BaseURL), "/")
		}
		scaffold[name] = cfg
	}
	return scaffold
}

func writeSecure(path string, payload any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return fmt.Errorf("set config directory permissions: %w", err)
	}

	var (
		encoded []byte
		err     error
	)
	if isYAML(path) {
		encoded, err = yaml.Marshal(payload)
	} else {
		encoded, err = json.MarshalIndent(payload, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("set config file permissions: %w", err)
	}
	return nil
}
