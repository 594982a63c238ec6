package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sasanktumpati/fetchllm/internal/providers"
)

func TestDefaultPathUsesFetchllmDirectory(t *testing.T) {
	t.Setenv("FETCHLLM_CONFIG_DIR", "")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	suffix := filepath.Join(".fetchllm", "config.json")
	if !strings.HasSuffix(path, suffix) {
		t.Fatalf("path %q does not end with %q", path, suffix)
	}
}

func TestDefaultDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FETCHLLM_CONFIG_DIR", dir)
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if want := filepath.Join(dir, "config.json"); path != want {
		t.Fatalf("DefaultPath() = %q, want %q", path, want)
	}
}

func TestBuiltinProviderNamesMatchRegistry(t *testing.T) {
	names := BuiltinProviderNames()
	want := providers.Names()
	if len(names) != len(want) {
		t.Fatalf("BuiltinProviderNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != string(want[i]) {
			t.Fatalf("BuiltinProviderNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetModel("ollama", "llama3.2")
	cfg.SetAPIKey("openai", "sk-test")
	cfg.RenderMarkdown = false
	cfg.MaxTokens = 2048
	cfg.Transcriber = TranscriberConfig{Command: "whisper-cli", Args: []string{"-f", "{audio}"}}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.GetModel("ollama") != "llama3.2" {
		t.Fatalf("unexpected loaded config: %+v", loaded)
	}
	if loaded.Providers["openai"].APIKey != "sk-test" {
		t.Fatalf("api key mismatch after load")
	}
	if loaded.RenderMarkdown || loaded.MaxTokens != 2048 {
		t.Fatalf("unexpected loaded config: %+v", loaded)
	}
	if loaded.Transcriber.Command != "whisper-cli" || len(loaded.Transcriber.Args) != 2 {
		t.Fatalf("transcriber = %+v", loaded.Transcriber)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat config: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("mode = %o, want 600", info.Mode().Perm())
		}
	}
}

func TestSaveLoadYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetAPIKey("gemini", "g-key")
	cfg.LogLevel = "debug"

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(buf), "api_key: g-key") {
		t.Fatalf("expected YAML output, got: %s", buf)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.Providers["gemini"].APIKey; got != "g-key" {
		t.Fatalf("gemini api key = %q, want g-key", got)
	}
	if loaded.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", loaded.LogLevel)
	}
}

func TestLoadHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "providers:\n  Claude:\n    model: claude-test\nollama_host: http://gpu-box:11434/\nrender_markdown: true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetModel("claude"); got != "claude-test" {
		t.Fatalf("GetModel(claude) = %q, want claude-test", got)
	}
	if got := cfg.ResolveBaseURL("ollama"); got != "http://gpu-box:11434" {
		t.Fatalf("ResolveBaseURL(ollama) = %q", got)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != ErrConfigNotFound {
		t.Fatalf("Load() error = %v, want ErrConfigNotFound", err)
	}
	if cfg == nil || !cfg.RenderMarkdown {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() expected error for malformed JSON")
	}
}

func TestResolvePath_EnvOverride(t *testing.T) {
	t.Setenv("FETCHLLM_CONFIG", "/tmp/custom-fetchllm.json")
	path, err := ResolvePath("")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if path != filepath.Clean("/tmp/custom-fetchllm.json") {
		t.Fatalf("path = %q", path)
	}
}

func TestResolvePath_ExplicitOverrideWins(t *testing.T) {
	t.Setenv("FETCHLLM_CONFIG", "/tmp/from-env.json")
	path, err := ResolvePath("/tmp/from-arg.json")
	if err != nil {
		t.Fatalf("ResolvePath() error = %v", err)
	}
	if path != filepath.Clean("/tmp/from-arg.json") {
		t.Fatalf("path = %q", path)
	}
}

func TestDefaultConfigUsesBuiltinProviderDefaults(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range BuiltinProviderNames() {
		def, _ := BuiltinProviderDefaults(name)
		if got := cfg.ResolveBaseURL(name); got == "" {
			t.Fatalf("provider %q resolved empty base_url", name)
		}
		if got, want := cfg.GetModel(name), providers.DefaultModel(providers.Name(name)); got != want {
			t.Fatalf("provider %q model = %q, want %q", name, got, want)
		}
		if def.APIKeyEnv != "" {
			cfg.SetAPIKeyEnv(name, "")
			t.Setenv(def.APIKeyEnv, "from-env")
			if got := cfg.ResolveAPIKey(name); got != "from-env" {
				t.Fatalf("provider %q ResolveAPIKey() = %q, want from-env", name, got)
			}
		}
	}
}

func TestBuiltinAPIKeyEnvNames(t *testing.T) {
	want := map[string]string{
		"openai":      "OPENAI_API_KEY",
		"claude":      "CLAUDE_API_KEY",
		"gemini":      "GEMINI_API_KEY",
		"huggingface": "HF_TOKEN",
		"ollama":      "",
	}
	for name, env := range want {
		def, ok := BuiltinProviderDefaults(name)
		if !ok {
			t.Fatalf("missing builtin %q", name)
		}
		if def.APIKeyEnv != env {
			t.Fatalf("%s APIKeyEnv = %q, want %q", name, def.APIKeyEnv, env)
		}
	}
}

func TestResolveAPIKey_EnvOverridesPlainKeyWithoutMutatingConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers["openai"] = ProviderConfig{
		APIKey:    "sk-config",
		APIKeyEnv: "OPENAI_API_KEY",
	}
	t.Setenv("OPENAI_API_KEY", "sk-env")

	got := cfg.ResolveAPIKey("openai")
	if got != "sk-env" {
		t.Fatalf("ResolveAPIKey() = %q, want sk-env", got)
	}
	if src := cfg.APIKeySource("openai"); src != "$OPENAI_API_KEY" {
		t.Fatalf("APIKeySource() = %q, want $OPENAI_API_KEY", src)
	}

	if cfg.Providers["openai"].APIKey != "sk-config" {
		t.Fatalf("api_key was mutated to %q", cfg.Providers["openai"].APIKey)
	}
}

func TestResolveAPIKey_CustomEnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetAPIKeyEnv("claude", "WORK_CLAUDE_KEY")
	cfg.SetAPIKey("claude", "stored")
	t.Setenv("CLAUDE_API_KEY", "builtin-env")
	t.Setenv("WORK_CLAUDE_KEY", "custom-env")

	if got := cfg.ResolveAPIKey("claude"); got != "custom-env" {
		t.Fatalf("ResolveAPIKey() = %q, want custom-env", got)
	}

	t.Setenv("WORK_CLAUDE_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	if got := cfg.ResolveAPIKey("claude"); got != "stored" {
		t.Fatalf("ResolveAPIKey() = %q, want stored", got)
	}
	if src := cfg.APIKeySource("claude"); src != "config" {
		t.Fatalf("APIKeySource() = %q, want config", src)
	}
}

func TestResolveModelPrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetModel("gemini", "")
	if got := cfg.ResolveModel("gemini", ""); got != providers.DefaultModel(providers.Gemini) {
		t.Fatalf("ResolveModel() = %q, want builtin default", got)
	}
	cfg.SetModel("gemini", "gemini-custom")
	if got := cfg.ResolveModel("gemini", ""); got != "gemini-custom" {
		t.Fatalf("ResolveModel() = %q, want gemini-custom", got)
	}
	if got := cfg.ResolveModel("gemini", "gemini-flag"); got != "gemini-flag" {
		t.Fatalf("ResolveModel() = %q, want gemini-flag", got)
	}
	if got := cfg.ResolveModel("nope", ""); got != "" {
		t.Fatalf("ResolveModel(nope) = %q, want empty", got)
	}
}

func TestProviderOptions(t *testing.T) {
	for _, env := range []string{"OPENAI_API_KEY", "CLAUDE_API_KEY", "GEMINI_API_KEY", "HF_TOKEN"} {
		t.Setenv(env, "")
	}
	cfg := DefaultConfig()
	cfg.MaxTokens = 512
	cfg.SetAPIKey("openai", "sk-1")
	cfg.SetBaseURL("openai", "http://127.0.0.1:9999/v1/")

	opts := cfg.ProviderOptions("openai", "gpt-flag", 0)
	if len(opts) != len(providers.Names()) {
		t.Fatalf("ProviderOptions() has %d entries", len(opts))
	}
	o := opts[providers.OpenAI]
	if o.APIKey != "sk-1" || o.BaseURL != "http://127.0.0.1:9999/v1" || o.Model != "gpt-flag" || o.MaxTokens != 512 {
		t.Fatalf("openai options = %+v", o)
	}
	if got := opts[providers.Claude].Model; got != providers.DefaultModel(providers.Claude) {
		t.Fatalf("claude model = %q, override must only apply to the target", got)
	}
	if got := opts[providers.Claude].APIKey; got != "" {
		t.Fatalf("claude key = %q, want empty", got)
	}

	if got := cfg.ProviderOptions("claude", "", 64)[providers.Claude].MaxTokens; got != 64 {
		t.Fatalf("MaxTokens = %d, want 64", got)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.WriteFile(filepath.Join(first, ".env"), []byte("FETCHLLM_TEST_A=first\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := os.WriteFile(filepath.Join(second, ".env"), []byte("FETCHLLM_TEST_A=second\nFETCHLLM_TEST_B=second\nFETCHLLM_TEST_C=second\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("FETCHLLM_TEST_A", "")
	os.Unsetenv("FETCHLLM_TEST_A")
	t.Setenv("FETCHLLM_TEST_B", "")
	os.Unsetenv("FETCHLLM_TEST_B")
	t.Setenv("FETCHLLM_TEST_C", "preset")

	loaded, err := LoadDotEnv(first, second, "", t.TempDir())
	if err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %v, want two files", loaded)
	}
	if got := os.Getenv("FETCHLLM_TEST_A"); got != "first" {
		t.Fatalf("FETCHLLM_TEST_A = %q, want first", got)
	}
	if got := os.Getenv("FETCHLLM_TEST_B"); got != "second" {
		t.Fatalf("FETCHLLM_TEST_B = %q, want second", got)
	}
	if got := os.Getenv("FETCHLLM_TEST_C"); got != "preset" {
		t.Fatalf("FETCHLLM_TEST_C = %q, want preset", got)
	}
}

func TestSaveKeepsProviderScaffoldInDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	path := filepath.Join(t.TempDir(), "config.json")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content := string(buf)
	for _, name := range BuiltinProviderNames() {
		if !strings.Contains(content, `"`+name+`"`) {
			t.Fatalf("expected default config to include provider %q, got: %s", name, content)
		}
	}
	if !strings.Contains(content, "\"model\": \"gpt-4o-mini\"") {
		t.Fatalf("expected default config to include default provider model, got: %s", content)
	}
	if strings.Contains(content, "\"ollama_host\"") {
		t.Fatalf("expected default ollama host to be compacted away, got: %s", content)
	}
}
