package cli

import (
	"fmt"
	"strings"

	"golang.org/x/term"

	"github.com/sasanktumpati/fetchllm/internal/config"
	"github.com/sasanktumpati/fetchllm/internal/logger"
)

func (a *App) runKeys(args []string) error {
	if len(args) == 0 {
		printHelp(a.stdout, "key", a.cfgPath)
		return nil
	}
	if a.helpRequested("key", args, 0, 1) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "set":
		return a.keySet(args[1:])
	case "clear":
		return a.keyClear(args[1:])
	case "show":
		return a.keyShow(args[1:])
	default:
		return unknownSubcommand("key", sub)
	}
}

func (a *App) keyProvider(args []string, usage string) (string, error) {
	if len(args) == 0 {
		return "", usageError(usage)
	}
	provider := strings.ToLower(strings.TrimSpace(args[0]))
	if !config.IsBuiltinProvider(provider) {
		return "", fmt.Errorf("unknown provider %q", provider)
	}
	if _, ok := builtinEnv(provider); !ok {
		return "", fmt.Errorf("provider %q does not use an API key", provider)
	}
	return provider, nil
}

func (a *App) keySet(args []string) error {
	provider, err := a.keyProvider(args, "fetchllm key set <provider> [--value <key>] [--env <ENV_VAR>]")
	if err != nil {
		return err
	}

	var value string
	var envVar string
	rest, err := scanOptions(args[1:], []optionSpec{
		{Names: []string{"value"}, TakesValue: true, Set: func(v string) error { value = strings.TrimSpace(v); return nil }},
		{Names: []string{"env"}, TakesValue: true, Set: func(v string) error { envVar = strings.TrimSpace(v); return nil }},
	})
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	if value == "" && envVar == "" {
		prompted, err := a.readSecret("API key: ")
		if err != nil {
			return err
		}
		if prompted == "" {
			return fmt.Errorf("no API key entered")
		}
		value = prompted
	}

	if envVar != "" {
		a.cfg.SetAPIKeyEnv(provider, envVar)
	}
	if value != "" {
		a.cfg.SetAPIKey(provider, value)
	}
	if err := a.saveConfig(); err != nil {
		return err
	}

	msg := fmt.Sprintf("updated credentials for %s", provider)
	if envVar != "" {
		msg += fmt.Sprintf(" (env=%s)", envVar)
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}

func (a *App) keyClear(args []string) error {
	provider, err := a.keyProvider(args, "fetchllm key clear <provider>")
	if err != nil {
		return err
	}
	a.cfg.SetAPIKey(provider, "")
	a.cfg.SetAPIKeyEnv(provider, "")
	if err := a.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "cleared credentials for %s\n", provider)
	return nil
}

func (a *App) keyShow(args []string) error {
	provider, err := a.keyProvider(args, "fetchllm key show <provider>")
	if err != nil {
		return err
	}

	masked := logger.Redact(a.cfg.ResolveAPIKey(provider))
	if masked == "" {
		masked = "<empty>"
	}
	source := a.cfg.APIKeySource(provider)
	if source == "" {
		source = "none"
	}
	envVar := strings.TrimSpace(a.cfg.Providers[provider].APIKeyEnv)
	if envVar == "" {
		envVar, _ = builtinEnv(provider)
	}

	fmt.Fprintf(a.stdout, "provider=%s\n", provider)
	fmt.Fprintf(a.stdout, "api_key=%s\n", masked)
	fmt.Fprintf(a.stdout, "source=%s\n", source)
	fmt.Fprintf(a.stdout, "api_key_env=%s\n", envVar)
	return nil
}

func (a *App) readSecret(prompt string) (string, error) {
	file, ok := a.stdin.(interface{ Fd() uintptr })
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return readLine(a.stdin, a.stdout, prompt)
	}

	fd := int(file.Fd())
	fmt.Fprint(a.stdout, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(a.stdout)
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func builtinEnv(provider string) (string, bool) {
	defaults, ok := config.BuiltinProviderDefaults(provider)
	if !ok || strings.TrimSpace(defaults.APIKeyEnv) == "" {
		return "", false
	}
	return defaults.APIKeyEnv, true
}
