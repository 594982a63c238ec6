package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type globalOptions struct {
	ConfigPath  string
	ShowHelp    bool
	ShowVersion bool
}

type fetchOptions struct {
	InputFile   string
	Image       string
	Audio       string
	Model       string
	System      string
	Mode        string
	AsJSON      bool
	MaxTokens   int
	Timeout     time.Duration
	Parallel    int
	KeepGoing   bool
	NoMarkdown  bool
	Copy        bool
	Interactive bool
	Verbose     bool
}

func parseGlobalArgs(args []string) (globalOptions, []string, error) {
	opts := globalOptions{}
	i := 0

	for i < len(args) {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			i++
			continue
		}
		if arg == "--" {
			i++
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			break
		}

		name, value, hasValue := parseOptionToken(arg)
		switch name {
		case "config", "c":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, nil, fmt.Errorf("%s requires a value", formatFlagName(name))
				}
				i++
				value = args[i]
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return opts, nil, fmt.Errorf("%s requires a non-empty value", formatFlagName(name))
			}
			opts.ConfigPath = value
		case "help", "h":
			opts.ShowHelp = true
		case "version", "v":
			opts.ShowVersion = true
		default:
			return opts, args[i:], nil
		}
		i++
	}

	return opts, args[i:], nil
}

// parseFetchArgs returns the options and the positional words: the provider
// followed by the prompt.
func parseFetchArgs(args []string) (fetchOptions, []string, error) {
	opts := fetchOptions{Parallel: 1}
	showHelp := false

	setString := func(dst *string) func(string) error {
		return func(v string) error { *dst = strings.TrimSpace(v); return nil }
	}
	setFlag := func(dst *bool) func(string) error {
		return func(string) error { *dst = true; return nil }
	}

	rest, err := scanOptions(args, []optionSpec{
		{Names: []string{"help", "h"}, Set: setFlag(&showHelp)},
		{Names: []string{"input-file", "f"}, TakesValue: true, Set: setString(&opts.InputFile)},
		{Names: []string{"image"}, TakesValue: true, Set: setString(&opts.Image)},
		{Names: []string{"audio"}, TakesValue: true, Set: setString(&opts.Audio)},
		{Names: []string{"model", "m"}, TakesValue: true, Set: setString(&opts.Model)},
		{Names: []string{"system", "s"}, TakesValue: true, Set: func(v string) error { opts.System = v; return nil }},
		{Names: []string{"mode"}, TakesValue: true, Set: setString(&opts.Mode)},
		{Names: []string{"json"}, Set: setFlag(&opts.AsJSON)},
		{Names: []string{"max-tokens"}, TakesValue: true, Set: func(v string) error {
			n, err := parsePositiveInt(v)
			if err != nil {
				return fmt.Errorf("--max-tokens: %w", err)
			}
			opts.MaxTokens = n
			return nil
		}},
		{Names: []string{"timeout"}, TakesValue: true, Set: func(v string) error {
			d, err := parseDuration(v)
			if err != nil {
				return fmt.Errorf("--timeout: %w", err)
			}
			opts.Timeout = d
			return nil
		}},
		{Names: []string{"parallel", "p"}, TakesValue: true, Set: func(v string) error {
			n, err := parsePositiveInt(v)
			if err != nil {
				return fmt.Errorf("--parallel: %w", err)
			}
			opts.Parallel = n
			return nil
		}},
		{Names: []string{"keep-going", "k"}, Set: setFlag(&opts.KeepGoing)},
		{Names: []string{"no-markdown"}, Set: setFlag(&opts.NoMarkdown)},
		{Names: []string{"copy"}, Set: setFlag(&opts.Copy)},
		{Names: []string{"interactive", "i"}, Set: setFlag(&opts.Interactive)},
		{Names: []string{"verbose"}, Set: setFlag(&opts.Verbose)},
	})
	if err != nil {
		return opts, nil, err
	}
	if showHelp {
		return opts, nil, errShowHelp
	}
	if len(rest) == 0 {
		return opts, nil, usageError("fetchllm <provider> [prompt] [options]")
	}
	return opts, rest, nil
}

// parseDuration accepts a Go duration or whole seconds. Zero disables the timeout.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("timeout value is empty")
	}
	if strings.ContainsAny(raw, "hms") {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, err
		}
		if d < 0 {
			return 0, fmt.Errorf("timeout must not be negative")
		}
		return d, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("timeout must be a non-negative integer seconds or duration")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}
