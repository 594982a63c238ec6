package cli

import (
	"fmt"
	"strconv"
	"strings"
)

type optionSpec struct {
	Names      []string
	TakesValue bool
	Set        func(string) error
}

// scanOptions consumes the options described by specs and returns the
// remaining positional words in order. Options may appear anywhere; "--"
// ends option parsing. Negative numbers such as "-3" stay positional, and
// single-letter switches can be bundled ("-ki").
func scanOptions(args []string, specs []optionSpec) ([]string, error) {
	index := map[string]optionSpec{}
	for _, spec := range specs {
		for _, name := range spec.Names {
			key := strings.TrimSpace(name)
			if key == "" {
				continue
			}
			index[key] = spec
		}
	}

	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		if !isOptionToken(arg) {
			rest = append(rest, args[i])
			continue
		}

		name, value, hasValue := parseOptionToken(arg)
		spec, ok := index[name]
		if !ok {
			bundle, err := expandBundle(arg, index)
			if err != nil {
				return nil, err
			}
			for _, s := range bundle {
				if err := applyOption(s, ""); err != nil {
					return nil, err
				}
			}
			continue
		}

		if spec.TakesValue {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("%s requires a value", formatFlagName(name))
				}
				i++
				value = args[i]
			}
			if strings.TrimSpace(value) == "" {
				return nil, fmt.Errorf("%s requires a non-empty value", formatFlagName(name))
			}
			if err := applyOption(spec, value); err != nil {
				return nil, err
			}
			continue
		}

		if hasValue {
			return nil, fmt.Errorf("%s does not accept a value", formatFlagName(name))
		}
		if err := applyOption(spec, ""); err != nil {
			return nil, err
		}
	}

	return rest, nil
}

func applyOption(spec optionSpec, value string) error {
	if spec.Set == nil {
		return nil
	}
	return spec.Set(value)
}

// expandBundle splits "-abc" into the switches -a, -b and -c. Every letter
// must name a switch that takes no value.
func expandBundle(arg string, index map[string]optionSpec) ([]optionSpec, error) {
	unknown := fmt.Errorf("unknown option %q (use --help)", arg)
	if strings.HasPrefix(arg, "--") || strings.ContainsRune(arg, '=') {
		return nil, unknown
	}
	letters := strings.TrimPrefix(arg, "-")
	if len(letters) < 2 {
		return nil, unknown
	}
	out := make([]optionSpec, 0, len(letters))
	for _, r := range letters {
		spec, ok := index[string(r)]
		if !ok {
			return nil, unknown
		}
		if spec.TakesValue {
			return nil, fmt.Errorf("-%c requires a value and cannot be combined in %q", r, arg)
		}
		out = append(out, spec)
	}
	return out, nil
}

func isOptionToken(arg string) bool {
	if !strings.HasPrefix(arg, "-") || arg == "-" {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return true
}

func parseOptionToken(arg string) (name, value string, hasValue bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if idx := strings.IndexByte(trimmed, '='); idx >= 0 {
		return trimmed[:idx], trimmed[idx+1:], true
	}
	return trimmed, "", false
}

func formatFlagName(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

func isHelpToken(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "help" || value == "-h" || value == "--help"
}

func containsHelpFlag(args []string) bool {
	for _, arg := range args {
		if isHelpToken(arg) {
			return true
		}
	}
	return false
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}

func unknownSubcommand(command string, sub string) error {
	return fmt.Errorf("unknown %s subcommand %q", command, sub)
}
