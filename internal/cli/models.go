package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sasanktumpati/fetchllm/internal/providers"
)

func (a *App) runModels(args []string) error {
	if len(args) == 0 {
		return a.listModels()
	}
	if a.helpRequested("models", args) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "list", "ls":
		return a.listModels()
	case "current":
		if len(args) < 2 {
			return usageError("fetchllm models current <provider>")
		}
		return a.currentModel(args[1])
	case "set":
		if len(args) < 3 {
			return usageError("fetchllm models set <provider> <model>")
		}
		return a.setModel(args[1], strings.Join(args[2:], " "))
	case "reset":
		if len(args) < 2 {
			return usageError("fetchllm models reset <provider>")
		}
		return a.setModel(args[1], "")
	default:
		return unknownSubcommand("models", sub)
	}
}

func (a *App) listModels() error {
	tw := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tDEFAULT")
	for _, n := range providers.Names() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n, a.cfg.ResolveModel(string(n), ""), providers.DefaultModel(n))
	}
	return tw.Flush()
}

func (a *App) currentModel(raw string) error {
	n, err := providers.ParseName(raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, a.cfg.ResolveModel(string(n), ""))
	return nil
}

// setModel stores model as the provider default. An empty model restores
// the built-in default.
func (a *App) setModel(raw, model string) error {
	n, err := providers.ParseName(raw)
	if err != nil {
		return err
	}
	a.cfg.SetModel(string(n), model)
	if err := a.saveConfig(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s model set to %s\n", n, a.cfg.ResolveModel(string(n), ""))
	return nil
}
