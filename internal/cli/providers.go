package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sasanktumpati/fetchllm/internal/config"
	"github.com/sasanktumpati/fetchllm/internal/providers"
)

func (a *App) runProviders(args []string) error {
	if len(args) == 0 {
		return a.providerList()
	}
	if a.helpRequested("providers", args, 0) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "list", "ls":
		return a.providerList()
	case "show", "inspect":
		if a.helpRequested("providers", args, 1) {
			return nil
		}
		if len(args) < 2 {
			return usageError("fetchllm providers show <name>")
		}
		return a.providerShow(args[1])
	default:
		return unknownSubcommand("providers", sub)
	}
}

func (a *App) providerList() error {
	tw := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODEL\tKEY\tBASE_URL")
	for _, n := range providers.Names() {
		name := string(n)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, a.cfg.ResolveModel(name, ""), a.keyStatus(n), a.cfg.ResolveBaseURL(name))
	}
	return tw.Flush()
}

func (a *App) keyStatus(n providers.Name) string {
	if !providers.RequiresAPIKey(n) {
		return "n/a"
	}
	if a.cfg.ResolveAPIKey(string(n)) == "" {
		return "missing"
	}
	return "set"
}

func (a *App) providerShow(raw string) error {
	n, err := providers.ParseName(raw)
	if err != nil {
		return err
	}
	name := string(n)

	type providerView struct {
		Name         string `json:"name"`
		Model        string `json:"model"`
		DefaultModel string `json:"default_model"`
		BaseURL      string `json:"base_url"`
		APIKeyEnv    string `json:"api_key_env,omitempty"`
		RequiresKey  bool   `json:"requires_api_key"`
		HasAPIKey    bool   `json:"has_api_key"`
		KeySource    string `json:"api_key_source,omitempty"`
	}

	view := providerView{
		Name:         name,
		Model:        a.cfg.ResolveModel(name, ""),
		DefaultModel: providers.DefaultModel(n),
		BaseURL:      a.cfg.ResolveBaseURL(name),
		APIKeyEnv:    strings.TrimSpace(a.cfg.Providers[name].APIKeyEnv),
		RequiresKey:  providers.RequiresAPIKey(n),
		HasAPIKey:    a.cfg.ResolveAPIKey(name) != "",
		KeySource:    a.cfg.APIKeySource(name),
	}
	if view.APIKeyEnv == "" {
		if defaults, ok := config.BuiltinProviderDefaults(name); ok {
			view.APIKeyEnv = defaults.APIKeyEnv
		}
	}
	return writeJSON(a.stdout, view)
}
