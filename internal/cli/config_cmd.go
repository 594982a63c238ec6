package cli

import (
	"fmt"
	"os"
	"strings"
)

func (a *App) runConfig(args []string) error {
	if len(args) == 0 {
		return a.configShow()
	}
	if a.helpRequested("config", args, 0, 1) {
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "show":
		return a.configShow()
	case "path":
		fmt.Fprintln(a.stdout, a.cfgPath)
		return nil
	default:
		return unknownSubcommand("config", sub)
	}
}

// configShow prints the file as stored, without resolving env vars.
func (a *App) configShow() error {
	buf, err := os.ReadFile(a.cfgPath)
	if err != nil {
		return err
	}
	if _, err := a.stdout.Write(buf); err != nil {
		return err
	}
	if len(buf) == 0 || buf[len(buf)-1] != '\n' {
		fmt.Fprintln(a.stdout)
	}
	return nil
}
