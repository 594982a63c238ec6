package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sasanktumpati/fetchllm/internal/modes"
)

const version = "0.3.0"

// helpRequested prints topic help when any of args at the given positions is
// a help token, or when any arg is one if no positions are given.
func (a *App) helpRequested(topic string, args []string, positions ...int) bool {
	found := false
	if len(positions) == 0 {
		found = containsHelpFlag(args)
	}
	for _, idx := range positions {
		if idx >= 0 && idx < len(args) && isHelpToken(args[idx]) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	printHelp(a.stdout, topic, a.cfgPath)
	return true
}

func printHelp(w io.Writer, topic string, cfgPath string) {
	switch topic {
	case "", "root":
		printRootHelp(w, cfgPath)
	case "fetch":
		printFetchHelp(w)
	case "modes", "mode":
		printModesHelp(w)
	case "models", "model":
		printModelsHelp(w)
	case "provider", "providers":
		printProvidersHelp(w)
	case "key", "keys":
		printKeysHelp(w)
	case "config":
		printConfigHelp(w, cfgPath)
	case "markdown":
		printMarkdownHelp(w)
	default:
		fmt.Fprintf(w, "unknown help topic %q\n\n", topic)
		printRootHelp(w, cfgPath)
	}
}

func printRootHelp(w io.Writer, cfgPath string) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "fetchllm v%s\n", version)
	fmt.Fprintln(tw, "One command line for ollama, openai, claude, gemini and huggingface.")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm [global flags] <provider> [prompt...] [options]")
	fmt.Fprintln(tw, "  fetchllm [global flags] <command> [flags]")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "GLOBAL FLAGS")
	fmt.Fprintln(tw, "  -c, --config <path>\tconfig file path (or FETCHLLM_CONFIG)")
	fmt.Fprintln(tw, "  -h, --help\tshow help")
	fmt.Fprintln(tw, "  -v, --version\tshow version")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "COMMANDS")
	fmt.Fprintln(tw, "  providers\tlist/show providers and their settings")
	fmt.Fprintln(tw, "  models\tshow/set default models")
	fmt.Fprintln(tw, "  key\tset/show/clear API keys")
	fmt.Fprintln(tw, "  config\tshow config and paths")
	fmt.Fprintln(tw, "  markdown\ttoggle markdown rendering")
	fmt.Fprintln(tw, "  help [topic]\tshow topic help")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "EXAMPLES")
	fmt.Fprintln(tw, "  fetchllm openai \"explain context cancellation in Go\"")
	fmt.Fprintln(tw, "  fetchllm claude --image chart.png \"summarize this chart\"")
	fmt.Fprintln(tw, "  fetchllm ollama --input-file prompts.txt --mode qa --parallel 4")
	fmt.Fprintln(tw, "  fetchllm gemini --audio memo.wav --json")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "TOPICS")
	fmt.Fprintln(tw, "  fetchllm help fetch|modes|models|providers|key|config|markdown")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "CONFIG")
	fmt.Fprintf(tw, "  File:\t%s\n", cfgPath)
	fmt.Fprintln(tw, "  FETCHLLM_CONFIG_DIR:\tdefault config directory override")
	fmt.Fprintln(tw, "  .env:\tloaded from the working and config directories")

	_ = tw.Flush()
}

func printFetchHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm <provider> [prompt...] [options]")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "INPUT (first match wins)")
	fmt.Fprintln(tw, "  --audio <path>\ttranscribe audio and use it as the prompt")
	fmt.Fprintln(tw, "  -f, --input-file <path>\tone prompt per non-empty line")
	fmt.Fprintln(tw, "  [prompt...]\tremaining words joined by spaces")
	fmt.Fprintln(tw, "  -i, --interactive\tread prompts from a prompt loop")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "OPTIONS")
	fmt.Fprintln(tw, "  --image <path>\tattach an image to every prompt")
	fmt.Fprintln(tw, "  -m, --model <id>\tmodel to use")
	fmt.Fprintln(tw, "  -s, --system <text>\tsystem prompt (overrides --mode)")
	fmt.Fprintln(tw, "  --mode <name>\tpreset system prompt (default: simple)")
	fmt.Fprintln(tw, "  --max-tokens <n>\tresponse token cap (claude)")
	fmt.Fprintln(tw, "  --timeout <dur|sec>\tper-request timeout (default: none)")
	fmt.Fprintln(tw, "  -p, --parallel <n>\tconcurrent requests for --input-file (default: 1)")
	fmt.Fprintln(tw, "  -k, --keep-going\treport failed prompts and continue")
	fmt.Fprintln(tw, "  --json\tprint text, raw_response and usage as JSON")
	fmt.Fprintln(tw, "  --no-markdown\tdisable markdown rendering for this call")
	fmt.Fprintln(tw, "  --copy\tcopy the last response to the clipboard")
	fmt.Fprintln(tw, "  --verbose\tdebug logging on stderr")
	_ = tw.Flush()
}

func printModesHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "MODES")
	for _, m := range modes.All() {
		prompt := m.Prompt()
		if prompt == "" {
			prompt = "(no system prompt)"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", m, prompt)
	}
	_ = tw.Flush()
}

func printModelsHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm models list")
	fmt.Fprintln(tw, "  fetchllm models current <provider>")
	fmt.Fprintln(tw, "  fetchllm models set <provider> <model>")
	fmt.Fprintln(tw, "  fetchllm models reset <provider>")
	_ = tw.Flush()
}

func printProvidersHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm providers list")
	fmt.Fprintln(tw, "  fetchllm providers show <name>")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  base_url and model can be changed per provider in the config file")
	fmt.Fprintln(tw, "  ollama_host overrides the ollama base_url")
	_ = tw.Flush()
}

func printKeysHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm key set <provider> [--value <key>] [--env <ENV_VAR>]")
	fmt.Fprintln(tw, "  fetchllm key show <provider>")
	fmt.Fprintln(tw, "  fetchllm key clear <provider>")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "NOTES")
	fmt.Fprintln(tw, "  key set without --value prompts for secret input")
	fmt.Fprintln(tw, "  env var values take precedence over config api_key")
	fmt.Fprintln(tw, "  defaults: OPENAI_API_KEY, CLAUDE_API_KEY, GEMINI_API_KEY, HF_TOKEN")
	_ = tw.Flush()
}

func printConfigHelp(w io.Writer, cfgPath string) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm config show")
	fmt.Fprintln(tw, "  fetchllm config path")
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PATHS")
	fmt.Fprintf(tw, "  Config:\t%s\n", cfgPath)
	fmt.Fprintln(tw, "  Format:\tJSON, or YAML when the path ends in .yaml/.yml")
	_ = tw.Flush()
}

func printMarkdownHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  fetchllm markdown on")
	fmt.Fprintln(tw, "  fetchllm markdown off")
	fmt.Fprintln(tw, "  fetchllm markdown toggle")
	fmt.Fprintln(tw, "  fetchllm markdown status")
	_ = tw.Flush()
}
