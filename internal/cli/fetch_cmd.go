package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sasanktumpati/fetchllm/internal/fetch"
	"github.com/sasanktumpati/fetchllm/internal/input"
	"github.com/sasanktumpati/fetchllm/internal/logger"
	"github.com/sasanktumpati/fetchllm/internal/modes"
	"github.com/sasanktumpati/fetchllm/internal/providers"
	"github.com/sasanktumpati/fetchllm/internal/render"
	"github.com/sasanktumpati/fetchllm/internal/repl"
)

const (
	missingInputMessage = "error: provide a prompt, --input-file, or --audio"
	separatorWidth      = 50
)

// fetchRun carries everything resolved before the first request.
type fetchRun struct {
	opts     fetchOptions
	batch    fetch.Batch
	markdown render.Options
	lastText string
}

func (a *App) runFetch(args []string) error {
	opts, positional, err := parseFetchArgs(args)
	if err != nil {
		if errors.Is(err, errShowHelp) {
			printHelp(a.stdout, "fetch", a.cfgPath)
			return nil
		}
		return err
	}
	if opts.Verbose {
		logger.SetLevel("debug")
	}

	name, err := providers.ParseName(positional[0])
	if err != nil {
		return fmt.Errorf("%w (valid: %s)", err, joinNames(providers.Names()))
	}
	system, err := modes.SystemPrompt(opts.Mode, opts.System)
	if err != nil {
		return err
	}

	src := input.Sources{
		AudioPath: opts.Audio,
		InputFile: opts.InputFile,
		Prompt:    strings.Join(positional[1:], " "),
	}
	if src.Empty() && !opts.Interactive {
		fmt.Fprintln(a.stdout, missingInputMessage)
		return nil
	}

	registry := providers.NewRegistry(a.cfg.ProviderOptions(string(name), opts.Model, opts.MaxTokens))
	if _, err := registry.Resolve(string(name)); err != nil {
		if errors.Is(err, providers.ErrMissingAPIKey) {
			if defaults, ok := builtinEnv(string(name)); ok {
				return fmt.Errorf("%w; set %s or run `fetchllm key set %s`", err, defaults, name)
			}
		}
		return err
	}

	callOpts := fetch.Options{
		Model:     a.cfg.ResolveModel(string(name), opts.Model),
		MaxTokens: opts.MaxTokens,
		Timeout:   opts.Timeout,
	}
	if opts.Image != "" {
		img, err := input.EncodeImage(opts.Image)
		if err != nil {
			return err
		}
		callOpts.ImageBase64 = img.Base64
		callOpts.ImageMediaType = img.MediaType
		logger.Debugf("attached %s (%s)", opts.Image, img.MediaType)
	}

	run := &fetchRun{
		opts: opts,
		batch: fetch.Batch{
			Resolver:     registry,
			Provider:     string(name),
			SystemPrompt: system,
			Options:      callOpts,
			Parallel:     opts.Parallel,
			KeepGoing:    opts.KeepGoing,
		},
		markdown: render.Options{
			Enabled: a.cfg.RenderMarkdown && !opts.NoMarkdown && !opts.AsJSON && isTerminalWriter(a.stdout),
			Width:   terminalWidth(a.stdout),
		},
	}

	ctx, cancel := signalContext()
	defer cancel()

	if src.Empty() {
		return a.interactive(ctx, run)
	}

	prompts, err := input.Collect(ctx, src, a.newTranscriber())
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		logger.Warnf("%s contains no prompts", src.InputFile)
	}
	if err := a.execute(ctx, run, prompts); err != nil {
		return err
	}
	if opts.Interactive {
		return a.interactive(ctx, run)
	}
	return nil
}

func (a *App) execute(ctx context.Context, run *fetchRun, prompts []string) error {
	if len(prompts) == 0 {
		return nil
	}
	spin := !run.opts.AsJSON && isTerminalWriter(a.stderr)
	stop := startSpinner(spin, a.stderr, "Waiting for "+run.batch.Provider)

	err := run.batch.Run(ctx, prompts, func(o fetch.Outcome) error {
		stop()
		if o.Err == nil {
			run.lastText = o.Result.Text
		}
		if err := a.printOutcome(run, o); err != nil {
			return err
		}
		if o.Index < len(prompts)-1 {
			stop = startSpinner(spin, a.stderr, "Waiting for "+run.batch.Provider)
		}
		return nil
	})
	stop()

	if run.opts.Copy && run.lastText != "" {
		a.copyResponse(run.lastText)
	}
	return err
}

func (a *App) interactive(ctx context.Context, run *fetchRun) error {
	return repl.Loop(ctx, repl.Options{
		Prompt: run.batch.Provider + "> ",
		Stdin:  a.stdin,
		Stdout: a.stdout,
		Stderr: a.stderr,
	}, func(ctx context.Context, line string) error {
		return a.fetchOne(ctx, run, line)
	})
}

// fetchOne sends a single interactive prompt. Failures are returned to the
// loop, which reports them and keeps reading.
func (a *App) fetchOne(ctx context.Context, run *fetchRun, prompt string) error {
	stop := startSpinner(!run.opts.AsJSON && isTerminalWriter(a.stderr), a.stderr, "Waiting for "+run.batch.Provider)
	res, err := fetch.FetchLLM(ctx, run.batch.Resolver, run.batch.Provider, prompt, run.batch.SystemPrompt, run.batch.Options)
	stop()
	if err != nil {
		return err
	}
	run.lastText = res.Text
	if err := a.printOutcome(run, fetch.Outcome{Prompt: prompt, Result: res}); err != nil {
		return err
	}
	if run.opts.Copy {
		a.copyResponse(res.Text)
	}
	return nil
}

func (a *App) printOutcome(run *fetchRun, o fetch.Outcome) error {
	if run.opts.AsJSON {
		if o.Err != nil {
			return writeJSON(a.stdout, map[string]string{"prompt": o.Prompt, "error": o.Err.Error()})
		}
		return writeJSON(a.stdout, o.Result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PROMPT: %s\n", o.Prompt)
	if o.Err != nil {
		fmt.Fprintf(&b, "ERROR: %v\n", o.Err)
	} else {
		fmt.Fprintf(&b, "RESPONSE: %s\n", a.formatText(run, o.Result.Text))
	}
	b.WriteString(strings.Repeat("-", separatorWidth))
	b.WriteString("\n")
	_, err := io.WriteString(a.stdout, b.String())
	return err
}

func (a *App) formatText(run *fetchRun, text string) string {
	if !run.markdown.Enabled {
		return text
	}
	rendered := render.Markdown(text, run.markdown)
	if rendered == "" {
		return text
	}
	return "\n" + rendered
}

func (a *App) copyResponse(text string) {
	copyText := a.copyText
	if copyText == nil {
		copyText = repl.CopyToClipboard
	}
	if err := copyText(text); err != nil {
		logger.Warnf("copy to clipboard: %v", err)
		return
	}
	fmt.Fprintln(a.stderr, "response copied to clipboard")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func joinNames(names []providers.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
