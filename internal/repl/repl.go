// Package repl runs the interactive prompt loop and clipboard helpers.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/chzyer/readline"
)

// Options controls the prompt label and IO streams of Loop.
type Options struct {
	Prompt string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Handler is called once per non-empty line. An error is printed and the
// loop continues.
type Handler func(ctx context.Context, line string) error

// Loop reads prompts until EOF, Ctrl+D, "exit" or "quit". Ctrl+C clears
// the current line, and a second Ctrl+C on an empty line exits.
func Loop(ctx context.Context, opts Options, handle Handler) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		opts.Prompt = "> "
	}

	cfg := &readline.Config{
		Prompt:          opts.Prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		Stdout:          opts.Stdout,
		Stderr:          opts.Stderr,
	}
	if in, ok := opts.Stdin.(io.ReadCloser); ok {
		cfg.Stdin = in
	} else if opts.Stdin != nil {
		cfg.Stdin = io.NopCloser(opts.Stdin)
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("init prompt: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(opts.Stdout, `Type a prompt and press Enter. "exit" or Ctrl+D quits.`)
	return run(ctx, rl.Readline, opts.Stderr, handle)
}

func run(ctx context.Context, next func() (string, error), stderr io.Writer, handle Handler) error {
	interrupted := false
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := next()
		if errors.Is(err, readline.ErrInterrupt) {
			if interrupted && strings.TrimSpace(line) == "" {
				return nil
			}
			interrupted = true
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}
		interrupted = false

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}
		if err := handle(ctx, line); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", ":q":
		return true
	default:
		return false
	}
}

type clipboardCmd struct {
	name string
	args []string
}

// CopyToClipboard pipes text into the first clipboard tool that works on
// this platform.
func CopyToClipboard(text string) error {
	return copyToClipboard(text, runtime.GOOS)
}

func copyToClipboard(text string, goos string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("clipboard text is empty")
	}

	for _, c := range clipboardCommands(goos) {
		cmd := exec.Command(c.name, c.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return errors.New("no working clipboard command found")
}

func clipboardCommands(goos string) []clipboardCmd {
	switch goos {
	case "darwin":
		return []clipboardCmd{{name: "pbcopy"}}
	case "windows":
		return []clipboardCmd{{name: "cmd", args: []string{"/c", "clip"}}}
	default:
		return []clipboardCmd{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}
