package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/sasanktumpati/fetchllm/internal/config"
	"github.com/sasanktumpati/fetchllm/internal/input"
	"github.com/sasanktumpati/fetchllm/internal/logger"
	"github.com/sasanktumpati/fetchllm/internal/transcribe"
)

var errShowHelp = errors.New("show help")

// App encapsulates CLI runtime dependencies and loaded configuration.
type App struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	cfgPath string
	cfg     *config.Config

	// transcriber overrides the configured speech-to-text command.
	transcriber input.Transcriber
	// copyText overrides the system clipboard.
	copyText func(string) error
}

// Run executes the fetchllm CLI with the provided process arguments and streams.
func Run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	app, rest, done, err := newApp(args, stdin, stdout, stderr)
	if err != nil || done {
		return err
	}
	return app.dispatch(rest)
}

func newApp(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) (*App, []string, bool, error) {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	logger.SetOutput(stderr)

	global, rest, err := parseGlobalArgs(args)
	if err != nil {
		return nil, nil, false, err
	}

	cfgPath, err := config.ResolvePath(global.ConfigPath)
	if err != nil {
		return nil, nil, false, err
	}

	cwd, _ := os.Getwd()
	loaded, err := config.LoadDotEnv(cwd, filepath.Dir(cfgPath))
	if err != nil {
		return nil, nil, false, err
	}

	cfg, loadErr := config.Load(cfgPath)
	if loadErr != nil && !errors.Is(loadErr, config.ErrConfigNotFound) {
		return nil, nil, false, loadErr
	}
	created := errors.Is(loadErr, config.ErrConfigNotFound)
	if created {
		if err := config.Save(cfgPath, cfg); err != nil {
			return nil, nil, false, err
		}
	}
	logger.SetLevel(cfg.LogLevel)
	if created {
		logger.Infof("created default config at %s", cfgPath)
	}
	for _, path := range loaded {
		logger.Infof("loaded environment from %s", path)
	}

	app := &App{stdin: stdin, stdout: stdout, stderr: stderr, cfgPath: cfgPath, cfg: cfg}
	if global.ShowVersion {
		fmt.Fprintln(app.stdout, version)
		return app, nil, true, nil
	}
	if global.ShowHelp {
		return app, append([]string{"help"}, rest...), false, nil
	}
	return app, rest, false, nil
}

func (a *App) dispatch(args []string) error {
	if len(args) == 0 {
		printHelp(a.stdout, "", a.cfgPath)
		return nil
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	switch sub {
	case "help":
		topic := ""
		if len(args) > 1 {
			topic = strings.ToLower(strings.TrimSpace(args[1]))
		}
		printHelp(a.stdout, topic, a.cfgPath)
		return nil
	case "-h", "--help":
		printHelp(a.stdout, "", a.cfgPath)
		return nil
	case "version", "--version", "-v":
		fmt.Fprintln(a.stdout, version)
		return nil
	case "models", "model":
		return a.runModels(args[1:])
	case "providers", "provider":
		return a.runProviders(args[1:])
	case "key", "keys":
		return a.runKeys(args[1:])
	case "config":
		return a.runConfig(args[1:])
	case "markdown":
		return a.runMarkdown(args[1:])
	default:
		return a.runFetch(args)
	}
}

func (a *App) saveConfig() error {
	return config.Save(a.cfgPath, a.cfg)
}

func (a *App) newTranscriber() input.Transcriber {
	if a.transcriber != nil {
		return a.transcriber
	}
	return transcribe.New(a.cfg.Transcriber.Command, a.cfg.Transcriber.Args)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func terminalWidth(w io.Writer) int {
	const fallback = 100
	fdw, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return fallback
	}
	fd := int(fdw.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

func readLine(reader io.Reader, writer io.Writer, prompt string) (string, error) {
	fmt.Fprint(writer, prompt)
	buffer := bufio.NewReader(reader)
	line, err := buffer.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
