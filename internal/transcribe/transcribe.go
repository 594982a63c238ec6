// Package transcribe converts audio files to text by running an external
// speech-to-text command.
package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sasanktumpati/fetchllm/internal/logger"
)

// DefaultCommand is the whisper CLI with the base model.
const DefaultCommand = "whisper"

// Placeholders expanded in Args.
const (
	AudioPlaceholder     = "{audio}"
	OutputDirPlaceholder = "{output_dir}"
)

// DefaultArgs writes a plain-text transcript into the temp output dir.
var DefaultArgs = []string{AudioPlaceholder, "--model", "base", "--output_format", "txt", "--output_dir", OutputDirPlaceholder}

// ErrEmptyTranscript is returned when the command produced no text.
var ErrEmptyTranscript = errors.New("empty transcript")

// Command runs Name with Args. The transcript is read from
// <output_dir>/<audio basename without extension>.txt, falling back to stdout.
type Command struct {
	Name string
	Args []string
}

// New returns a Command, substituting the whisper defaults for empty values.
func New(name string, args []string) Command {
	if strings.TrimSpace(name) == "" {
		name = DefaultCommand
	}
	if len(args) == 0 {
		args = DefaultArgs
	}
	return Command{Name: name, Args: append([]string(nil), args...)}
}

func (c Command) Transcribe(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("audio file: %w", err)
	}
	outDir, err := os.MkdirTemp("", "fetchllm-transcript-*")
	if err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, c.Name, expandArgs(c.Args, path, outDir)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugf("transcribe: running %s on %s", c.Name, path)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s failed: %w: %s", c.Name, err, msg)
		}
		return "", fmt.Errorf("%s failed: %w", c.Name, err)
	}

	text := stdout.String()
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if data, err := os.ReadFile(filepath.Join(outDir, base+".txt")); err == nil {
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func expandArgs(args []string, audio, outDir string) []string {
	out := make([]string, 0, len(args)+1)
	sawAudio := false
	for _, arg := range args {
		if strings.Contains(arg, AudioPlaceholder) {
			sawAudio = true
		}
		arg = strings.ReplaceAll(arg, AudioPlaceholder, audio)
		arg = strings.ReplaceAll(arg, OutputDirPlaceholder, outDir)
		out = append(out, arg)
	}
	if !sawAudio {
		out = append(out, audio)
	}
	return out
}
