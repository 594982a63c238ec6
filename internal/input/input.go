// Package input gathers prompts and attachments from the command line sources.
package input

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ErrNoInput is returned when no prompt source was supplied.
var ErrNoInput = errors.New("no prompt source")

// Transcriber turns an audio file into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Sources lists the prompt sources in the order they are consulted.
type Sources struct {
	AudioPath string
	InputFile string
	Prompt    string
}

// Empty reports whether no source is set.
func (s Sources) Empty() bool {
	return strings.TrimSpace(s.AudioPath) == "" &&
		strings.TrimSpace(s.InputFile) == "" &&
		strings.TrimSpace(s.Prompt) == ""
}

// Collect returns the prompts for a run. Audio wins over the input file,
// which wins over the literal prompt; lower-precedence sources are ignored.
func Collect(ctx context.Context, src Sources, t Transcriber) ([]string, error) {
	switch {
	case strings.TrimSpace(src.AudioPath) != "":
		if t == nil {
			return nil, fmt.Errorf("no transcriber configured for %s", src.AudioPath)
		}
		transcript, err := t.Transcribe(ctx, src.AudioPath)
		if err != nil {
			return nil, fmt.Errorf("transcribe audio: %w", err)
		}
		transcript = strings.TrimSpace(transcript)
		if transcript == "" {
			return nil, fmt.Errorf("transcript of %s is empty", src.AudioPath)
		}
		return []string{transcript}, nil
	case strings.TrimSpace(src.InputFile) != "":
		return ReadPromptFile(src.InputFile)
	case strings.TrimSpace(src.Prompt) != "":
		return []string{src.Prompt}, nil
	default:
		return nil, ErrNoInput
	}
}

// ReadPromptFile returns one prompt per non-empty line, trimmed.
func ReadPromptFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	prompts := make([]string, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			prompts = append(prompts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return prompts, nil
}

// Image is a base64-encoded attachment.
type Image struct {
	Base64    string
	MediaType string
}

// EncodeImage reads path and base64-encodes it. The media type is sniffed
// from the content and falls back to image/jpeg.
func EncodeImage(path string) (Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	mediaType := "image/jpeg"
	if detected := http.DetectContentType(buf); strings.HasPrefix(detected, "image/") {
		mediaType = detected
	}
	return Image{
		Base64:    base64.StdEncoding.EncodeToString(buf),
		MediaType: mediaType,
	}, nil
}
