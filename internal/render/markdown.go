// Package render formats provider responses for the terminal.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWidth = 100

// Style names accepted by Options.Style.
const (
	StyleAuto  = "auto"
	StyleNoTTY = "notty"
)

// Options controls Markdown output.
type Options struct {
	Enabled bool
	Width   int
	// Style is a glamour standard style name. Empty means auto detection.
	Style string
}

type rendererKey struct {
	width int
	style string
}

var rendererCache sync.Map

// Markdown renders text as terminal markdown when enabled.
// It falls back to plain trimmed text if rendering fails.
func Markdown(text string, opts Options) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return ""
	}
	if !opts.Enabled {
		return clean
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	style := strings.ToLower(strings.TrimSpace(opts.Style))
	if style == "" {
		style = StyleAuto
	}

	renderer, err := getRenderer(rendererKey{width: opts.Width, style: style})
	if err != nil {
		return clean
	}
	out, err := renderer.Render(clean)
	if err != nil {
		return clean
	}
	return strings.TrimRight(out, "\n")
}

func getRenderer(key rendererKey) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(key); ok {
		if r, ok := cached.(*glamour.TermRenderer); ok {
			return r, nil
		}
	}

	styleOpt := glamour.WithAutoStyle()
	if key.style != StyleAuto {
		styleOpt = glamour.WithStandardStyle(key.style)
	}
	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(key.width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	rendererCache.Store(key, renderer)
	return renderer, nil
}
