package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerTickInterval = 120 * time.Millisecond

var spinnerFrames = []rune{'|', '/', '-', '\\'}

// startSpinner draws label with a rotating frame and, after the first
// second, the elapsed time. The returned stop func clears the line and is
// safe to call more than once.
func startSpinner(enabled bool, w io.Writer, label string) func() {
	if !enabled || w == nil {
		return func() {}
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = "Waiting"
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		started := time.Now()
		frame := 0
		width := 0
		ticker := time.NewTicker(spinnerTickInterval)
		defer ticker.Stop()

		draw := func() {
			line := fmt.Sprintf("%c %s", spinnerFrames[frame%len(spinnerFrames)], label)
			if elapsed := time.Since(started); elapsed >= time.Second {
				line += fmt.Sprintf(" (%ds)", int(elapsed.Seconds()))
			}
			if len(line) < width {
				line += strings.Repeat(" ", width-len(line))
			}
			width = len(line)
			fmt.Fprintf(w, "\r%s", line)
			frame++
		}

		draw()
		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", width))
				return
			case <-ticker.C:
				draw()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

func isTerminalWriter(w io.Writer) bool {
	fdw, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(fdw.Fd()))
}
