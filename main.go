// Command fetchllm sends prompts, images and transcribed audio to ollama,
// openai, claude, gemini or huggingface and prints normalized responses.
package main

import (
	"fmt"
	"os"

	"github.com/sasanktumpati/fetchllm/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
