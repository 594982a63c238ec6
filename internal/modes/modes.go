// Package modes maps named prompt purposes to built-in system prompts.
package modes

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects a built-in system prompt.
type Mode string

const (
	Simple    Mode = "simple"
	Chat      Mode = "chat"
	Reasoning Mode = "reasoning"
	QA        Mode = "qa"
	Summary   Mode = "summary"
	Verify    Mode = "verify"
)

// Default is used when no mode is given.
const Default = Simple

// ErrUnknownMode is returned by Parse for names outside the built-in set.
var ErrUnknownMode = errors.New("unknown mode")

var systemPrompts = map[Mode]string{
	Simple:    "",
	Chat:      "あなたは親切なチャット相手です。",
	Reasoning: "あなたは厳密に思考する論理的アシスタントです。思考を段階的に説明してください。",
	QA:        "あなたは質問に端的に答える優秀な知識アシスタントです。",
	Summary:   "次のテキストを簡潔に要約してください。",
	Verify:    "指示に従って、比較・検証・真偽を明確に答えてください。",
}

// All returns every mode in display order.
func All() []Mode {
	return []Mode{Simple, Chat, Reasoning, QA, Summary, Verify}
}

// Parse matches name case-insensitively. An empty name yields Default.
func Parse(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default, nil
	}
	m := Mode(name)
	if _, ok := systemPrompts[m]; !ok {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownMode, name, strings.Join(names(), ", "))
	}
	return m, nil
}

// Prompt returns the built-in system prompt for m.
func (m Mode) Prompt() string {
	return systemPrompts[m]
}

// SystemPrompt resolves the system prompt for a call: a non-empty override
// always wins over the mode default.
func SystemPrompt(mode string, override string) (string, error) {
	m, err := Parse(mode)
	if err != nil {
		return "", err
	}
	if override != "" {
		return override, nil
	}
	return m.Prompt(), nil
}

func names() []string {
	out := make([]string, 0, len(systemPrompts))
	for _, m := range All() {
		out = append(out, string(m))
	}
	return out
}
