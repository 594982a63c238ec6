package modes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPromptUsesModeDefault(t *testing.T) {
	got, err := SystemPrompt("qa", "")
	require.NoError(t, err)
	assert.Equal(t, QA.Prompt(), got)
	assert.Equal(t, "あなたは質問に端的に答える優秀な知識アシスタントです。", got)
}

func TestSystemPromptOverrideAlwaysWins(t *testing.T) {
	for _, m := range All() {
		got, err := SystemPrompt(string(m), "custom persona")
		require.NoError(t, err)
		assert.Equal(t, "custom persona", got, "mode %s", m)
	}
}

func TestSimpleIsDefaultAndEmpty(t *testing.T) {
	m, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Simple, m)

	got, err := SystemPrompt("", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseIsCaseInsensitive(t *testing.T) {
	m, err := Parse(" Reasoning ")
	require.NoError(t, err)
	assert.Equal(t, Reasoning, m)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("poetry")
	require.ErrorIs(t, err, ErrUnknownMode)
	assert.Contains(t, err.Error(), `"poetry"`)
	assert.Contains(t, err.Error(), "verify")

	_, err = SystemPrompt("poetry", "override does not rescue a bad mode")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestEveryModeHasPrompt(t *testing.T) {
	for _, m := range All() {
		_, ok := systemPrompts[m]
		assert.True(t, ok, "mode %s missing prompt", m)
	}
	assert.Len(t, systemPrompts, len(All()))
}
