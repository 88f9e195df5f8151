package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKnownTemplates(t *testing.T) {
	for _, name := range []string{
		"intent_classifier",
		"synthesize_subject",
		"synthesize_generic",
		"domain_gate",
		"general_answer",
	} {
		t.Run(name, func(t *testing.T) {
			text, err := Load(name)
			require.NoError(t, err)
			assert.NotEmpty(t, strings.TrimSpace(text))
		})
	}
}

func TestLoadUnknownTemplate(t *testing.T) {
	_, err := Load("does_not_exist")
	assert.Error(t, err)
}

func TestLoadWithContextSubstitutes(t *testing.T) {
	text, err := LoadWithContext("intent_classifier", map[string]string{
		"Utterance": "show me a chart for AAPL",
	})
	require.NoError(t, err)
	assert.Contains(t, text, "show me a chart for AAPL")
	assert.NotContains(t, text, "{{.Utterance}}")
}

func TestMustLoadWithContextPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadWithContext("does_not_exist", nil)
	})
}
