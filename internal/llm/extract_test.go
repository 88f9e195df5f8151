package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFencedJSON(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "plain fenced block",
			text:  "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
			found: true,
		},
		{
			name:  "prose around the block",
			text:  "Sure! Here you go:\n```json\n{\"intent_type\": \"general_qa\"}\n```\nLet me know.",
			want:  `{"intent_type": "general_qa"}`,
			found: true,
		},
		{
			name:  "no fence",
			text:  `{"a": 1}`,
			found: false,
		},
		{
			name:  "unterminated fence",
			text:  "```json\n{\"a\": 1}",
			found: false,
		},
		{
			name:  "empty reply",
			text:  "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFencedJSON(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractJSONValue(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{
			name:  "bare array",
			text:  `[{"symbol": "AAPL"}]`,
			want:  `[{"symbol": "AAPL"}]`,
			found: true,
		},
		{
			name:  "array with prose padding",
			text:  "Here is your data: [1, 2, 3] hope that helps",
			want:  "[1, 2, 3]",
			found: true,
		},
		{
			name:  "nested braces",
			text:  `prefix {"a": {"b": [1, 2]}} suffix`,
			want:  `{"a": {"b": [1, 2]}}`,
			found: true,
		},
		{
			name:  "brackets inside strings ignored",
			text:  `[{"note": "a ] tricky [ string"}]`,
			want:  `[{"note": "a ] tricky [ string"}]`,
			found: true,
		},
		{
			name:  "unbalanced",
			text:  `[{"symbol": "AAPL"`,
			found: false,
		},
		{
			name:  "no json at all",
			text:  "I cannot help with that.",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONValue(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
