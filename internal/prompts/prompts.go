// Package prompts serves the instruction templates embedded in the binary.
package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates
var promptFiles embed.FS

// Load returns the raw template by name (without the .md extension).
func Load(name string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("templates/%s.md", name))
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return string(content), nil
}

// LoadWithContext loads a template and substitutes {{.Var}} placeholders.
func LoadWithContext(name string, context map[string]string) (string, error) {
	content, err := Load(name)
	if err != nil {
		return "", err
	}
	for key, value := range context {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		content = strings.ReplaceAll(content, placeholder, value)
	}
	return content, nil
}

// MustLoadWithContext is LoadWithContext for templates compiled into the
// binary; a missing template is a programming error.
func MustLoadWithContext(name string, context map[string]string) string {
	content, err := LoadWithContext(name, context)
	if err != nil {
		panic(err)
	}
	return content
}
