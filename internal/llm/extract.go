package llm

import (
	"regexp"
	"strings"
)

var fencedJSONRe = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n\\s*```")

// ExtractFencedJSON pulls the body of the first ```json fenced block out of
// a model reply. Returns false when no fenced block is present.
func ExtractFencedJSON(text string) (string, bool) {
	m := fencedJSONRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractJSONValue finds the first balanced bracket- or brace-delimited
// value in text. Models pad structured replies with prose on either side;
// this cuts the value out without trusting the padding.
func ExtractJSONValue(text string) (string, bool) {
	start := -1
	for i, c := range text {
		if c == '[' || c == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
