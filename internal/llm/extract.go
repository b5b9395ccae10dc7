package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON recovers a JSON object from model output. Three strategies, in
// order: the content is already valid JSON; the content holds a fenced code
// block; the content contains a brace-balanced object somewhere in prose.
func ExtractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty model output")
	}

	if json.Valid([]byte(content)) {
		return content, nil
	}

	if fenced, ok := extractFenced(content); ok && json.Valid([]byte(fenced)) {
		return fenced, nil
	}

	if obj, ok := extractBalancedObject(content); ok && json.Valid([]byte(obj)) {
		return obj, nil
	}

	return "", fmt.Errorf("no JSON object found in model output")
}

// extractFenced pulls the body of the first ``` code fence, tolerating a
// language tag on the opening line.
func extractFenced(content string) (string, bool) {
	start := strings.Index(content, "```")
	if start < 0 {
		return "", false
	}

	rest := content[start+3:]
	if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
		// Drop a language tag like "json".
		firstLine := strings.TrimSpace(rest[:newline])
		if len(firstLine) <= 8 && !strings.ContainsAny(firstLine, "{}") {
			rest = rest[newline+1:]
		}
	}

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}

// extractBalancedObject scans for the first '{' and returns the substring up
// to its matching '}', respecting string literals and escapes.
func extractBalancedObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		ch := content[i]

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1], true
				}
			}
		}
	}

	return "", false
}
