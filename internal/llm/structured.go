package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a parsed value after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON decodes the first JSON object or array found in raw model
// output into T. Markdown fences, prose around the payload, comments and
// trailing commas are tolerated. A non-nil validator runs on the result.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	payload := balancedBlock(unfence(raw))
	if payload == "" {
		return zero, fmt.Errorf("%w: no JSON value found in response", ErrInvalidOutput)
	}
	payload = rewriteOutsideStrings(payload)

	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// unfence drops markdown fence lines, keeping everything between them.
func unfence(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// balancedBlock returns the first complete {...} or [...] span in s, honoring
// string literals so brackets inside them do not count.
func balancedBlock(s string) string {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return ""
	}

	var stack []byte
	var sc stringScanner
	for i := start; i < len(s); i++ {
		c := s[i]
		if sc.consume(c) {
			continue
		}
		switch c {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return ""
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// rewriteOutsideStrings removes // and /* */ comments and trailing commas,
// and turns ".5" style numbers into "0.5". String contents are untouched.
func rewriteOutsideStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var sc stringScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.consume(c) {
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				i = len(s)
			} else {
				i += end + 3
			}
			continue
		case c == ',' && closesNext(s, i+1):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(s, i-1):
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// stringScanner tracks whether the current byte is inside a JSON string.
type stringScanner struct {
	inString bool
	escaped  bool
}

// consume reports whether c belongs to a string literal, quotes included.
func (sc *stringScanner) consume(c byte) bool {
	switch {
	case sc.escaped:
		sc.escaped = false
		return true
	case sc.inString && c == '\\':
		sc.escaped = true
		return true
	case c == '"':
		sc.inString = !sc.inString
		return true
	default:
		return sc.inString
	}
}

// closesNext reports whether the next non-space byte from i closes a container.
func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// startsNumber reports whether the byte before a '.' can precede a number.
func startsNumber(s string, i int) bool {
	for ; i >= 0; i-- {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case ':', ',', '[', '{', '-':
			return true
		default:
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
