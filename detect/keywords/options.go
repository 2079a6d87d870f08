package keywords

import (
	"fmt"
	"strings"
)

// Option is one `keyword[:args]` element of a rule body.
type Option struct {
	Keyword string
	Args    string
}

// SplitOptions splits a rule body such as `content:"a;b"; nocase; sid:1;` into options.
// Semicolons inside double quotes or escaped with a backslash do not end an option.
func SplitOptions(body string) (opts []Option, err error) {
	s := strings.TrimSpace(body)
	for s != "" {
		var raw string
		raw, s, err = nextOption(s)
		if err != nil {
			return
		}

		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		k, v := parseOptionKeyValue(raw)
		if k == "" {
			err = fmt.Errorf("empty keyword in option %q", raw)
			return
		}

		opts = append(opts, Option{Keyword: k, Args: v})
		s = strings.TrimSpace(s)
	}

	return
}

// Get the next option up to an unquoted, unescaped semicolon.
func nextOption(s string) (opt string, rest string, err error) {
	var sb strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			// Keep the escape for keywords that care about it, except for an escaped separator.
			if s[i+1] != ';' {
				sb.WriteByte(c)
			}
			i++
			sb.WriteByte(s[i])
		case c == '"':
			inQuotes = !inQuotes
			sb.WriteByte(c)
		case c == ';' && !inQuotes:
			opt = sb.String()
			rest = s[i+1:]
			return
		default:
			sb.WriteByte(c)
		}
	}

	if inQuotes {
		err = fmt.Errorf("unterminated quoted string in %q", s)
		return
	}

	// The last option may omit the trailing semicolon.
	opt = sb.String()
	return
}

// Split "keyword:args" into its parts. Keyword is lower-cased.
func parseOptionKeyValue(s string) (key string, val string) {
	pos := strings.Index(s, ":")
	if pos == -1 {
		key = strings.ToLower(strings.TrimSpace(s))
		return
	}

	key = strings.ToLower(strings.TrimSpace(s[:pos]))
	val = strings.TrimSpace(s[pos+1:])
	return
}

// Strip one level of surrounding double quotes.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}
