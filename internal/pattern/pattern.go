// Package pattern implements glob-style path matching for policy rules.
//
// Glob grammar: "**" matches across path separators, "*" matches within a
// single path segment, "?" matches exactly one character. The pattern must
// describe the whole path; there are no substring matches.
package pattern

import (
	"regexp"
	"strings"
)

// Matches reports whether path matches the glob pattern. The path is tried
// as-is and with backslashes normalized to forward slashes, so callers need
// not pre-normalize separators. A pattern that fails to compile never
// matches and never panics.
func Matches(path, pattern string) bool {
	re, err := compile(pattern)
	if err != nil {
		return false
	}
	if re.MatchString(path) {
		return true
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	return normalized != path && re.MatchString(normalized)
}

// escaped is the set of regexp metacharacters neutralized during
// translation. Brackets are deliberately left alone: the translation is
// best-effort, and an unbalanced bracket surfaces as a compile error (which
// Matches treats as non-matching) rather than a validation pass.
const escaped = `.+()^$|{}\`

// compile translates a glob pattern to an anchored regular expression.
func compile(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case c == '?':
			b.WriteString(".")
		case strings.IndexByte(escaped, c) >= 0:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
