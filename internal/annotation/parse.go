// Package annotation scans source text for @collab markers and resolves the
// code region each marker protects.
//
// Three marker forms are recognized inside comments:
//
//	// @collab trust="READ_ONLY" owner="security-team"     single-line
//	// @collab trust="SUGGEST_ONLY"                        multi-line run,
//	// @collab owner="auth-team"                           attributes merge
//	// @collab:begin trust="SUPERVISED" ... @collab:end    explicit block
//
// Attributes are repeated key=value tokens; values may be double-quoted,
// single-quoted, bracketed comma-separated lists (constraints), or bare
// tokens. Unrecognized keys are ignored for forward compatibility.
package annotation

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/collabgate/internal/model"
)

// markerRE matches one marker line. The leading alternation covers the
// comment-opener styles of brace-block languages (//, /*, *), hash/indent
// languages (#), SQL/Haskell (--), and markup (<!--), with optional
// block-comment closers at the end of the line.
var markerRE = regexp.MustCompile(`^\s*(?:/{2,}|#+|/\*+|\*+|<!--|--)\s*@collab(?::(begin|end))?(?:\s+(.*?))?\s*(?:\*+/|-->)?\s*$`)

// attrRE tokenizes key=value pairs within a marker line.
var attrRE = regexp.MustCompile(`(\w+)\s*=\s*("[^"]*"|'[^']*'|\[[^\]]*\]|\S+)`)

// Parse scans file content for @collab markers and returns the parsed
// annotations in scan order, each with its resolved scope. Line endings are
// normalized first so scopes are identical across CRLF/CR/LF sources.
func Parse(content string, class FileClass) []model.ParsedAnnotation {
	lines := splitLines(content)

	var anns []model.ParsedAnnotation
	i := 0
	for i < len(lines) {
		kind, raw, ok := matchMarker(lines[i])
		if !ok {
			i++
			continue
		}

		switch kind {
		case "end":
			// Stray end with no open block: ignored, not an error.
			i++

		case "begin":
			endIdx := -1
			for j := i + 1; j < len(lines); j++ {
				if k, _, ok := matchMarker(lines[j]); ok && k == "end" {
					endIdx = j
					break
				}
			}
			// Scope is strictly between the begin and end lines. An
			// unclosed block extends to end-of-file.
			start := i + 2
			end := len(lines)
			if endIdx >= 0 {
				end = endIdx
			}
			if start <= end {
				anns = append(anns, buildAnnotation(parseAttrs(raw), start, end))
			}
			// Keep scanning inside the block so inner markers still parse.
			i++

		default:
			// Plain marker: absorb an immediately following run of plain
			// markers, merging attributes line by line (later keys win).
			merged := parseAttrs(raw)
			last := i
			for last+1 < len(lines) {
				k, nextRaw, ok := matchMarker(lines[last+1])
				if !ok || k != "" {
					break
				}
				merged.merge(parseAttrs(nextRaw))
				last++
			}
			start, end := DetectScope(lines, last, class)
			anns = append(anns, buildAnnotation(merged, start, end))
			i = last + 1
		}
	}
	return anns
}

// ParseFile reads and parses a file, deriving the scope heuristic from its
// extension. Missing, unreadable, or binary files yield an empty list; the
// caller falls through to lower resolution tiers instead of failing.
func ParseFile(path string) []model.ParsedAnnotation {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil
	}
	return Parse(string(data), ClassForFile(path))
}

// splitLines normalizes CRLF and CR to LF, then splits.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// matchMarker returns the marker kind ("begin", "end", or "" for a plain
// marker) and its raw attribute text.
func matchMarker(line string) (kind, raw string, ok bool) {
	m := markerRE.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// attrSet holds attribute values parsed from marker lines. Zero values mean
// "not set"; merge overwrites only set fields so later lines win per key.
type attrSet struct {
	trust       model.TrustLevel
	owner       string
	intent      string
	constraints []string
}

func (a *attrSet) merge(other attrSet) {
	if other.trust != "" {
		a.trust = other.trust
	}
	if other.owner != "" {
		a.owner = other.owner
	}
	if other.intent != "" {
		a.intent = other.intent
	}
	if other.constraints != nil {
		a.constraints = other.constraints
	}
}

// parseAttrs extracts recognized keys from raw attribute text. Invalid
// trust values and unrecognized keys are silently dropped.
func parseAttrs(raw string) attrSet {
	var a attrSet
	for _, m := range attrRE.FindAllStringSubmatch(raw, -1) {
		key, value := m[1], m[2]
		switch key {
		case "trust":
			if level, ok := model.ParseTrustLevel(unquote(value)); ok {
				a.trust = level
			}
		case "owner":
			a.owner = unquote(value)
		case "intent":
			a.intent = unquote(value)
		case "constraints":
			a.constraints = parseList(value)
		}
	}
	return a
}

// parseList splits a bracketed comma-separated list into trimmed,
// quote-stripped strings. Non-bracketed values become a single-item list.
func parseList(value string) []string {
	inner := value
	if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
		inner = inner[1 : len(inner)-1]
	}
	var items []string
	for _, part := range strings.Split(inner, ",") {
		item := unquote(strings.TrimSpace(part))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func buildAnnotation(a attrSet, start, end int) model.ParsedAnnotation {
	return model.ParsedAnnotation{
		Trust:       a.trust,
		Owner:       a.owner,
		Intent:      a.intent,
		Constraints: a.constraints,
		LineStart:   start,
		LineEnd:     end,
	}
}
