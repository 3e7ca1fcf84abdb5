package annotation

import (
	"regexp"
	"strings"
)

// commentLineRE matches lines that are still comment continuation, skipped
// while searching for the definition line after an annotation.
var commentLineRE = regexp.MustCompile(`^\s*(?://|#|/\*|\*|<!--)`)

// DetectScope determines the 1-indexed, inclusive [start, end] line range
// protected by an annotation whose last marker line sits at annEnd
// (0-indexed into lines).
//
// This is a textual heuristic, not a tokenizer: brace counting is confused
// by literal braces inside strings, character literals, and comments. That
// is a known limitation; broad language coverage without per-language
// grammars is the point.
func DetectScope(lines []string, annEnd int, class FileClass) (int, int) {
	def := findDefinitionLine(lines, annEnd)
	if def < 0 {
		// No code follows; the scope degenerates to the annotation line.
		return annEnd + 1, annEnd + 1
	}

	switch class {
	case ClassIndent:
		return def + 1, indentBlockEnd(lines, def) + 1
	case ClassBrace:
		return def + 1, braceBlockEnd(lines, def) + 1
	default:
		return def + 1, def + 1
	}
}

// findDefinitionLine returns the index of the first substantive line after
// annEnd, skipping blanks and further comment lines. Returns -1 at EOF.
func findDefinitionLine(lines []string, annEnd int) int {
	for i := annEnd + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if commentLineRE.MatchString(lines[i]) {
			continue
		}
		return i
	}
	return -1
}

// indentBlockEnd extends the block while non-blank lines are indented
// strictly deeper than the definition line. The first line at or above the
// base indentation terminates the block and is excluded.
func indentBlockEnd(lines []string, def int) int {
	base := indentWidth(lines[def])
	end := def
	for i := def + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if indentWidth(lines[i]) <= base {
			break
		}
		end = i
	}
	return end
}

// braceBlockEnd counts braces from the definition line onward; the block
// ends on the first line where the depth returns to zero after at least one
// opening brace. If no brace ever opens, the scope stays on the definition
// line. An unclosed block runs to EOF.
func braceBlockEnd(lines []string, def int) int {
	depth := 0
	opened := false
	for i := def; i < len(lines); i++ {
		for _, c := range lines[i] {
			switch c {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
	}
	if !opened {
		return def
	}
	return len(lines) - 1
}

// indentWidth counts leading whitespace runes, with tabs weighted as a
// single unit. Mixed tab/space files resolve consistently as long as the
// file itself is consistent.
func indentWidth(line string) int {
	width := 0
	for _, c := range line {
		if c != ' ' && c != '\t' {
			break
		}
		width++
	}
	return width
}
