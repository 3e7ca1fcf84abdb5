package annotation

import (
	"path/filepath"
	"strings"
)

// FileClass selects the scope-detection heuristic for a file.
type FileClass string

const (
	ClassBrace   FileClass = "brace"
	ClassIndent  FileClass = "indent"
	ClassUnknown FileClass = "unknown"
)

// classByExtension is the fixed lookup table mapping extensions to scope
// heuristics. Anything absent falls back to ClassUnknown.
var classByExtension = map[string]FileClass{
	// Curly-brace block delimiters
	".c":     ClassBrace,
	".h":     ClassBrace,
	".cc":    ClassBrace,
	".cpp":   ClassBrace,
	".hpp":   ClassBrace,
	".cs":    ClassBrace,
	".go":    ClassBrace,
	".java":  ClassBrace,
	".js":    ClassBrace,
	".jsx":   ClassBrace,
	".ts":    ClassBrace,
	".tsx":   ClassBrace,
	".mjs":   ClassBrace,
	".cjs":   ClassBrace,
	".rs":    ClassBrace,
	".kt":    ClassBrace,
	".kts":   ClassBrace,
	".swift": ClassBrace,
	".scala": ClassBrace,
	".php":   ClassBrace,
	".dart":  ClassBrace,

	// Indentation-significant
	".py":   ClassIndent,
	".pyi":  ClassIndent,
	".yaml": ClassIndent,
	".yml":  ClassIndent,
}

// ClassForFile derives the scope heuristic from the file's extension.
func ClassForFile(path string) FileClass {
	ext := strings.ToLower(filepath.Ext(path))
	if class, ok := classByExtension[ext]; ok {
		return class
	}
	return ClassUnknown
}
