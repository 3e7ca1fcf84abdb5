// Package hook adapts the trust resolver to the Claude Code PreToolUse
// hook protocol: a JSON payload on stdin describing the pending tool call,
// a JSON verdict on stdout, and exit code 2 to block. The payload's
// old_string is located inside the target file to recover the line range,
// so inline annotations and region overrides engage even though the editor
// never sends line numbers.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/collabgate/internal/enforce"
	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/trust"
)

// Input is the PreToolUse hook payload.
type Input struct {
	SessionID string          `json:"session_id"`
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
	Cwd       string          `json:"cwd"`
}

// ReadInput decodes a hook payload from r.
func ReadInput(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("hook: read payload: %w", err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("hook: parse payload: %w", err)
	}
	return &in, nil
}

// editTools are the tool names that modify files and therefore get gated.
// Everything else passes through untouched.
var editTools = map[string]bool{
	"Edit":         true,
	"Write":        true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// EditTarget is the file (and, for replacements, the text being replaced)
// extracted from an edit tool's input.
type EditTarget struct {
	Path      string
	OldString string
}

// EditTarget extracts the edit target from the payload. ok is false for
// tools that do not edit files or payloads without a usable path.
func (in *Input) EditTarget() (EditTarget, bool) {
	if !editTools[in.ToolName] {
		return EditTarget{}, false
	}

	var raw struct {
		FilePath     string `json:"file_path"`
		NotebookPath string `json:"notebook_path"`
		OldString    string `json:"old_string"`
		Edits        []struct {
			OldString string `json:"old_string"`
		} `json:"edits"`
	}
	if err := json.Unmarshal(in.ToolInput, &raw); err != nil {
		return EditTarget{}, false
	}

	path := raw.FilePath
	if path == "" {
		path = raw.NotebookPath
	}
	if path == "" {
		return EditTarget{}, false
	}

	old := raw.OldString
	if old == "" && len(raw.Edits) > 0 {
		old = raw.Edits[0].OldString
	}
	return EditTarget{Path: path, OldString: old}, true
}

// LocateRange finds old inside the file at path and returns its 1-indexed,
// inclusive line range. ok is false when old is empty, the file is
// unreadable, or the text is not present (new-file writes, stale edits).
// Line endings are normalized the same way the annotation parser splits
// lines, so the range agrees with annotation scopes in CR and CRLF files.
func LocateRange(path, old string) (start, end int, ok bool) {
	if old == "" {
		return 0, 0, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, false
	}
	content := normalizeNewlines(string(data))
	needle := normalizeNewlines(old)

	offset := strings.Index(content, needle)
	if offset < 0 {
		return 0, 0, false
	}
	start = 1 + strings.Count(content[:offset], "\n")
	end = start + strings.Count(needle, "\n")
	return start, end, true
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Verdict is the gate's answer for one pending tool call.
type Verdict struct {
	Gated      bool
	Behavior   enforce.Behavior
	Decision   model.TrustDecision
	Path       string
	LineStart  int
	LineEnd    int
	ProposalID string
}

// Decide resolves trust for the pending tool call. Non-edit tools are not
// gated and come back as allow. Absolute paths are relativized against the
// project root (falling back to the payload's cwd) so project-relative
// policy patterns engage; annotation reads and old_string location go
// through the root so the gate works from any working directory.
func Decide(cfg *trust.Config, in *Input, root string) Verdict {
	target, ok := in.EditTarget()
	if !ok {
		return Verdict{Behavior: enforce.BehaviorAllow}
	}

	path := target.Path
	base := root
	if base == "" || base == "." {
		base = in.Cwd
	}
	if base != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = filepath.ToSlash(rel)
		}
	}

	disk := path
	if root != "" && !filepath.IsAbs(disk) {
		disk = filepath.Join(root, filepath.FromSlash(path))
	}

	lineStart, lineEnd, located := LocateRange(disk, target.OldString)
	if !located {
		lineStart, lineEnd = 0, 0
	}

	d := trust.ResolveIn(cfg, root, path, lineStart, lineEnd)
	return Verdict{
		Gated:     true,
		Behavior:  enforce.BehaviorFor(d.Level),
		Decision:  d,
		Path:      path,
		LineStart: lineStart,
		LineEnd:   lineEnd,
	}
}

// Output is the hook response envelope.
type Output struct {
	HookSpecificOutput *SpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// SpecificOutput carries the PreToolUse permission verdict.
type SpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}

// Output renders the verdict in the hook response format.
func (v Verdict) Output() Output {
	reason := v.Decision.Reason
	if v.Behavior == enforce.BehaviorDeny {
		reason = fmt.Sprintf("%s region (%s): %s", v.Decision.Level, v.Decision.Source, v.Decision.Reason)
		if v.ProposalID != "" {
			reason += fmt.Sprintf("; filed proposal %s for review", v.ProposalID)
		}
	}
	return Output{
		HookSpecificOutput: &SpecificOutput{
			HookEventName:            "PreToolUse",
			PermissionDecision:       string(v.Behavior),
			PermissionDecisionReason: reason,
		},
	}
}
