// Package enforce maps trust decisions to gate outcomes. The resolver only
// computes decisions; turning READ_ONLY into a blocking error or SUPERVISED
// into a confirmation prompt is a collaborator policy, and it lives here.
package enforce

import (
	"fmt"

	"github.com/ppiankov/collabgate/internal/model"
)

// Behavior is the hook-facing verdict derived from a trust level.
type Behavior string

const (
	BehaviorAllow Behavior = "allow"
	BehaviorAsk   Behavior = "ask"
	BehaviorDeny  Behavior = "deny"
)

// Exit codes for gate commands. ExitDeny follows the hook convention where
// a non-zero "blocking" code stops the pending tool call.
const (
	ExitAllow = 0
	ExitDeny  = 2
)

// BlockedError is returned when a trust decision blocks an edit.
type BlockedError struct {
	Path        string
	Decision    model.TrustDecision
	ProposalKey string
}

func (e *BlockedError) Error() string {
	if e.ProposalKey != "" {
		return fmt.Sprintf("edit blocked (%s): %s [proposal=%s]", e.Decision.Level, e.Decision.Reason, e.ProposalKey)
	}
	return fmt.Sprintf("edit blocked (%s): %s", e.Decision.Level, e.Decision.Reason)
}

// BehaviorFor maps a trust level to the gate verdict.
// READ_ONLY and SUGGEST_ONLY block the edit (SUGGEST_ONLY edits travel
// through proposals instead), SUPERVISED asks for confirmation, and
// AUTONOMOUS passes.
func BehaviorFor(level model.TrustLevel) Behavior {
	switch level {
	case model.ReadOnly, model.SuggestOnly:
		return BehaviorDeny
	case model.Supervised:
		return BehaviorAsk
	default:
		return BehaviorAllow
	}
}

// ExitCodeFor maps a behavior to a process exit code. Asking is not a
// blocking outcome at the process level; the JSON verdict carries it.
func ExitCodeFor(b Behavior) int {
	if b == BehaviorDeny {
		return ExitDeny
	}
	return ExitAllow
}

// Enforce applies a decision to an attempted edit of path.
// Returns nil when the edit may proceed, or a *BlockedError when it may not.
func Enforce(d model.TrustDecision, path string) error {
	if BehaviorFor(d.Level) != BehaviorDeny {
		return nil
	}
	return &BlockedError{Path: path, Decision: d}
}
