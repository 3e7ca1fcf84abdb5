package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/audit"
	"github.com/ppiankov/collabgate/internal/authorship"
	"github.com/ppiankov/collabgate/internal/enforce"
	"github.com/ppiankov/collabgate/internal/hook"
	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/proposal"
	"github.com/ppiankov/collabgate/internal/trust"
)

var hookAgent string

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.Flags().StringVar(&hookAgent, "agent", "claude-code", "Agent identifier recorded with gate decisions")
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "PreToolUse gate for Claude Code",
	Long: "Reads a PreToolUse payload from stdin, resolves trust for the pending\n" +
		"edit, and writes the permission verdict to stdout. Blocked SUGGEST_ONLY\n" +
		"edits are filed as proposals for human review.\n\n" +
		"Wire into .claude/settings.json as a PreToolUse hook for Edit|Write|MultiEdit.\n" +
		"Exit code 2 blocks the tool call; 0 lets it proceed.",
	RunE: runHook,
}

func runHook(cmd *cobra.Command, args []string) error {
	in, err := hook.ReadInput(os.Stdin)
	if err != nil {
		// A broken payload must not silently grant access, but it also
		// is not a trust decision. Exit 1: non-blocking hook error.
		return err
	}

	cfg, hash, err := trust.LoadConfigWithHash(effectivePolicyPath())
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	v := hook.Decide(cfg, in, rootDir)

	if v.Gated && v.Behavior == enforce.BehaviorDeny && v.Decision.Level == model.SuggestOnly {
		if id, err := fileProposal(in, v); err == nil {
			v.ProposalID = id
		} else {
			fmt.Fprintf(os.Stderr, "collabgate: proposal not filed: %v\n", err)
		}
	}

	if v.Gated {
		recordDecision(v, in, hash)
	}

	out, err := json.Marshal(v.Output())
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	os.Exit(enforce.ExitCodeFor(v.Behavior))
	return nil
}

// fileProposal stores a pending proposal for a blocked SUGGEST_ONLY edit.
func fileProposal(in *hook.Input, v hook.Verdict) (string, error) {
	store, err := proposal.NewStore(proposal.DefaultDir(rootDir))
	if err != nil {
		return "", err
	}

	target, _ := in.EditTarget()
	p, err := store.Create(proposal.Proposal{
		File:      v.Path,
		LineStart: v.LineStart,
		LineEnd:   v.LineEnd,
		Summary:   fmt.Sprintf("%s blocked in %s region", in.ToolName, v.Decision.Level.Label()),
		Diff:      target.OldString,
		Agent:     hookAgent,
		Owner:     v.Decision.Owner,
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// recordDecision appends the verdict to the audit log and the authorship
// ledger. Failures are reported but never change the verdict.
func recordDecision(v hook.Verdict, in *hook.Input, policyHash string) {
	agent := hookAgent
	if in.SessionID != "" {
		agent = fmt.Sprintf("%s/%s", hookAgent, in.SessionID)
	}

	if log, err := audit.Open(audit.DefaultPath(rootDir)); err == nil {
		defer log.Close()
		if err := log.Record(audit.Entry{
			Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
			File:       v.Path,
			LineStart:  v.LineStart,
			LineEnd:    v.LineEnd,
			Level:      string(v.Decision.Level),
			Source:     string(v.Decision.Source),
			Behavior:   string(v.Behavior),
			Reason:     v.Decision.Reason,
			Agent:      agent,
			PolicyHash: policyHash,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "collabgate: audit append failed: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "collabgate: audit log unavailable: %v\n", err)
	}

	if store, err := authorship.Open(authorship.DefaultPath(rootDir)); err == nil {
		defer store.Close()
		if err := store.Append(context.Background(), authorship.Record{
			File:      v.Path,
			LineStart: v.LineStart,
			LineEnd:   v.LineEnd,
			Level:     string(v.Decision.Level),
			Source:    string(v.Decision.Source),
			Behavior:  string(v.Behavior),
			Agent:     agent,
			Reason:    v.Decision.Reason,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "collabgate: ledger append failed: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "collabgate: authorship ledger unavailable: %v\n", err)
	}
}
