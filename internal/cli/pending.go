package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/proposal"
)

func init() {
	rootCmd.AddCommand(pendingCmd)
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List edit proposals awaiting review",
	Long:  "Shows pending proposals filed for blocked SUGGEST_ONLY edits, oldest first.",
	RunE:  runPending,
}

func runPending(cmd *cobra.Command, args []string) error {
	store, err := proposal.NewStore(proposal.DefaultDir(rootDir))
	if err != nil {
		return fmt.Errorf("failed to open proposal store: %w", err)
	}

	list, err := store.List(proposal.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to list proposals: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No pending proposals.")
		return nil
	}

	fmt.Printf("%-12s %-30s %-12s %-20s %s\n", "ID", "FILE", "AGENT", "CREATED", "SUMMARY")
	for _, p := range list {
		target := p.File
		if p.LineStart > 0 {
			target = fmt.Sprintf("%s:%d-%d", p.File, p.LineStart, p.LineEnd)
		}
		fmt.Printf("%-12s %-30s %-12s %-20s %s\n",
			p.ID,
			truncate(target, 30),
			truncate(p.Agent, 12),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.Summary,
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
