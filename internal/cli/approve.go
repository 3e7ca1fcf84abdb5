package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/proposal"
)

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending edit proposal",
	Long:  "Marks a pending proposal as approved. The agent may then re-attempt the\nedit; the gate reports the approval in its verdict reason.",
	Args:  cobra.ExactArgs(1),
	RunE:  runApprove,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending edit proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

func runApprove(cmd *cobra.Command, args []string) error {
	store, err := proposal.NewStore(proposal.DefaultDir(rootDir))
	if err != nil {
		return fmt.Errorf("failed to open proposal store: %w", err)
	}
	if err := store.Approve(args[0]); err != nil {
		return err
	}
	fmt.Printf("Approved %s\n", args[0])
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	store, err := proposal.NewStore(proposal.DefaultDir(rootDir))
	if err != nil {
		return fmt.Errorf("failed to open proposal store: %w", err)
	}
	if err := store.Reject(args[0]); err != nil {
		return err
	}
	fmt.Printf("Rejected %s\n", args[0])
	return nil
}
