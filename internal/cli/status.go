package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/authorship"
	"github.com/ppiankov/collabgate/internal/status"
	"github.com/ppiankov/collabgate/internal/trust"
)

var (
	statusFormat  string
	statusHistory int
	statusFile    string
)

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "Output format (text|json)")
	statusCmd.Flags().IntVar(&statusHistory, "history", 0, "Show the last N gate decisions instead of the file scan")
	statusCmd.Flags().StringVar(&statusFile, "file", "", "With --history, restrict decisions to one file")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Project-wide trust report",
	Long: "Walks the project tree, resolves every recognized source file, and prints\n" +
		"the trust posture strictest-first with per-file annotations.\n\n" +
		"With --history, prints recent gate decisions from the authorship ledger\n" +
		"instead of scanning files.",
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusHistory > 0 {
		return runStatusHistory()
	}

	cfg, hash, err := trust.LoadConfigWithHash(effectivePolicyPath())
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	rep, err := status.Build(cfg, rootDir, hash)
	if err != nil {
		return fmt.Errorf("scan project: %w", err)
	}

	if statusFormat == "json" {
		out, err := status.FormatJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Print(status.FormatText(rep))
	return nil
}

func runStatusHistory() error {
	store, err := authorship.Open(authorship.DefaultPath(rootDir))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var records []authorship.Record
	if statusFile != "" {
		records, err = store.ByFile(ctx, statusFile, statusHistory)
	} else {
		records, err = store.Recent(ctx, statusHistory)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No recorded decisions.")
		return nil
	}

	fmt.Printf("%-20s %-12s %-10s %-6s %s\n", "TIME", "LEVEL", "SOURCE", "GATE", "FILE")
	for _, r := range records {
		target := r.File
		if r.LineStart > 0 {
			target = fmt.Sprintf("%s:%d-%d", r.File, r.LineStart, r.LineEnd)
		}
		fmt.Printf("%-20s %-12s %-10s %-6s %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Level, r.Source, r.Behavior, target)
	}
	return nil
}
