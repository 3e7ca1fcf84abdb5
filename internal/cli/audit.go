package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/audit"
)

var tailLines int

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Decision log operations",
	Long:  "Commands for verifying and inspecting the hash-chained decision log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify hash chain integrity of the decision log",
	Long: "Walks the JSONL decision log and validates that every entry's prev_hash\n" +
		"matches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail [path]",
	Short: "Show recent gate decisions from the log",
	Long:  "Prints the last N decision log entries as one row each: time, level,\nsource tier, gate behavior, and target.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditTail,
}

func auditPathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return audit.DefaultPath(rootDir)
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(auditPathArg(args))
	if result.Valid {
		fmt.Printf("OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(os.Stderr, "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	os.Exit(1)
	return nil
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	f, err := os.Open(auditPathArg(args))
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer f.Close()

	// Keep only the newest N lines while scanning.
	recent := make([]string, 0, tailLines+1)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		recent = append(recent, scanner.Text())
		if len(recent) > tailLines {
			recent = recent[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read decision log: %w", err)
	}

	for _, line := range recent {
		var e audit.Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			fmt.Println(line)
			continue
		}
		target := e.File
		if e.LineStart > 0 {
			target = fmt.Sprintf("%s:%d-%d", e.File, e.LineStart, e.LineEnd)
		}
		fmt.Printf("%-30s %-12s %-10s %-6s %s\n", e.Timestamp, e.Level, e.Source, e.Behavior, target)
	}
	return nil
}
