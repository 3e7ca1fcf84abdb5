package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/enforce"
	"github.com/ppiankov/collabgate/internal/trust"
	"github.com/ppiankov/collabgate/internal/watch"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and print trust changes live",
	Long: "Watches the policy file and source tree. Policy edits are picked up\n" +
		"immediately; changed source files are re-resolved and their current\n" +
		"trust decision printed. Runs until interrupted.",
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	policyFile := effectivePolicyPath()

	cfg, hash, err := trust.LoadConfigWithHash(policyFile)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}
	fmt.Printf("Watching %s (policy %s)\n", rootDir, hash)

	absPolicy, _ := filepath.Abs(policyFile)

	w, err := watch.New(func(paths []string) {
		reloaded := false
		for _, p := range paths {
			if abs, _ := filepath.Abs(p); abs == absPolicy {
				next, nextHash, err := trust.LoadConfigWithHash(policyFile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "policy reload failed: %v\n", err)
					continue
				}
				cfg, hash = next, nextHash
				reloaded = true
			}
		}
		if reloaded {
			fmt.Printf("policy reloaded (%s)\n", hash)
		}

		for _, p := range paths {
			if abs, _ := filepath.Abs(p); abs == absPolicy {
				continue
			}
			rel, err := filepath.Rel(rootDir, p)
			if err != nil {
				rel = p
			}
			rel = filepath.ToSlash(rel)

			d := trust.ResolveIn(cfg, rootDir, rel, 0, 0)
			fmt.Printf("%-12s %-10s %-6s %s\n", d.Level, d.Source, enforce.BehaviorFor(d.Level), rel)
		}
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.AddFile(policyFile); err != nil {
		return fmt.Errorf("watch policy: %w", err)
	}
	if err := w.AddTree(rootDir); err != nil {
		return fmt.Errorf("watch tree: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nStopping watch...")
		cancel()
	}()

	return w.Run(ctx)
}
