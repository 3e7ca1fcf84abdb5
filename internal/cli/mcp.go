package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatemcp "github.com/ppiankov/collabgate/internal/mcp"
)

var (
	mcpAudit string
	mcpAgent string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpAudit, "audit-log", "", "Path to the decision log (optional)")
	mcpCmd.Flags().StringVar(&mcpAgent, "agent", "mcp", "Agent identifier recorded with decisions")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs collabgate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes trust tools: check, annotations, match, pending, approve.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := gatemcp.New(gatemcp.Config{
		PolicyPath:   policyPath,
		Root:         rootDir,
		AuditLogPath: mcpAudit,
		Agent:        mcpAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	return srv.Run(ctx)
}
