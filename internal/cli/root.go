package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/trust"
)

var (
	rootDir    string
	policyPath string
)

var rootCmd = &cobra.Command{
	Use:   "collabgate",
	Short: "Trust boundaries for human-AI pair programming",
	Long: "Resolves who may edit what: inline @collab annotations, region overrides,\n" +
		"and path-pattern policies layer into a single trust decision per code region.\n" +
		"Gates automated editors through hooks and MCP without touching the code itself.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Path to policy YAML (default <root>/.collab/policy.yaml)")
}

// effectivePolicyPath returns the --policy flag or the project default.
func effectivePolicyPath() string {
	if policyPath != "" {
		return policyPath
	}
	return trust.DefaultConfigPath(rootDir)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
