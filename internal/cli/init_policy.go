package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/trust"
)

func init() {
	rootCmd.AddCommand(initPolicyCmd)
}

var initPolicyCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a commented starter policy.yaml",
	Long: "Creates <root>/.collab/policy.yaml with a commented default policy.\n" +
		"Edit this file to set per-path trust levels and region overrides.",
	RunE: runInitPolicy,
}

func runInitPolicy(cmd *cobra.Command, args []string) error {
	path := trust.DefaultConfigPath(rootDir)
	if policyPath != "" {
		path = policyPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("policy already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(trust.DefaultConfigYAML()), 0o644); err != nil {
		return fmt.Errorf("failed to write policy: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}
