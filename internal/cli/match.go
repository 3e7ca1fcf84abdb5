package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/pattern"
)

func init() {
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match <path> <pattern>",
	Short: "Test a path against a policy glob pattern",
	Long: "Dry-run for policy authoring: reports whether the pattern matches the path.\n" +
		"\"**\" crosses directory separators, \"*\" stays within one segment, \"?\"\n" +
		"matches a single character.\n\n" +
		"Exit code 0 on match, 1 otherwise.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if pattern.Matches(args[0], args[1]) {
			fmt.Printf("%s matches %s\n", args[0], args[1])
			return
		}
		fmt.Printf("%s does not match %s\n", args[0], args[1])
		os.Exit(1)
	},
}
