package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/annotation"
)

var annotationsFormat string

func init() {
	rootCmd.AddCommand(annotationsCmd)
	annotationsCmd.Flags().StringVarP(&annotationsFormat, "format", "f", "text", "Output format (text|json)")
}

var annotationsCmd = &cobra.Command{
	Use:   "annotations <file>",
	Short: "List @collab annotations in a source file",
	Long: "Parses the file for @collab markers and prints each annotation with its\n" +
		"resolved line scope. Files without markers produce an empty list.",
	Args: cobra.ExactArgs(1),
	RunE: runAnnotations,
}

func runAnnotations(cmd *cobra.Command, args []string) error {
	file := args[0]
	disk := file
	if !filepath.IsAbs(disk) {
		disk = filepath.Join(rootDir, disk)
	}

	anns := annotation.ParseFile(disk)

	if annotationsFormat == "json" {
		out, err := json.MarshalIndent(map[string]any{
			"file":        file,
			"annotations": anns,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(anns) == 0 {
		fmt.Printf("No @collab annotations in %s\n", file)
		return nil
	}

	fmt.Printf("%s\n", file)
	for _, a := range anns {
		fmt.Printf("  L%d-%d", a.LineStart, a.LineEnd)
		if a.Trust != "" {
			fmt.Printf("  trust=%s", a.Trust)
		}
		if a.Owner != "" {
			fmt.Printf("  owner=%s", a.Owner)
		}
		if a.Intent != "" {
			fmt.Printf("  intent=%q", a.Intent)
		}
		if len(a.Constraints) > 0 {
			fmt.Printf("  constraints=[%s]", strings.Join(a.Constraints, ", "))
		}
		fmt.Println()
	}
	return nil
}
