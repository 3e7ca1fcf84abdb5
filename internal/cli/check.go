package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/collabgate/internal/enforce"
	"github.com/ppiankov/collabgate/internal/trust"
)

var checkFormat string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <file[:line[-line]]>",
	Short: "Resolve the trust level for a file or line range",
	Long: "Resolves the four-tier trust decision for a target. With a line range,\n" +
		"inline annotations and region overrides are consulted; without one,\n" +
		"resolution starts at the policy tier.\n\n" +
		"Exit code 0 when editing is allowed or needs confirmation, 2 when blocked.\n" +
		"Use in CI or editor tooling to gate automated changes.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// parseTarget splits "path:12-40" into path and range. The suffix is only
// treated as a range when it parses as one, so Windows drive letters and
// odd filenames pass through intact.
func parseTarget(arg string) (file string, start, end int) {
	idx := strings.LastIndex(arg, ":")
	if idx <= 0 {
		return arg, 0, 0
	}
	spec := arg[idx+1:]
	lo, hi, ok := parseRange(spec)
	if !ok {
		return arg, 0, 0
	}
	return arg[:idx], lo, hi
}

func parseRange(spec string) (start, end int, ok bool) {
	lo, hi, found := strings.Cut(spec, "-")
	start, err := strconv.Atoi(lo)
	if err != nil || start <= 0 {
		return 0, 0, false
	}
	if !found {
		return start, start, true
	}
	end, err = strconv.Atoi(hi)
	if err != nil || end < start {
		return 0, 0, false
	}
	return start, end, true
}

func runCheck(cmd *cobra.Command, args []string) error {
	file, start, end := parseTarget(args[0])

	cfg, hash, err := trust.LoadConfigWithHash(effectivePolicyPath())
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	d := trust.ResolveIn(cfg, rootDir, file, start, end)
	behavior := enforce.BehaviorFor(d.Level)

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"file":        file,
			"line_start":  start,
			"line_end":    end,
			"level":       d.Level,
			"source":      d.Source,
			"behavior":    behavior,
			"reason":      d.Reason,
			"owner":       d.Owner,
			"intent":      d.Intent,
			"constraints": d.Constraints,
			"policy_hash": hash,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		target := file
		if start > 0 {
			target = fmt.Sprintf("%s:%d-%d", file, start, end)
		}
		fmt.Printf("%s\n", target)
		fmt.Printf("  level:    %s (%s)\n", d.Level, d.Level.Label())
		fmt.Printf("  source:   %s\n", d.Source)
		fmt.Printf("  behavior: %s\n", behavior)
		fmt.Printf("  reason:   %s\n", d.Reason)
		if d.Owner != "" {
			fmt.Printf("  owner:    %s\n", d.Owner)
		}
		if d.Intent != "" {
			fmt.Printf("  intent:   %s\n", d.Intent)
		}
		if len(d.Constraints) > 0 {
			fmt.Printf("  constraints: %s\n", strings.Join(d.Constraints, ", "))
		}
	}

	os.Exit(enforce.ExitCodeFor(behavior))
	return nil
}
