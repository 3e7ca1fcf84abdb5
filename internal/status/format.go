package status

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/collabgate/internal/model"
)

// levelOrder lists levels strictest first for summary lines.
var levelOrder = []model.TrustLevel{
	model.ReadOnly,
	model.SuggestOnly,
	model.Supervised,
	model.Autonomous,
}

// FormatText renders the report as human-readable text.
func FormatText(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trust status: %s\n", r.Root)
	if r.PolicyHash != "" {
		fmt.Fprintf(&b, "Policy: %s\n", r.PolicyHash)
	}
	b.WriteString("\n")

	for _, f := range r.Files {
		fmt.Fprintf(&b, "  %-12s %-10s %s\n", f.Level, f.Source, f.Path)
		for _, a := range f.Annotations {
			fmt.Fprintf(&b, "    @collab L%d-%d", a.LineStart, a.LineEnd)
			if a.Trust != "" {
				fmt.Fprintf(&b, " trust=%s", a.Trust)
			}
			if a.Owner != "" {
				fmt.Fprintf(&b, " owner=%s", a.Owner)
			}
			if a.Intent != "" {
				fmt.Fprintf(&b, " intent=%q", a.Intent)
			}
			if len(a.Constraints) > 0 {
				fmt.Fprintf(&b, " constraints=%v", a.Constraints)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	total := 0
	for _, lvl := range levelOrder {
		if n := r.Counts[lvl]; n > 0 {
			fmt.Fprintf(&b, "  %-12s %d\n", lvl, n)
			total += n
		}
	}
	fmt.Fprintf(&b, "\n%d file", total)
	if total != 1 {
		b.WriteString("s")
	}
	b.WriteString(" scanned.\n")

	return b.String()
}

// FormatJSON renders the report as JSON.
func FormatJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}
