package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify walks the JSONL decision log at path and checks every link of the
// chain: the first entry must point at the genesis hash, each later entry
// at the SHA-256 of the line before it. The first broken link stops the
// walk and is reported with its line number.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("cannot open log: %v", err)}
	}
	defer f.Close()

	var prev []byte
	n := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
		// Copy: the scanner reuses its buffer.
		line := append([]byte(nil), scanner.Bytes()...)

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return VerifyResult{
				Lines:     n,
				Error:     fmt.Sprintf("entry is not valid JSON: %v", err),
				ErrorLine: n,
			}
		}

		want := GenesisHash
		if prev != nil {
			want = HashLine(prev)
		}
		if entry.PrevHash != want {
			return VerifyResult{
				Lines:     n,
				Error:     fmt.Sprintf("prev_hash %s does not match the preceding entry (want %s)", entry.PrevHash, want),
				ErrorLine: n,
			}
		}

		prev = line
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Lines: n, Error: fmt.Sprintf("cannot read log: %v", err)}
	}

	return VerifyResult{Valid: true, Lines: n}
}
