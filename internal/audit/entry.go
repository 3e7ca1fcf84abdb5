package audit

// Entry is one line in the hash-chained JSONL decision log.
// All fields are scalars or structs (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp  string `json:"ts"`
	File       string `json:"file"`
	LineStart  int    `json:"line_start,omitempty"`
	LineEnd    int    `json:"line_end,omitempty"`
	Level      string `json:"level"`
	Source     string `json:"source"`
	Behavior   string `json:"behavior"`
	Reason     string `json:"reason,omitempty"`
	Agent      string `json:"agent,omitempty"`
	PolicyHash string `json:"policy_hash"`
	PrevHash   string `json:"prev_hash"`
}
