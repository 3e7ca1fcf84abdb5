package model

import "fmt"

// TrustLevel classifies how much autonomy an automated editor has over a
// region of code.
type TrustLevel string

const (
	Autonomous  TrustLevel = "AUTONOMOUS"
	Supervised  TrustLevel = "SUPERVISED"
	SuggestOnly TrustLevel = "SUGGEST_ONLY"
	ReadOnly    TrustLevel = "READ_ONLY"
)

// StrictnessRank maps trust levels to a comparable integer for sorting and
// reporting. Higher rank = stricter. Resolution never consults this order.
var StrictnessRank = map[TrustLevel]int{
	Autonomous:  0,
	Supervised:  1,
	SuggestOnly: 2,
	ReadOnly:    3,
}

// ParseTrustLevel validates s against the four-value enumeration.
// Unknown strings return ok=false; callers drop the field rather than error.
func ParseTrustLevel(s string) (TrustLevel, bool) {
	switch TrustLevel(s) {
	case Autonomous, Supervised, SuggestOnly, ReadOnly:
		return TrustLevel(s), true
	default:
		return "", false
	}
}

// Label returns a human-readable label for the level.
func (t TrustLevel) Label() string {
	switch t {
	case Autonomous:
		return "autonomous"
	case Supervised:
		return "supervised"
	case SuggestOnly:
		return "suggest-only"
	case ReadOnly:
		return "read-only"
	default:
		return fmt.Sprintf("unknown(%s)", string(t))
	}
}

// Source identifies which resolution tier produced a decision.
type Source string

const (
	SourceAnnotation Source = "annotation"
	SourceRegion     Source = "region"
	SourcePolicy     Source = "policy"
	SourceDefault    Source = "default"
)

// ParsedAnnotation is one @collab marker (or merged run of markers) with
// its resolved scope. Line numbers are 1-indexed, inclusive. Produced
// transiently per parse; never persisted.
type ParsedAnnotation struct {
	Trust       TrustLevel `json:"trust,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Intent      string     `json:"intent,omitempty"`
	Constraints []string   `json:"constraints,omitempty"`
	LineStart   int        `json:"line_start"`
	LineEnd     int        `json:"line_end"`
}

// Overlaps reports inclusive-range overlap with [start, end].
func (a ParsedAnnotation) Overlaps(start, end int) bool {
	return start <= a.LineEnd && end >= a.LineStart
}

// TrustDecision is the single authoritative answer to one resolution query.
type TrustDecision struct {
	Level       TrustLevel `json:"level"`
	Reason      string     `json:"reason,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	Intent      string     `json:"intent,omitempty"`
	Constraints []string   `json:"constraints,omitempty"`
	Source      Source     `json:"source"`
}
