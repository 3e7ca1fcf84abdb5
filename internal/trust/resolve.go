// Package trust resolves a single authoritative trust decision for a file
// and optional line range by layering four sources with fixed precedence:
// inline annotations, region overrides, path-pattern policies, and the
// configured default.
package trust

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/collabgate/internal/annotation"
	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/pattern"
)

// DefaultReason is the reason attached to default-tier decisions.
const DefaultReason = "Default trust level"

// Resolve returns exactly one decision for the query. lineStart <= 0 means
// no line range was given: the annotation and region tiers are skipped and
// resolution starts at the policy tier. lineEnd <= 0 defaults to lineStart.
//
// Each tier is consulted only if the previous produced no decision, and the
// first match within a tier wins; changing either tie-break changes
// observable trust outcomes. The annotation tier re-reads the file on every
// call rather than caching parse results.
func Resolve(cfg *Config, filePath string, lineStart, lineEnd int) model.TrustDecision {
	return resolve(cfg, filePath, filePath, lineStart, lineEnd)
}

// ResolveIn is Resolve for callers not running inside the project: filePath
// stays project-relative for pattern and region matching while annotations
// are read from root/filePath on disk.
func ResolveIn(cfg *Config, root, filePath string, lineStart, lineEnd int) model.TrustDecision {
	disk := filePath
	if root != "" && !filepath.IsAbs(filePath) {
		disk = filepath.Join(root, filepath.FromSlash(filePath))
	}
	return resolve(cfg, filePath, disk, lineStart, lineEnd)
}

func resolve(cfg *Config, filePath, diskPath string, lineStart, lineEnd int) model.TrustDecision {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if lineStart > 0 {
		if lineEnd <= 0 {
			lineEnd = lineStart
		}

		// Tier 1: inline annotations, scan order, explicit trust only.
		for _, ann := range annotation.ParseFile(diskPath) {
			if ann.Trust == "" || !ann.Overlaps(lineStart, lineEnd) {
				continue
			}
			return model.TrustDecision{
				Level:       ann.Trust,
				Reason:      fmt.Sprintf("annotation at lines %d-%d", ann.LineStart, ann.LineEnd),
				Owner:       ann.Owner,
				Intent:      ann.Intent,
				Constraints: ann.Constraints,
				Source:      model.SourceAnnotation,
			}
		}

		// Tier 2: region overrides, configuration order.
		for _, region := range cfg.Regions {
			if !fileMatches(filePath, region.File) {
				continue
			}
			if lineStart > region.LineEnd || lineEnd < region.LineStart {
				continue
			}
			reason := region.Reason
			if reason == "" {
				reason = fmt.Sprintf("region override lines %d-%d", region.LineStart, region.LineEnd)
			}
			return model.TrustDecision{
				Level:  region.Trust,
				Reason: reason,
				Source: model.SourceRegion,
			}
		}
	}

	// Tier 3: path-pattern policies, file-level, first match wins.
	for _, rule := range cfg.Policies {
		if !pattern.Matches(filePath, rule.Pattern) {
			continue
		}
		reason := rule.Reason
		if reason == "" {
			reason = fmt.Sprintf("policy pattern %s", rule.Pattern)
		}
		return model.TrustDecision{
			Level:  rule.Trust,
			Reason: reason,
			Owner:  rule.Owner,
			Source: model.SourcePolicy,
		}
	}

	// Tier 4: total fallback. Hand-built configs may carry an empty or
	// invalid default; the result must still be one of the four levels.
	level := cfg.DefaultTrust
	if _, ok := model.ParseTrustLevel(string(level)); !ok {
		level = model.Supervised
	}
	return model.TrustDecision{
		Level:  level,
		Reason: DefaultReason,
		Source: model.SourceDefault,
	}
}

// fileMatches tests a region's file field against the query path: exact
// equality or suffix match after normalizing backslashes, with the suffix
// required to start at a path boundary so "auth.go" never matches
// "xauth.go".
func fileMatches(path, file string) bool {
	p := strings.ReplaceAll(path, "\\", "/")
	f := strings.ReplaceAll(file, "\\", "/")
	if p == f {
		return true
	}
	if f == "" || !strings.HasSuffix(p, f) {
		return false
	}
	// Suffix must begin at a path boundary.
	return f[0] == '/' || p[len(p)-len(f)-1] == '/'
}
