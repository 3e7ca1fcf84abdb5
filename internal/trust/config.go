package trust

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/collabgate/internal/model"
)

// PolicyRule is a path-pattern rule evaluated in order (first match wins).
type PolicyRule struct {
	Pattern string           `yaml:"pattern" json:"pattern"`
	Trust   model.TrustLevel `yaml:"trust" json:"trust"`
	Owner   string           `yaml:"owner,omitempty" json:"owner,omitempty"`
	Reason  string           `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// RegionOverride pins a trust level onto an explicit line range of one file.
// File matches by exact equality or suffix against a slash-normalized path.
type RegionOverride struct {
	File      string           `yaml:"file" json:"file"`
	LineStart int              `yaml:"line_start" json:"line_start"`
	LineEnd   int              `yaml:"line_end" json:"line_end"`
	Trust     model.TrustLevel `yaml:"trust" json:"trust"`
	Reason    string           `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Config holds all configurable trust parameters for one project.
// Callers load it fresh per query; nothing here is cached.
type Config struct {
	DefaultTrust model.TrustLevel `yaml:"default_trust" json:"default_trust"`
	Policies     []PolicyRule     `yaml:"policies" json:"policies"`
	Regions      []RegionOverride `yaml:"regions" json:"regions"`
}

// ConfigDir is the per-project directory holding the policy file and the
// collaborator stores (proposals, authorship ledger).
const ConfigDir = ".collab"

// DefaultConfigPath returns the policy path under the given project root.
func DefaultConfigPath(root string) string {
	return filepath.Join(root, ConfigDir, "policy.yaml")
}

// DefaultConfig returns the built-in configuration: everything SUPERVISED,
// no rules, no regions.
func DefaultConfig() *Config {
	return &Config{
		DefaultTrust: model.Supervised,
	}
}

// LoadConfig loads trust configuration from a YAML file.
// Empty path falls back to .collab/policy.yaml in the working directory.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads trust configuration and returns a SHA-256 hash
// of the raw YAML bytes on disk, for stamping into audit entries. When no
// file exists (defaults used), the hash is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultConfigPath(".")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read trust config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse trust config: %w", err)
	}
	cfg.normalize()

	return cfg, hash, nil
}

// normalize drops rules and regions whose trust value is outside the
// enumeration and repairs inverted region ranges. Malformed entries are
// discarded individually; the rest of the config stays usable.
func (c *Config) normalize() {
	if _, ok := model.ParseTrustLevel(string(c.DefaultTrust)); !ok {
		c.DefaultTrust = model.Supervised
	}

	policies := c.Policies[:0]
	for _, p := range c.Policies {
		if _, ok := model.ParseTrustLevel(string(p.Trust)); !ok {
			continue
		}
		policies = append(policies, p)
	}
	c.Policies = policies

	regions := c.Regions[:0]
	for _, r := range c.Regions {
		if _, ok := model.ParseTrustLevel(string(r.Trust)); !ok {
			continue
		}
		if r.File == "" {
			continue
		}
		if r.LineEnd < r.LineStart {
			r.LineStart, r.LineEnd = r.LineEnd, r.LineStart
		}
		regions = append(regions, r)
	}
	c.Regions = regions
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# collabgate trust policy
# Generated by: collabgate init-policy
#
# Resolution order (cannot be changed):
#   1. Inline @collab annotations in the file itself
#   2. Region overrides below (line-range pins)
#   3. Path-pattern policies below (first match wins)
#   4. default_trust
#
# Trust levels, least to most restrictive:
#   AUTONOMOUS   - agent edits freely
#   SUPERVISED   - agent edits, human confirms
#   SUGGEST_ONLY - agent files a proposal, human applies
#   READ_ONLY    - agent never edits

default_trust: SUPERVISED

# Path-pattern policies evaluated in order. First match wins.
# Glob grammar: ** spans directories, * stays within one segment,
# ? matches one character. Patterns describe the whole path.
policies:
  - pattern: "**/auth/**"
    trust: SUGGEST_ONLY
    owner: auth-team
    reason: "authentication code requires review"
  - pattern: "**/*_test.go"
    trust: AUTONOMOUS
    reason: "tests are safe to iterate on"

# Region overrides pin a trust level onto explicit line ranges.
# file matches by exact path or suffix.
regions: []
#  - file: internal/crypto/keys.go
#    line_start: 10
#    line_end: 80
#    trust: READ_ONLY
#    reason: "key handling is frozen until the audit closes"
`
}
