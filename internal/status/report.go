package status

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/collabgate/internal/annotation"
	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/trust"
)

// FileStatus is one source file's resolved trust posture.
type FileStatus struct {
	Path        string                   `json:"path"`
	Level       model.TrustLevel         `json:"level"`
	Source      model.Source             `json:"source"`
	Reason      string                   `json:"reason"`
	Annotations []model.ParsedAnnotation `json:"annotations,omitempty"`
}

// Report is the project-wide trust summary.
type Report struct {
	Root       string                   `json:"root"`
	PolicyHash string                   `json:"policy_hash,omitempty"`
	Files      []FileStatus             `json:"files"`
	Counts     map[model.TrustLevel]int `json:"counts"`
}

// skipDirs are directory names never scanned.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"target":       true,
}

// Build walks root and resolves every recognized source file at file
// granularity. Files are ordered strictest first, then by path, so the
// locked-down regions lead the report.
func Build(cfg *trust.Config, root, policyHash string) (*Report, error) {
	rep := &Report{
		Root:       root,
		PolicyHash: policyHash,
		Counts:     make(map[model.TrustLevel]int),
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		// Unclassified files stay in the report only when they carry
		// markers, so shell scripts and config files with explicit
		// annotations still surface.
		anns := annotation.ParseFile(path)
		if annotation.ClassForFile(path) == annotation.ClassUnknown && len(anns) == 0 {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		d2 := trust.Resolve(cfg, rel, 0, 0)
		rep.Files = append(rep.Files, FileStatus{
			Path:        rel,
			Level:       d2.Level,
			Source:      d2.Source,
			Reason:      d2.Reason,
			Annotations: anns,
		})
		rep.Counts[d2.Level]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rep.Files, func(i, j int) bool {
		ri := model.StrictnessRank[rep.Files[i].Level]
		rj := model.StrictnessRank[rep.Files[j].Level]
		if ri != rj {
			return ri > rj
		}
		return rep.Files[i].Path < rep.Files[j].Path
	})
	return rep, nil
}
