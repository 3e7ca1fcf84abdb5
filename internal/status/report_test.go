package status

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/collabgate/internal/model"
	"github.com/ppiankov/collabgate/internal/trust"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSortsStrictestFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/auth/login.go", "package auth\n")
	writeFile(t, root, "src/util/strings.go", "package util\n")
	writeFile(t, root, "scripts/gen.py", "print('x')\n")

	cfg := trust.DefaultConfig()
	cfg.Policies = []trust.PolicyRule{
		{Pattern: "src/auth/**", Trust: model.ReadOnly, Reason: "auth is hand-maintained"},
		{Pattern: "scripts/**", Trust: model.Autonomous},
	}

	rep, err := Build(cfg, root, "sha256:abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 3 {
		t.Fatalf("expected 3 files, got %d: %+v", len(rep.Files), rep.Files)
	}
	if rep.Files[0].Path != "src/auth/login.go" || rep.Files[0].Level != model.ReadOnly {
		t.Errorf("strictest file should lead, got %+v", rep.Files[0])
	}
	if rep.Files[len(rep.Files)-1].Level != model.Autonomous {
		t.Errorf("most permissive file should trail, got %+v", rep.Files[len(rep.Files)-1])
	}
	if rep.Counts[model.ReadOnly] != 1 || rep.Counts[model.Supervised] != 1 || rep.Counts[model.Autonomous] != 1 {
		t.Errorf("unexpected counts: %v", rep.Counts)
	}
}

func TestBuildCollectsAnnotations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "handler.go", strings.Join([]string{
		"package main",
		"",
		"// @collab trust=READ_ONLY owner=\"infra\"",
		"func handle() {",
		"\tserve()",
		"}",
		"",
	}, "\n"))

	rep, err := Build(trust.DefaultConfig(), root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(rep.Files))
	}
	anns := rep.Files[0].Annotations
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if anns[0].Trust != model.ReadOnly || anns[0].Owner != "infra" {
		t.Errorf("unexpected annotation: %+v", anns[0])
	}
}

func TestBuildSkipsHiddenAndVendor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/hooks/x.go", "package x\n")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, "main.go", "package main\n")

	rep, err := Build(trust.DefaultConfig(), root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 1 || rep.Files[0].Path != "main.go" {
		t.Errorf("expected only main.go, got %+v", rep.Files)
	}
}

func TestFormatTextSummarizes(t *testing.T) {
	rep := &Report{
		Root:       "/proj",
		PolicyHash: "sha256:abc",
		Files: []FileStatus{
			{Path: "a.go", Level: model.ReadOnly, Source: model.SourcePolicy, Reason: "locked"},
			{Path: "b.go", Level: model.Supervised, Source: model.SourceDefault},
		},
		Counts: map[model.TrustLevel]int{
			model.ReadOnly:   1,
			model.Supervised: 1,
		},
	}

	out := FormatText(rep)
	for _, want := range []string{"Trust status: /proj", "sha256:abc", "READ_ONLY", "a.go", "2 files scanned."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	rep := &Report{
		Root:   "/proj",
		Files:  []FileStatus{{Path: "a.go", Level: model.Supervised, Source: model.SourceDefault}},
		Counts: map[model.TrustLevel]int{model.Supervised: 1},
	}
	out, err := FormatJSON(rep)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"a.go"`) || !strings.Contains(out, `"SUPERVISED"`) {
		t.Errorf("unexpected JSON:\n%s", out)
	}
}

func TestBuildKeepsAnnotatedUnclassifiedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "deploy.sh", strings.Join([]string{
		"#!/bin/sh",
		"# @collab trust=READ_ONLY",
		"rm -rf build/",
		"",
	}, "\n"))
	writeFile(t, root, "notes.txt", "no markers here\n")

	rep, err := Build(trust.DefaultConfig(), root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 1 || rep.Files[0].Path != "deploy.sh" {
		t.Fatalf("expected only the annotated script, got %+v", rep.Files)
	}
	if len(rep.Files[0].Annotations) != 1 {
		t.Errorf("annotations = %+v", rep.Files[0].Annotations)
	}
}
