package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRecordAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	entries := []Entry{
		{File: "a.go", LineStart: 1, LineEnd: 5, Level: "READ_ONLY", Source: "annotation", Behavior: "deny", PolicyHash: "sha256:abc"},
		{File: "b.go", Level: "SUPERVISED", Source: "default", Behavior: "ask", PolicyHash: "sha256:abc"},
		{File: "c.py", Level: "AUTONOMOUS", Source: "policy", Behavior: "allow", PolicyHash: "sha256:abc"},
	}
	for _, e := range entries {
		if err := log.Record(e); err != nil {
			t.Fatal(err)
		}
	}
	log.Close()

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain invalid: %+v", result)
	}
	if result.Lines != 3 {
		t.Errorf("lines = %d, want 3", result.Lines)
	}
}

func TestChainResumesAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")

	log, _ := Open(path)
	log.Record(Entry{File: "a.go", Level: "READ_ONLY", Source: "annotation", Behavior: "deny"})
	log.Close()

	log, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	log.Record(Entry{File: "b.go", Level: "AUTONOMOUS", Source: "default", Behavior: "allow"})
	log.Close()

	result := Verify(path)
	if !result.Valid || result.Lines != 2 {
		t.Errorf("reopened chain should stay intact: %+v", result)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.jsonl")

	log, _ := Open(path)
	log.Record(Entry{File: "a.go", Level: "READ_ONLY", Source: "annotation", Behavior: "deny"})
	log.Record(Entry{File: "b.go", Level: "AUTONOMOUS", Source: "default", Behavior: "allow"})
	log.Close()

	// Flip the level on the first line.
	f, _ := os.Open(path)
	scanner := bufio.NewScanner(f)
	var lines [][]byte
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		lines = append(lines, line)
	}
	f.Close()

	var e Entry
	json.Unmarshal(lines[0], &e)
	e.Level = "AUTONOMOUS"
	lines[0], _ = json.Marshal(e)

	out := append(append([]byte{}, lines[0]...), '\n')
	out = append(out, lines[1]...)
	out = append(out, '\n')
	os.WriteFile(path, out, 0600)

	result := Verify(path)
	if result.Valid {
		t.Error("tampered log must not verify")
	}
	if result.ErrorLine != 2 {
		t.Errorf("break detected at line %d, want 2", result.ErrorLine)
	}
}

func TestVerifyMissingFile(t *testing.T) {
	result := Verify(filepath.Join(t.TempDir(), "nope.jsonl"))
	if result.Valid || result.Error == "" {
		t.Errorf("missing file should report an error: %+v", result)
	}
}
