package authorship

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "authorship.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndQueryByFile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	records := []Record{
		{File: "src/auth/login.go", LineStart: 10, LineEnd: 20, Level: "SUGGEST_ONLY", Source: "policy", Behavior: "deny", Agent: "claude"},
		{File: "src/util/strings.go", Level: "AUTONOMOUS", Source: "default", Behavior: "allow", Agent: "claude"},
		{File: "src/auth/login.go", LineStart: 30, LineEnd: 40, Level: "READ_ONLY", Source: "annotation", Behavior: "deny", Agent: "claude"},
	}
	for _, r := range records {
		if err := s.Append(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ByFile(ctx, "src/auth/login.go", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for login.go, got %d", len(got))
	}
	// Newest first.
	if got[0].Level != "READ_ONLY" || got[1].Level != "SUGGEST_ONLY" {
		t.Errorf("order wrong: %+v", got)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("timestamp should be filled on append")
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, Record{File: "a.go", Level: "SUPERVISED", Source: "default", Behavior: "ask"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("limit not applied: got %d records", len(got))
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authorship.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Append(ctx, Record{File: "a.go", Level: "READ_ONLY", Source: "region", Behavior: "deny"})
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, err := s.ByFile(ctx, "a.go", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Source != "region" {
		t.Errorf("data lost across reopen: %+v", got)
	}
}
