package pattern

import "testing"

func TestMatchesGlobs(t *testing.T) {
	cases := []struct {
		path    string
		pattern string
		want    bool
	}{
		// ** spans separators
		{"src/auth/login.ts", "**/auth/**", true},
		{"deep/nested/auth/handlers/token.go", "**/auth/**", true},
		{"src/authorization/x.ts", "**/auth/**", false},

		// * stays within one segment
		{"src/main.go", "src/*.go", true},
		{"src/sub/main.go", "src/*.go", false},
		{"src/sub/main.go", "src/**/*.go", true},

		// ? matches exactly one character
		{"v1.go", "v?.go", true},
		{"v12.go", "v?.go", false},

		// whole-path anchoring, no substring matches
		{"src/payments.go", "payments.go", false},
		{"payments.go", "payments.go", true},

		// literal dots are not wildcards
		{"mainxgo", "main.go", false},
	}
	for _, c := range cases {
		if got := Matches(c.path, c.pattern); got != c.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", c.path, c.pattern, got, c.want)
		}
	}
}

func TestMatchesBackslashPaths(t *testing.T) {
	if !Matches(`src\auth\login.ts`, "**/auth/**") {
		t.Error("expected backslash path to match after normalization")
	}
}

func TestMalformedPatternNeverMatches(t *testing.T) {
	// Unbalanced bracket fails regexp compilation; must be non-matching,
	// not a panic.
	if Matches("src/a.go", "src/[a.go") {
		t.Error("malformed pattern must not match")
	}
}

func TestEmptyPattern(t *testing.T) {
	if Matches("src/a.go", "") {
		t.Error("empty pattern must only match empty path")
	}
	if !Matches("", "") {
		t.Error("empty pattern should match empty path")
	}
}

func FuzzMatches(f *testing.F) {
	f.Add("src/auth/login.ts", "**/auth/**")
	f.Add("a/b/c", "a/*/c")
	f.Add("x", "[")
	f.Fuzz(func(t *testing.T, path, pattern string) {
		// Must never panic, regardless of input.
		Matches(path, pattern)
	})
}
