package annotation

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ppiankov/collabgate/internal/model"
)

func TestParseSingleLine(t *testing.T) {
	content := `// @collab trust="READ_ONLY" owner="security-team"
function validate(token) {
  return check(token);
}
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	a := anns[0]
	if a.Trust != model.ReadOnly {
		t.Errorf("trust = %q, want READ_ONLY", a.Trust)
	}
	if a.Owner != "security-team" {
		t.Errorf("owner = %q, want security-team", a.Owner)
	}
	if a.LineStart != 2 || a.LineEnd != 4 {
		t.Errorf("scope = [%d, %d], want [2, 4]", a.LineStart, a.LineEnd)
	}
}

func TestParseMultiLineMerge(t *testing.T) {
	content := `// @collab trust="SUGGEST_ONLY"
// @collab owner="auth-team"
function login() {
  return auth();
}
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 {
		t.Fatalf("expected 1 merged annotation, got %d", len(anns))
	}
	a := anns[0]
	if a.Trust != model.SuggestOnly || a.Owner != "auth-team" {
		t.Errorf("merged annotation = %+v, want both trust and owner set", a)
	}
	// Scope anchors at the last marker line.
	if a.LineStart != 3 || a.LineEnd != 5 {
		t.Errorf("scope = [%d, %d], want [3, 5]", a.LineStart, a.LineEnd)
	}
}

func TestParseMergeLaterKeysWin(t *testing.T) {
	content := `# @collab trust="SUPERVISED" owner="old-team"
# @collab trust="READ_ONLY"
def f():
    pass
`
	anns := Parse(content, ClassIndent)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if anns[0].Trust != model.ReadOnly {
		t.Errorf("trust = %q, want READ_ONLY (later line overwrites)", anns[0].Trust)
	}
	if anns[0].Owner != "old-team" {
		t.Errorf("owner = %q, want old-team (unset keys keep earlier value)", anns[0].Owner)
	}
}

func TestParseExplicitBlock(t *testing.T) {
	content := `package x

// @collab:begin trust="SUPERVISED" owner="crypto-team"
func a() {}
func b() {}
// @collab:end
func c() {}
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 {
		t.Fatalf("expected 1 block annotation, got %d", len(anns))
	}
	a := anns[0]
	if a.Trust != model.Supervised || a.Owner != "crypto-team" {
		t.Errorf("block = %+v", a)
	}
	// Scope is strictly between the begin and end lines.
	if a.LineStart != 4 || a.LineEnd != 5 {
		t.Errorf("block scope = [%d, %d], want [4, 5]", a.LineStart, a.LineEnd)
	}
}

func TestParseUnclosedBlockExtendsToEOF(t *testing.T) {
	content := `// @collab:begin trust="READ_ONLY"
func a() {}
func b() {}`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if anns[0].LineStart != 2 || anns[0].LineEnd != 3 {
		t.Errorf("unclosed block scope = [%d, %d], want [2, 3]", anns[0].LineStart, anns[0].LineEnd)
	}
}

func TestParseInnerMarkerInsideBlock(t *testing.T) {
	content := `// @collab:begin trust="SUPERVISED"
func a() {
}

// @collab trust="SUGGEST_ONLY" owner="privacy-team"
func b() {
}
// @collab:end
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 2 {
		t.Fatalf("expected block + inner annotation, got %d", len(anns))
	}
	// Scan order: the enclosing block first, then the inner marker.
	if anns[0].Trust != model.Supervised || anns[1].Trust != model.SuggestOnly {
		t.Errorf("annotations out of scan order: %+v", anns)
	}
	if anns[1].LineStart != 6 || anns[1].LineEnd != 7 {
		t.Errorf("inner scope = [%d, %d], want [6, 7]", anns[1].LineStart, anns[1].LineEnd)
	}
}

func TestParseConstraintsList(t *testing.T) {
	content := `// @collab trust="SUGGEST_ONLY" constraints=["Must log violations", 'No blocking']
func f() {
}
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	want := []string{"Must log violations", "No blocking"}
	if !reflect.DeepEqual(anns[0].Constraints, want) {
		t.Errorf("constraints = %v, want %v", anns[0].Constraints, want)
	}
}

func TestParseInvalidTrustDropped(t *testing.T) {
	content := `// @collab trust="TOTALLY_FINE" owner="team"
func f() {
}
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if anns[0].Trust != "" {
		t.Errorf("invalid trust should be dropped, got %q", anns[0].Trust)
	}
	if anns[0].Owner != "team" {
		t.Errorf("rest of annotation should survive, owner = %q", anns[0].Owner)
	}
}

func TestParseUnrecognizedKeysIgnored(t *testing.T) {
	content := `// @collab trust="READ_ONLY" priority="high" area=auth
func f() {
}
`
	anns := Parse(content, ClassBrace)
	if len(anns) != 1 || anns[0].Trust != model.ReadOnly {
		t.Fatalf("unrecognized keys must not break parsing: %+v", anns)
	}
}

func TestParseCommentStyles(t *testing.T) {
	cases := []struct {
		name    string
		content string
		class   FileClass
	}{
		{"slash", "// @collab trust=\"READ_ONLY\"\nfunc f() {\n}\n", ClassBrace},
		{"hash", "# @collab trust=\"READ_ONLY\"\ndef f():\n    pass\n", ClassIndent},
		{"block", "/* @collab trust=\"READ_ONLY\" */\nfunc f() {\n}\n", ClassBrace},
		{"star", " * @collab trust=\"READ_ONLY\"\nfunc f() {\n}\n", ClassBrace},
		{"dashes", "-- @collab trust=\"READ_ONLY\"\nSELECT 1;\n", ClassUnknown},
	}
	for _, c := range cases {
		anns := Parse(c.content, c.class)
		if len(anns) != 1 || anns[0].Trust != model.ReadOnly {
			t.Errorf("%s: expected one READ_ONLY annotation, got %+v", c.name, anns)
		}
	}
}

func TestParseCRLFAndCRNormalized(t *testing.T) {
	lf := "// @collab trust=\"READ_ONLY\"\nfunc f() {\n}\n"
	crlf := "// @collab trust=\"READ_ONLY\"\r\nfunc f() {\r\n}\r\n"
	a, b := Parse(lf, ClassBrace), Parse(crlf, ClassBrace)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("CRLF parse differs from LF parse: %+v vs %+v", a, b)
	}
}

func TestParseIdempotent(t *testing.T) {
	content := `// @collab trust="SUGGEST_ONLY"
// @collab owner="auth-team"
func login() {
}

// @collab:begin trust="READ_ONLY"
func crypto() {
}
// @collab:end
`
	first := Parse(content, ClassBrace)
	second := Parse(content, ClassBrace)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated parse not identical:\n%+v\n%+v", first, second)
	}
}

func TestParseNoMarkers(t *testing.T) {
	if anns := Parse("func f() {\n}\n", ClassBrace); len(anns) != 0 {
		t.Errorf("expected no annotations, got %+v", anns)
	}
	// @collaborate is not a marker.
	if anns := Parse("// @collaborate trust=\"READ_ONLY\"\nx\n", ClassBrace); len(anns) != 0 {
		t.Errorf("@collaborate must not match the marker: %+v", anns)
	}
}

func TestParseFileMissingReturnsEmpty(t *testing.T) {
	if anns := ParseFile(filepath.Join(t.TempDir(), "nope.go")); len(anns) != 0 {
		t.Errorf("missing file should parse to empty list, got %+v", anns)
	}
}

func TestParseFileBinaryReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.go")
	if err := os.WriteFile(path, []byte("// @collab trust=\"READ_ONLY\"\x00\x01"), 0600); err != nil {
		t.Fatal(err)
	}
	if anns := ParseFile(path); len(anns) != 0 {
		t.Errorf("binary file should parse to empty list, got %+v", anns)
	}
}

func TestParseFileUsesExtensionClass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svc.py")
	content := "# @collab trust=\"READ_ONLY\"\ndef f():\n    x = 1\n    return x\ny = 2\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	anns := ParseFile(path)
	if len(anns) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(anns))
	}
	if anns[0].LineStart != 2 || anns[0].LineEnd != 4 {
		t.Errorf("python scope = [%d, %d], want [2, 4]", anns[0].LineStart, anns[0].LineEnd)
	}
}

func TestParseScopeInvariant(t *testing.T) {
	content := `// @collab trust="READ_ONLY"
func f() {
}

// @collab:begin trust="SUPERVISED"
// @collab:end
`
	for _, a := range Parse(content, ClassBrace) {
		if a.LineStart > a.LineEnd {
			t.Errorf("annotation violates line_start <= line_end: %+v", a)
		}
	}
}

func FuzzParse(f *testing.F) {
	f.Add("// @collab trust=\"READ_ONLY\"\nfunc f() {\n}\n")
	f.Add("// @collab:begin\nx\n// @collab:end\n")
	f.Add("# @collab constraints=[a,b]\n\tx\n")
	f.Fuzz(func(t *testing.T, content string) {
		for _, class := range []FileClass{ClassBrace, ClassIndent, ClassUnknown} {
			for _, a := range Parse(content, class) {
				if a.LineStart > a.LineEnd || a.LineStart < 1 {
					t.Errorf("invalid scope [%d, %d] for class %s", a.LineStart, a.LineEnd, class)
				}
			}
		}
	})
}
