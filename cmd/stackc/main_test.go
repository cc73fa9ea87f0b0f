package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const countdownTree = `schema: 1
nodes:
  - kind: Extern
    name: println
    params: [{name: v, type: int}]
    result: void
  - kind: VarDecl
    name: n
    value: {kind: Literal, int: 2}
  - kind: While
    cond:
      kind: Binary
      op: ">"
      type: bool
      left: {kind: Ident, name: n, type: int}
      right: {kind: Literal, int: 0}
    body:
      - kind: Discard
        value:
          kind: Call
          type: void
          callee: {kind: Ident, name: println, type: "fn(int) -> void"}
          args:
            - {kind: Ident, name: n, type: int}
      - kind: VarAssign
        target: {kind: Ident, name: n, type: int}
        value:
          kind: Binary
          op: "-"
          type: int
          left: {kind: Ident, name: n, type: int}
          right: {kind: Literal, int: 1}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	teardown()
	return out.String(), err
}

func writeTree(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "countdown.yaml")
	if err := os.WriteFile(path, []byte(countdownTree), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLowerCommandPrintsIR(t *testing.T) {
	path := writeTree(t)
	out, err := execute(t, "lower", path)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	for _, want := range []string{"; " + path, "extern void println(v int)", "loop guard=3 {", "call void 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestRunCommandExecutesProgram(t *testing.T) {
	out, err := execute(t, "run", writeTree(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "2\n1\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Tool != "stackc" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

// Runs last: lower's --format and -o flags keep their values afterwards.
func TestDumpCommand(t *testing.T) {
	tree := writeTree(t)
	container := filepath.Join(t.TempDir(), "countdown.ir")
	if _, err := execute(t, "lower", "--format", "ir", "-o", container, tree); err != nil {
		t.Fatalf("lower: %v", err)
	}

	out, err := execute(t, "dump", container)
	if err != nil {
		t.Fatalf("dump container: %v", err)
	}
	for _, want := range []string{"; " + tree, "loop guard=3 {"} {
		if !strings.Contains(out, want) {
			t.Fatalf("container dump lacks %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "dump", tree)
	if err != nil {
		t.Fatalf("dump tree: %v", err)
	}
	if !strings.Contains(out, "kind: While") {
		t.Fatalf("tree dump lacks the loop:\n%s", out)
	}
}
