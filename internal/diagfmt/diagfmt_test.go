package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"stackc/internal/diag"
	"stackc/internal/source"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(8)
	d := diag.Errorf(diag.LowRedeclared, "dir/unit.yaml", source.Span{File: 1, Line: 3, Col: 5}, "x declared twice")
	d.Notes = []diag.Note{{Msg: "first declared here"}}
	bag.Add(d)
	bag.Add(diag.Errorf(diag.IOLoadFileError, "dir/missing.yaml", source.Span{}, "failed to load file"))
	return bag
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	want := strings.Join([]string{
		"unit.yaml:3:5: ERROR LOW1004: x declared twice",
		"  note: first declared here",
		"missing.yaml: ERROR IO4001: failed to load file",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyColorAddsEscapes(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{Color: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes in %q", buf.String())
	}
}

func TestPrettyTruncatesToWidth(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.Errorf(diag.LowMalformedNode, "u", source.Span{}, "%s", strings.Repeat("word ", 20)))
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, PrettyOpts{Width: 40}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	line := strings.TrimSuffix(buf.String(), "\n")
	if !strings.HasSuffix(line, "...") {
		t.Fatalf("line not truncated: %q", line)
	}
	if n := len([]rune(line)); n > 40 {
		t.Fatalf("line is %d cells wide", n)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{IncludeNotes: true, Max: 1}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("count=%d len=%d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "LOW1004" || d.Location.Line != 3 || d.Location.File != "dir/unit.yaml" || len(d.Notes) != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
}
