package editor

import (
	"context"
	"io"
	"testing"

	"vinspect/internal/config"

	"github.com/sirupsen/logrus"
)

func TestParseLocation(t *testing.T) {
	cases := []struct {
		payload string
		file    string
		row     string
	}{
		{"src/App.svelte:42:extra", "src/App.svelte", "42"},
		{"src/App.svelte:42:17", "src/App.svelte", "42"},
		{"onlyfile", "onlyfile", "0"},
		{"file.js:7", "file.js", "0"},
		{"file.js::3", "file.js", "0"},
		{"", "", "0"},
	}
	for _, c := range cases {
		j := ParseLocation(c.payload)
		if j.File != c.file || j.Row != c.row {
			t.Fatalf("parse %q: got %q:%q, want %q:%q", c.payload, j.File, j.Row, c.file, c.row)
		}
	}
}

func TestExpandArgsSubstitutesPerToken(t *testing.T) {
	j := Jump{File: "src/my file.svelte", Row: "42"}
	args, err := ExpandArgs("--server ${server} --remote ${file}", "/tmp/nvimsocket", j)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	want := []string{"--server", "/tmp/nvimsocket", "--remote", "src/my file.svelte"}
	if len(args) != len(want) {
		t.Fatalf("got %d args %v, want %v", len(args), args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: %q, want %q", i, args[i], want[i])
		}
	}
}

func TestExpandArgsKeepsPayloadInOneArg(t *testing.T) {
	// a hostile payload must stay a single argv entry, not become new flags
	j := Jump{File: "a.js; rm -rf /", Row: "1"}
	args, err := ExpandArgs("--remote ${file} ${row}G", "", j)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(args) != 3 || args[1] != "a.js; rm -rf /" {
		t.Fatalf("payload leaked across argv: %v", args)
	}
	if args[2] != "1G" {
		t.Fatalf("row substitution failed: %v", args)
	}
}

func TestJumpLogsAndSwallowsFailures(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	cfg.Editor.Bin = "/nonexistent/editor-binary"
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := NewRunner(cfg, log)
	// must not panic or propagate; both steps fail silently
	r.Jump(context.Background(), ParseLocation("src/App.svelte:3:1"))
}
