package run

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vinspect/internal/config"
	"vinspect/internal/editor"
	"vinspect/internal/inspector"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	dir := t.TempDir()
	cfg.Server.Root = filepath.Join(dir, "project")
	cfg.Server.RuntimeDir = filepath.Join(dir, "runtime")
	cfg.Paths.StateDir = dir
	cfg.Paths.LogPath = filepath.Join(dir, "test.log")
	if err := os.MkdirAll(cfg.Server.Root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	if err := os.MkdirAll(cfg.Server.RuntimeDir, 0o755); err != nil {
		t.Fatalf("mkdir runtime: %v", err)
	}
	return cfg
}

func TestHostFromConfigDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inspector.Enabled = false
	host := HostFromConfig(cfg)
	if host.Options != nil {
		t.Fatalf("disabled section should map to an empty host")
	}
	srv := newServer(cfg, testLogger())
	if !srv.insp.Disabled() {
		t.Fatalf("session should be disabled")
	}
}

func TestHostFromConfigCarriesOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inspector.ToggleKeyCombo = "alt-i"
	cfg.Inspector.HoldMode = true
	host := HostFromConfig(cfg)
	if host.Options == nil || host.Options.ToggleKeyCombo != "alt-i" {
		t.Fatalf("host options not carried: %+v", host.Options)
	}
	if host.Options.HoldMode == nil || !*host.Options.HoldMode {
		t.Fatalf("hold mode should be set explicitly")
	}
}

func TestParseOpenPayload(t *testing.T) {
	if loc, ok := parseOpenPayload(json.RawMessage(`"a.js:1:2"`)); !ok || loc != "a.js:1:2" {
		t.Fatalf("string payload: %q %v", loc, ok)
	}
	if loc, ok := parseOpenPayload(json.RawMessage(`{"loc":"b.js:3:4"}`)); !ok || loc != "b.js:3:4" {
		t.Fatalf("object payload: %q %v", loc, ok)
	}
	if _, ok := parseOpenPayload(json.RawMessage(`{}`)); ok {
		t.Fatalf("empty payload should not dispatch")
	}
}

func TestRecordJumpKeepsTail(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Tail = 2
	srv := newServer(cfg, testLogger())
	for _, f := range []string{"a", "b", "c"} {
		srv.recordJump(editor.Jump{File: f, Row: "1"})
	}
	jumps := srv.copyJumps()
	if len(jumps) != 2 || jumps[0].File != "b" || jumps[1].File != "c" {
		t.Fatalf("tail trim failed: %+v", jumps)
	}
}

func TestServeVirtualModule(t *testing.T) {
	cfg := testConfig(t)
	loader := filepath.Join(cfg.Server.RuntimeDir, inspector.LoaderEntry)
	if err := os.WriteFile(loader, []byte("// loader"), 0o644); err != nil {
		t.Fatalf("write loader: %v", err)
	}
	srv := newServer(cfg, testLogger())

	req := httptest.NewRequest("GET", inspector.IDPrefix+inspector.PathPrefix+inspector.LoaderEntry, nil)
	rec := httptest.NewRecorder()
	srv.handleHTTP(rec, req)
	if rec.Code != 200 || rec.Body.String() != "// loader" {
		t.Fatalf("virtual load: code=%d body=%q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("GET", inspector.IDPrefix+inspector.OptionsID, nil)
	rec = httptest.NewRecorder()
	srv.handleHTTP(rec, req)
	if rec.Code != 200 || !strings.HasPrefix(rec.Body.String(), "export default ") {
		t.Fatalf("options module: code=%d body=%q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("GET", inspector.IDPrefix+"virtual:unknown", nil)
	rec = httptest.NewRecorder()
	srv.handleHTTP(rec, req)
	if rec.Code != 404 {
		t.Fatalf("unknown virtual id should 404, got %d", rec.Code)
	}
}

func TestServeHTMLInjection(t *testing.T) {
	cfg := testConfig(t)
	index := filepath.Join(cfg.Server.Root, "index.html")
	if err := os.WriteFile(index, []byte("<html><body><p>hi</p></body></html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	srv := newServer(cfg, testLogger())

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.handleHTTP(rec, req)
	want := inspector.IDPrefix + inspector.PathPrefix + inspector.LoaderEntry
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("html should carry the loader tag: %q", rec.Body.String())
	}
}

func TestServeModuleAppend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inspector.AppendTo = "src/main.js"
	if err := os.MkdirAll(filepath.Join(cfg.Server.Root, "src"), 0o755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	main := filepath.Join(cfg.Server.Root, "src", "main.js")
	if err := os.WriteFile(main, []byte("console.log(1)"), 0o644); err != nil {
		t.Fatalf("write main: %v", err)
	}
	index := filepath.Join(cfg.Server.Root, "index.html")
	if err := os.WriteFile(index, []byte("<html><body></body></html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	srv := newServer(cfg, testLogger())

	req := httptest.NewRequest("GET", "/src/main.js", nil)
	rec := httptest.NewRecorder()
	srv.handleHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), inspector.PathPrefix+inspector.LoaderEntry) {
		t.Fatalf("append target should gain the import: %q", rec.Body.String())
	}

	// html stays untouched in module-append mode
	req = httptest.NewRequest("GET", "/index.html", nil)
	rec = httptest.NewRecorder()
	srv.handleHTTP(rec, req)
	if strings.Contains(rec.Body.String(), inspector.IDPrefix) {
		t.Fatalf("html must not be injected in module-append mode: %q", rec.Body.String())
	}
}
