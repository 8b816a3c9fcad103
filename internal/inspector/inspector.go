package inspector

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// OptionsID is the virtual module carrying the serialized options record.
	OptionsID = "virtual:inspector-options"
	// PathPrefix namespaces virtual ids mapped onto the runtime directory.
	PathPrefix = "virtual:inspector-path:"
	// LoaderEntry is the client entry point under the runtime directory.
	LoaderEntry = "load-inspector.js"
	// IDPrefix is the module-id addressing convention used from served HTML,
	// so browsers do not parse "virtual:" as a network scheme.
	IDPrefix = "/@id/"
	// OpenEvent is the dev-channel event requesting an editor jump.
	OpenEvent = "inspector:open"

	kitGeneratedEntry = "generated/root.svelte"
)

// Inspector is one plugin session. All fields are set during construction and
// read-only afterwards; a disabled session answers every hook with "not
// handled" until process restart.
type Inspector struct {
	log      *logrus.Logger
	opts     *Options
	appendTo string
	baseDir  string // normalized runtime dir, trailing slash, forward slashes
	disabled bool
}

// Tag describes one element injected into served HTML.
type Tag struct {
	Tag   string
	Attrs map[string]string
}

// New resolves options against the host record once. A host without inspector
// options yields a permanently disabled session, not an error.
func New(host Host, runtimeDir string, log *logrus.Logger) *Inspector {
	x := &Inspector{log: log}
	if host.Options == nil {
		x.disabled = true
		log.Debug("inspector: host has no inspector options, disabling")
		return x
	}
	opts := mergeOptions(host.Options)
	if opts.AppendTo == "" && host.KitOutDir != "" {
		opts.AppendTo = path.Join(host.KitOutDir, kitGeneratedEntry)
	}
	x.opts = &opts
	x.appendTo = opts.AppendTo
	x.baseDir = normalizeBase(runtimeDir)
	return x
}

// Disabled reports whether the session is a permanent no-op.
func (x *Inspector) Disabled() bool { return x.disabled }

// AppendTo returns the configured append target ("" in HTML-tag mode).
func (x *Inspector) AppendTo() string { return x.appendTo }

// Mode names the active injection strategy for status reporting.
func (x *Inspector) Mode() string {
	switch {
	case x.disabled:
		return "disabled"
	case x.appendTo != "":
		return "module-append"
	default:
		return "html-tag"
	}
}

// Options returns the merged record, nil when disabled.
func (x *Inspector) Options() *Options { return x.opts }

// ResolveID answers resolve-module-id for the two virtual namespaces. The
// second return is false when the id is not handled here.
func (x *Inspector) ResolveID(id string, ssr bool) (string, bool) {
	if x.disabled || ssr {
		return "", false
	}
	if id == OptionsID {
		return id, true
	}
	if rest, ok := strings.CutPrefix(id, PathPrefix); ok {
		return x.baseDir + idEscaper.Replace(rest), true
	}
	return "", false
}

// idEscaper protects the two bytes that would corrupt the load-side mapping:
// "%" so PathUnescape is an exact inverse, "?" so it survives query stripping.
var idEscaper = strings.NewReplacer("%", "%25", "?", "%3F")

// Load answers load-module for previously resolved ids. The options module is
// synthesized; runtime files are read directly from disk, outside any host
// allow-list, so the client sources can live away from the project root.
func (x *Inspector) Load(id string, ssr bool) (string, bool) {
	if x.disabled || ssr {
		return "", false
	}
	if id == OptionsID {
		payload, err := json.Marshal(x.opts)
		if err != nil {
			x.log.Warnf("inspector: marshal options: %v", err)
			return "", false
		}
		return "export default " + string(payload) + "\n", true
	}
	if strings.HasPrefix(id, x.baseDir) {
		content, err := os.ReadFile(x.fileFromID(id))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				x.log.Warnf("inspector: read %s: %v", id, err)
			} else {
				x.log.Debugf("inspector: no runtime file for %s", id)
			}
			return "", false
		}
		return string(content), true
	}
	return "", false
}

// Transform appends the loader import to the configured append target. Inert
// unless module-append mode is active.
func (x *Inspector) Transform(code, id string, ssr bool) (string, bool) {
	if x.disabled || ssr || x.appendTo == "" {
		return "", false
	}
	if !strings.HasSuffix(id, x.appendTo) {
		return "", false
	}
	return code + "\nimport '" + PathPrefix + LoaderEntry + "'\n", true
}

// TransformHTML injects the loader script tag into a served document. Inert
// unless HTML-tag mode is active.
func (x *Inspector) TransformHTML(html string) (string, []Tag, bool) {
	if x.disabled || x.appendTo != "" {
		return "", nil, false
	}
	src := IDPrefix + PathPrefix + LoaderEntry
	tag := Tag{Tag: "script", Attrs: map[string]string{"type": "module", "src": src}}
	script := `<script type="module" src="` + src + `"></script>`
	if i := strings.LastIndex(html, "</body>"); i >= 0 {
		html = html[:i] + script + html[i:]
	} else {
		html += script
	}
	return html, []Tag{tag}, true
}

func (x *Inspector) fileFromID(id string) string {
	rel := strings.TrimPrefix(id, x.baseDir)
	if q := strings.IndexByte(rel, '?'); q >= 0 {
		rel = rel[:q]
	}
	// reverse the escaping applied at resolve time
	if dec, err := url.PathUnescape(rel); err == nil {
		rel = dec
	}
	return filepath.Join(filepath.FromSlash(x.baseDir), filepath.FromSlash(rel))
}

func normalizeBase(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	s := filepath.ToSlash(filepath.Clean(abs))
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}
