package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vinspect/internal/config"
	"vinspect/internal/inspector"
)

// Result represents a diagnostic check.
type Result struct {
	Name   string
	Pass   bool
	Detail string
}

// Run executes doctor checks.
func Run(cfg *config.Config) []Result {
	return []Result{
		checkFile("config path", cfg.Paths.ConfigPath),
		checkDir("project root", cfg.Server.Root),
		checkRuntimeDir(cfg.Server.RuntimeDir),
		checkEditorExecutable(cfg.Editor.Bin),
		checkEditorSession(cfg.Editor.Server),
	}
}

func checkFile(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(path)); err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkDir(label, path string) Result {
	if path == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	info, err := os.Stat(os.ExpandEnv(path))
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	if !info.IsDir() {
		return Result{Name: label, Pass: false, Detail: "not a directory"}
	}
	return Result{Name: label, Pass: true, Detail: path}
}

func checkRuntimeDir(dir string) Result {
	label := "runtime dir"
	if dir == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	entry := filepath.Join(os.ExpandEnv(dir), inspector.LoaderEntry)
	if _, err := os.Stat(entry); err != nil {
		return Result{Name: label, Pass: false, Detail: inspector.LoaderEntry + " missing under " + dir}
	}
	return Result{Name: label, Pass: true, Detail: entry}
}

func checkEditorExecutable(bin string) Result {
	label := "editor.bin"
	if bin == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	path := os.ExpandEnv(bin)
	// If contains a path separator, treat as explicit path.
	if strings.Contains(path, "/") || strings.Contains(path, "\\") {
		info, err := os.Stat(path)
		if err != nil {
			return Result{Name: label, Pass: false, Detail: err.Error()}
		}
		if info.IsDir() {
			return Result{Name: label, Pass: false, Detail: "is a directory; set editor.bin to an executable file"}
		}
		if info.Mode().Perm()&0o111 == 0 {
			return Result{Name: label, Pass: false, Detail: "not executable; chmod +x or choose another command"}
		}
		return Result{Name: label, Pass: true, Detail: path}
	}
	// Else search PATH.
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Result{Name: label, Pass: false, Detail: err.Error()}
	}
	return Result{Name: label, Pass: true, Detail: resolved}
}

func checkEditorSession(addr string) Result {
	label := "editor.server"
	if addr == "" {
		return Result{Name: label, Pass: false, Detail: "not set"}
	}
	if _, err := os.Stat(os.ExpandEnv(addr)); err != nil {
		// jumps will queue into a dead session until the editor starts
		return Result{Name: label, Pass: false, Detail: "remote session not listening at " + addr}
	}
	return Result{Name: label, Pass: true, Detail: addr}
}
