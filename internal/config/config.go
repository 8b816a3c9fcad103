package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAddr          = "127.0.0.1:5199"
	defaultHistoryTail   = 10
	defaultEditorTimeout = 5.0
	defaultStateDirLinux = ".local/state/vinspect"
	defaultConfigDir     = ".config/vinspect"
)

// Config holds user configuration loaded from TOML.
type Config struct {
	Inspector struct {
		Enabled        bool   `toml:"enabled"`
		ToggleKeyCombo string `toml:"toggle_key_combo"` // e.g. "meta-shift", "control-shift"
		NavKeys        struct {
			Parent string `toml:"parent"`
			Child  string `toml:"child"`
			Next   string `toml:"next"`
			Prev   string `toml:"prev"`
		} `toml:"nav_keys"`
		OpenKey          string `toml:"open_key"`
		HoldMode         bool   `toml:"hold_mode"`
		ShowToggleButton string `toml:"show_toggle_button"` // active, always, never
		ToggleButtonPos  string `toml:"toggle_button_pos"`
		CustomStyles     bool   `toml:"custom_styles"`
		AppendTo         string `toml:"append_to"`   // module suffix receiving the loader import
		KitOutDir        string `toml:"kit_out_dir"` // set for kit projects; derives append_to
	} `toml:"inspector"`

	Editor struct {
		Bin        string  `toml:"bin"`
		Server     string  `toml:"server"` // named remote session address (socket/pipe)
		OpenArgs   string  `toml:"open_args"`
		GotoArgs   string  `toml:"goto_args"`
		TimeoutSec float64 `toml:"timeout_sec"`
	} `toml:"editor"`

	Server struct {
		Addr       string `toml:"addr"`
		Root       string `toml:"root"`        // project directory served in dev mode
		RuntimeDir string `toml:"runtime_dir"` // inspector client sources, outside the project root
	} `toml:"server"`

	Logging struct {
		Level  string `toml:"level"`  // debug, info, warn, error
		Format string `toml:"format"` // text, json
		Stdout bool   `toml:"stdout"`
	} `toml:"logging"`

	Paths struct {
		StateDir   string `toml:"state_dir"`
		LogPath    string `toml:"log_path"`
		SocketPath string `toml:"socket_path"`
		PidPath    string `toml:"pid_path"`
		ConfigPath string `toml:"-"`
	} `toml:"paths"`

	History struct {
		Tail int `toml:"tail"`
	} `toml:"history"`

	Metrics struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
	} `toml:"metrics"`
}

// Default returns Config populated with defaults.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(home, defaultStateDirLinux)
	// macOS prefers ~/Library/Application Support/vinspect for state/logs
	if isMac() {
		stateDir = filepath.Join(home, "Library", "Application Support", "vinspect")
	}

	cfg := &Config{}

	cfg.Inspector.Enabled = true
	cfg.Inspector.ToggleKeyCombo = "control-shift"
	if isMac() {
		cfg.Inspector.ToggleKeyCombo = "meta-shift"
	}
	cfg.Inspector.NavKeys.Parent = "ArrowUp"
	cfg.Inspector.NavKeys.Child = "ArrowDown"
	cfg.Inspector.NavKeys.Next = "ArrowRight"
	cfg.Inspector.NavKeys.Prev = "ArrowLeft"
	cfg.Inspector.ShowToggleButton = "active"
	cfg.Inspector.ToggleButtonPos = "top-right"
	cfg.Inspector.CustomStyles = true

	cfg.Editor.Bin = "nvim"
	cfg.Editor.Server = "/tmp/nvimsocket"
	cfg.Editor.OpenArgs = "--server ${server} --remote ${file}"
	cfg.Editor.GotoArgs = "--server ${server} --remote-send ${row}G"
	cfg.Editor.TimeoutSec = defaultEditorTimeout

	cfg.Server.Addr = DefaultAddr
	cfg.Server.Root = "."
	cfg.Server.RuntimeDir = filepath.Join(stateDir, "runtime")

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	cfg.Paths.StateDir = stateDir
	cfg.Paths.LogPath = filepath.Join(stateDir, "vinspect.log")
	cfg.Paths.SocketPath = filepath.Join(stateDir, "control.sock")
	cfg.Paths.PidPath = filepath.Join(stateDir, "vinspect.pid")

	cfg.History.Tail = defaultHistoryTail

	cfg.Metrics.Addr = "127.0.0.1:9323"

	return cfg, nil
}

// DefaultConfigPath returns the user config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultConfigDir, "config.toml"), nil
}

// Load reads config from path (or the default location when empty), creating
// a default file on first run.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// ensure dir
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := Save(cfg, path); err != nil {
				return nil, err
			}
			cfg.Paths.ConfigPath = path
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Paths.ConfigPath = path
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func isMac() bool {
	return runtime.GOOS == "darwin"
}

// MustStatePaths ensures state dirs exist.
func MustStatePaths(cfg *Config) error {
	for _, p := range []string{cfg.Paths.StateDir, filepath.Dir(cfg.Paths.LogPath), cfg.Server.RuntimeDir} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VINSPECT_ENABLED"); v != "" {
		cfg.Inspector.Enabled = v != "0" && strings.ToLower(v) != "false"
	}
	if v := os.Getenv("VINSPECT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("VINSPECT_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if v := os.Getenv("VINSPECT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VINSPECT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("VINSPECT_EDITOR_SERVER"); v != "" {
		cfg.Editor.Server = v
	}
	if v := os.Getenv("VINSPECT_APPEND_TO"); v != "" {
		cfg.Inspector.AppendTo = v
	}
}
