package main

import (
	"fmt"
	"os"

	"vinspect/internal/control"
	"vinspect/internal/daemon"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "vinspect",
		Short: "vinspect — in-browser element inspector for dev servers",
		Long: `Vinspect serves your project in dev mode with an element inspector injected:
toggle it in the browser, click or arrow-key your way to a rendered element,
and jump straight to its source location in your editor's remote session.

Key commands:
  start|stop|restart        Dev server lifecycle
  status [--json]           Uptime, injection mode, recent jumps
  jump <file:row>           Open a location in the editor manually
  doctor                    Check editor, runtime dir, config
  health|tail-log           Liveness, log tail

Notable flags/env:
  --addr <addr>             Dev server address
  --metrics-addr <addr>     Enable /metrics (Prometheus text)
  --no-inspector            Serve without injecting the inspector
  Env overrides: VINSPECT_ENABLED, VINSPECT_ADDR, VINSPECT_METRICS_ADDR,
                 VINSPECT_LOG_LEVEL/FORMAT, VINSPECT_EDITOR_SERVER,
                 VINSPECT_APPEND_TO`,
		Example: `  vinspect start --addr 127.0.0.1:5199
  vinspect status --json
  vinspect jump src/App.svelte:42
  vinspect doctor
  vinspect health`,
		DisableFlagsInUseLine: true,
	}

	root.Version = version
	root.SetVersionTemplate("vinspect v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/vinspect/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(daemon.NewStartCmd(cfgPath))
	root.AddCommand(daemon.NewStopCmd(cfgPath))
	root.AddCommand(daemon.NewRestartCmd(cfgPath))
	root.AddCommand(control.NewStatusCmd(cfgPath))
	root.AddCommand(control.NewHealthCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewJumpCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))

	// Hidden internal serve command used by start.
	root.AddCommand(daemon.NewServeCmd(cfgPath))

	return root.Execute()
}
