package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"

	"vinspect/internal/config"
	"vinspect/internal/doctor"
	"vinspect/internal/editor"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStatusCmd queries daemon status.
func NewStatusCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			conn, err := net.Dial("unix", cfg.Paths.SocketPath)
			if err != nil {
				return fmt.Errorf("cannot connect to daemon: %w", err)
			}
			defer conn.Close()
			req := Request{Op: "status"}
			if err := json.NewEncoder(conn).Encode(req); err != nil {
				return err
			}
			var status Status
			if err := json.NewDecoder(conn).Decode(&status); err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			fmt.Printf("running: %v\nuptime: %.1fs\nmode: %s\naddr: %s\n", status.Running, status.UptimeSec, status.Mode, status.Addr)
			for _, j := range status.Jumps {
				fmt.Printf("%s  %s:%s\n", j.Timestamp.Format("15:04:05"), j.File, j.Row)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

// NewHealthCmd pings the control socket.
func NewHealthCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			conn, err := net.Dial("unix", cfg.Paths.SocketPath)
			if err != nil {
				return fmt.Errorf("not running: %w", err)
			}
			defer conn.Close()
			if err := json.NewEncoder(conn).Encode(Request{Op: "health"}); err != nil {
				return err
			}
			var resp SimpleResponse
			if err := json.NewDecoder(conn).Decode(&resp); err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("unhealthy: %s", resp.Message)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

// NewTailLogCmd prints the last log lines.
func NewTailLogCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail-log",
		Short: "Show recent log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetInt("lines")
			data, err := os.ReadFile(cfg.Paths.LogPath)
			if err != nil {
				return err
			}
			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			if len(lines) > n {
				lines = lines[len(lines)-n:]
			}
			for _, l := range lines {
				fmt.Println(l)
			}
			return nil
		},
	}
	cmd.Flags().Int("lines", 40, "number of lines")
	return cmd
}

// NewJumpCmd invokes the editor jump manually, bypassing the dev channel.
func NewJumpCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "jump <file:row>",
		Short: "Open a source location in the configured editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			log := logrus.New()
			log.SetOutput(cmd.ErrOrStderr())
			j := editor.ParseLocation(args[0])
			fmt.Printf("jumping to %s:%s\n", j.File, j.Row)
			editor.NewRunner(cfg, log).Jump(context.Background(), j)
			return nil
		},
	}
}

// NewDoctorCmd runs environment checks.
func NewDoctorCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check editor, runtime dir, and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			failed := false
			for _, r := range doctor.Run(cfg) {
				mark := "ok"
				if !r.Pass {
					mark = "FAIL"
					failed = true
				}
				fmt.Printf("%-4s %-20s %s\n", mark, r.Name, r.Detail)
			}
			if failed {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}
