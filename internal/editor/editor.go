package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"vinspect/internal/config"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Jump is one editor target parsed from a dev-channel payload.
type Jump struct {
	File      string
	Row       string
	Timestamp time.Time
}

// ParseLocation splits a "<file>:<row>[:...]" payload. The file is everything
// before the first colon; the row sits between the first and last colon and
// defaults to "0" when that segment is empty or no colon is present.
func ParseLocation(payload string) Jump {
	j := Jump{File: payload, Row: "0", Timestamp: time.Now()}
	first := strings.IndexByte(payload, ':')
	if first < 0 {
		return j
	}
	j.File = payload[:first]
	last := strings.LastIndexByte(payload, ':')
	if last > first {
		j.Row = payload[first+1 : last]
	}
	if j.Row == "" {
		j.Row = "0"
	}
	return j
}

// Runner drives a remote editor session with two sequential commands: open
// the file, then send the cursor key sequence. Payload values are substituted
// into a pre-split argv and handed to exec directly, never through a shell.
type Runner struct {
	cfg *config.Config
	log *logrus.Logger
}

func NewRunner(cfg *config.Config, log *logrus.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Jump opens the file and positions the cursor. The open step is awaited
// before the goto step runs; the goto step runs regardless of the open step's
// outcome. Failures are logged and never surface to the message sender.
func (r *Runner) Jump(ctx context.Context, j Jump) {
	if err := r.runStep(ctx, r.cfg.Editor.OpenArgs, j); err != nil {
		r.log.Warnf("editor open %s: %v", j.File, err)
	}
	if err := r.runStep(ctx, r.cfg.Editor.GotoArgs, j); err != nil {
		r.log.Warnf("editor goto %s:%s: %v", j.File, j.Row, err)
	}
}

func (r *Runner) runStep(ctx context.Context, template string, j Jump) error {
	args, err := ExpandArgs(template, r.cfg.Editor.Server, j)
	if err != nil {
		return err
	}
	bin := r.cfg.Editor.Bin
	if bin == "" {
		return fmt.Errorf("no editor.bin configured")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.Editor.TimeoutSec > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(float64(time.Second)*r.cfg.Editor.TimeoutSec))
		defer cancel()
	}
	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.log.Debugf("editor output: %s", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// ExpandArgs splits a command template once with shlex, then substitutes the
// ${server}, ${file} and ${row} placeholders per token. Substituting after
// the split keeps payload text confined to a single argument.
func ExpandArgs(template, server string, j Jump) ([]string, error) {
	tokens, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parse editor args: %w", err)
	}
	rep := strings.NewReplacer(
		"${server}", server,
		"${file}", j.File,
		"${row}", j.Row,
	)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, rep.Replace(t))
	}
	return out, nil
}
