package main

import (
	"fmt"
	"io"

	"vinspect/internal/config"
	"vinspect/internal/inspector"
	"vinspect/internal/run"

	"github.com/sirupsen/logrus"
)

// showopts prints the merged browser-facing options payload exactly as the
// virtual options module will deliver it.
func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	x := inspector.New(run.HostFromConfig(cfg), cfg.Server.RuntimeDir, log)
	fmt.Printf("mode=%s\n", x.Mode())
	if src, ok := x.Load(inspector.OptionsID, false); ok {
		fmt.Print(src)
	}
}
