package run

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vinspect/internal/config"
	"vinspect/internal/control"
	"vinspect/internal/devchannel"
	"vinspect/internal/editor"
	"vinspect/internal/inspector"

	"github.com/sirupsen/logrus"
)

// Server manages the dev HTTP server, the websocket channel, editor jump
// dispatch, metrics, and the control endpoint.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	insp      *inspector.Inspector
	editor    *editor.Runner
	hub       *devchannel.Hub
	startedAt time.Time

	jumpsMu sync.Mutex
	jumps   []control.Jump

	metrics metrics
	jumpCh  chan editor.Jump

	wg sync.WaitGroup
}

func newServer(cfg *config.Config, logger *logrus.Logger) *Server {
	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		insp:      inspector.New(HostFromConfig(cfg), cfg.Server.RuntimeDir, logger),
		editor:    editor.NewRunner(cfg, logger),
		hub:       devchannel.New(logger),
		startedAt: time.Now(),
		jumps:     make([]control.Jump, 0, cfg.History.Tail),
		jumpCh:    make(chan editor.Jump, 16),
	}
	srv.metrics.reset()
	srv.hub.On(inspector.OpenEvent, srv.handleOpen)
	return srv
}

// Serve runs the daemon until interrupted.
func Serve(cfg *config.Config, logger *logrus.Logger) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	// Write pid file.
	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()
	// Ensure socket removed
	if err := os.Remove(cfg.Paths.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debugf("remove stale socket: %v", err)
	}

	srv := newServer(cfg, logger)
	logger.Infof("inspector mode: %s", srv.insp.Mode())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Control socket
	go srv.controlLoop(ctx)

	// Editor jump worker
	srv.wg.Add(1)
	go srv.jumpWorker(ctx)

	// Metrics server
	if cfg.Metrics.Enabled {
		go srv.metricsServe(ctx.Done(), cfg.Metrics.Addr, logger)
	}

	// Dev HTTP server + channel
	go srv.httpServe(ctx)

	// Handle signals
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	select {
	case s := <-sigCh:
		logger.Infof("received signal %s, shutting down", s)
		cancel()
	case <-ctx.Done():
	}
	srv.wg.Wait()
	return nil
}

// HostFromConfig builds the typed host record the inspector session is
// constructed from. A disabled [inspector] section maps to an empty host,
// which the session treats as "no inspector configured".
func HostFromConfig(cfg *config.Config) inspector.Host {
	if !cfg.Inspector.Enabled {
		return inspector.Host{}
	}
	ins := cfg.Inspector
	hold := ins.HoldMode
	styles := ins.CustomStyles
	return inspector.Host{
		Options: &inspector.HostOptions{
			ToggleKeyCombo: ins.ToggleKeyCombo,
			NavKeys: inspector.NavKeys{
				Parent: ins.NavKeys.Parent,
				Child:  ins.NavKeys.Child,
				Next:   ins.NavKeys.Next,
				Prev:   ins.NavKeys.Prev,
			},
			OpenKey:          ins.OpenKey,
			HoldMode:         &hold,
			ShowToggleButton: ins.ShowToggleButton,
			ToggleButtonPos:  ins.ToggleButtonPos,
			CustomStyles:     &styles,
			AppendTo:         ins.AppendTo,
		},
		KitOutDir: ins.KitOutDir,
	}
}

func (s *Server) handleOpen(client string, data json.RawMessage) {
	loc, ok := parseOpenPayload(data)
	if !ok {
		s.logger.Debugf("channel: empty open payload from %s", client)
		return
	}
	j := editor.ParseLocation(loc)
	s.logger.Infof("open-in-editor: %s:%s", j.File, j.Row)
	s.recordJump(j)
	select {
	case s.jumpCh <- j:
	default:
		s.metrics.incDropped()
		s.logger.Warn("jump queue full, dropping request")
	}
}

// parseOpenPayload accepts both a bare JSON string and a {"loc": ...} object.
func parseOpenPayload(data json.RawMessage) (string, bool) {
	var loc string
	if err := json.Unmarshal(data, &loc); err == nil && loc != "" {
		return loc, true
	}
	var obj struct {
		Loc string `json:"loc"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Loc != "" {
		return obj.Loc, true
	}
	return "", false
}

func (s *Server) recordJump(j editor.Jump) {
	entry := control.Jump{File: j.File, Row: j.Row, Timestamp: j.Timestamp}
	s.jumpsMu.Lock()
	defer s.jumpsMu.Unlock()
	s.jumps = append(s.jumps, entry)
	if tail := s.cfg.History.Tail; tail > 0 && len(s.jumps) > tail {
		s.jumps = s.jumps[len(s.jumps)-tail:]
	}
}

func (s *Server) copyJumps() []control.Jump {
	s.jumpsMu.Lock()
	defer s.jumpsMu.Unlock()
	out := make([]control.Jump, len(s.jumps))
	copy(out, s.jumps)
	return out
}

func (s *Server) controlLoop(ctx context.Context) {
	ln, err := net.Listen("unix", s.cfg.Paths.SocketPath)
	if err != nil {
		s.logger.Errorf("control listen: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("control accept: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control connection close: %v", err)
		}
	}()
	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	var req control.Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		return
	}
	switch req.Op {
	case "status":
		resp := control.Status{
			Running:   true,
			UptimeSec: time.Since(s.startedAt).Seconds(),
			Mode:      s.insp.Mode(),
			Addr:      s.cfg.Server.Addr,
			Jumps:     s.copyJumps(),
		}
		_ = json.NewEncoder(conn).Encode(resp)
	case "health":
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{OK: true, Message: "ok"})
	default:
		// ignore unknown
	}
}
