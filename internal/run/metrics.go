package run

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
)

type metrics struct {
	resolved atomic.Int64
	loaded   atomic.Int64
	injected atomic.Int64
	jumps    atomic.Int64
	dropped  atomic.Int64
}

func (m *metrics) reset() {
	m.resolved.Store(0)
	m.loaded.Store(0)
	m.injected.Store(0)
	m.jumps.Store(0)
	m.dropped.Store(0)
}

func (m *metrics) incResolved() { m.resolved.Add(1) }
func (m *metrics) incLoaded()   { m.loaded.Add(1) }
func (m *metrics) incInjected() { m.injected.Add(1) }
func (m *metrics) incJumps()    { m.jumps.Add(1) }
func (m *metrics) incDropped()  { m.dropped.Add(1) }

func (s *Server) metricsServe(ctxDone <-chan struct{}, addr string, logger interface {
	Infof(string, ...any)
	Warnf(string, ...any)
}) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "vinspect_virtual_resolved_total %d\n", s.metrics.resolved.Load())
		fmt.Fprintf(w, "vinspect_virtual_loaded_total %d\n", s.metrics.loaded.Load())
		fmt.Fprintf(w, "vinspect_injected_total %d\n", s.metrics.injected.Load())
		fmt.Fprintf(w, "vinspect_jumps_total %d\n", s.metrics.jumps.Load())
		fmt.Fprintf(w, "vinspect_jumps_dropped_total %d\n", s.metrics.dropped.Load())
	})
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		<-ctxDone
		_ = server.Close()
	}()
	logger.Infof("metrics listening on http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warnf("metrics server: %v", err)
	}
}
