package run

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Infof(format string, args ...any) {}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.warns))
	copy(out, l.warns)
	return out
}

func TestMetricsServeShutsDownQuietly(t *testing.T) {
	cfg := testConfig(t)
	srv := newServer(cfg, testLogger())

	done := make(chan struct{})
	log := &recordingLogger{}
	finished := make(chan struct{})
	go func() {
		srv.metricsServe(done, "127.0.0.1:0", log)
		close(finished)
	}()

	time.Sleep(100 * time.Millisecond)
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("metrics server did not stop")
	}
	if warns := log.warnings(); len(warns) != 0 {
		t.Fatalf("graceful close should not warn: %v", warns)
	}
}
