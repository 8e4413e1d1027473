package opencode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startTestServer launches a long-lived stand-in process via the serve
// executable override.
func startTestServer(t *testing.T, executable string) (*Server, error) {
	t.Helper()
	orig := serveExecutable
	serveExecutable = executable
	t.Cleanup(func() { serveExecutable = orig })
	return StartServer(60123, zap.NewNop())
}

func TestStartServerMissingExecutable(t *testing.T) {
	_, err := startTestServer(t, "ochat-test-no-such-binary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestShutdownTerminatesOwnedProcess(t *testing.T) {
	// `yes` ignores its arguments and runs until signalled; output goes to
	// the discarded stdio just like a real server.
	srv, err := startTestServer(t, "yes")
	require.NoError(t, err)

	start := time.Now()
	srv.Shutdown()
	assert.Less(t, time.Since(start), stopGrace, "SIGTERM should beat the kill grace period")
	assert.True(t, srv.stopped)
}

func TestShutdownIdempotent(t *testing.T) {
	srv, err := startTestServer(t, "yes")
	require.NoError(t, err)

	srv.Shutdown()
	srv.Shutdown()
	srv.Shutdown()
	assert.True(t, srv.stopped)
}

func TestShutdownWithoutProcess(t *testing.T) {
	var srv Server
	srv.Shutdown() // must not panic
}

func TestShutdownAfterProcessExit(t *testing.T) {
	// `true` exits immediately, so Shutdown signals a finished process.
	srv, err := startTestServer(t, "true")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	srv.Shutdown()
	srv.Shutdown()
}

func TestWaitReadyStopsAfterConfiguredAttempts(t *testing.T) {
	var probes atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	srv := &Server{port: 60123, log: zap.NewNop(), attempts: 3, interval: time.Millisecond}
	client := NewClient(down.URL, time.Second, zap.NewNop())

	err := srv.WaitReady(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not become ready")
	assert.Equal(t, int32(3), probes.Load())
}

func TestWaitReadySucceedsOnceHealthy(t *testing.T) {
	var probes atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probes.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer flaky.Close()

	srv := &Server{port: 60123, log: zap.NewNop(), attempts: 10, interval: time.Millisecond}
	client := NewClient(flaky.URL, time.Second, zap.NewNop())

	require.NoError(t, srv.WaitReady(context.Background(), client))
	assert.Equal(t, int32(3), probes.Load())
}

func TestWaitReadyHonorsContext(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := &Server{port: 60123, log: zap.NewNop(), attempts: 100, interval: time.Hour}
	client := NewClient(down.URL, time.Second, zap.NewNop())

	err := srv.WaitReady(ctx, client)
	assert.ErrorIs(t, err, context.Canceled)
}
