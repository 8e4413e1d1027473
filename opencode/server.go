package opencode

import (
	"context"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/tbekken/ochat/errors"
	"go.uber.org/zap"
)

// serveExecutable is the binary launched for an owned server.
var serveExecutable = "opencode"

const (
	healthAttempts = 30
	healthInterval = 500 * time.Millisecond
	stopGrace      = 5 * time.Second
)

// Server owns a locally spawned `opencode serve` process.
type Server struct {
	port int
	cmd  *exec.Cmd
	log  *zap.Logger

	attempts int
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

// StartServer spawns `opencode serve --port N` with its output discarded.
// The caller must eventually call Shutdown.
func StartServer(port int, log *zap.Logger) (*Server, error) {
	cmd := exec.Command(serveExecutable, "serve", "--port", strconv.Itoa(port))
	// Stdout and Stderr stay nil so the child writes to /dev/null.
	if cmd.Err != nil {
		return nil, errors.Wrapf(cmd.Err, "'%s' command not found, is opencode installed?", serveExecutable)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "could not start the opencode server")
	}
	log.Debug("spawned opencode server", zap.Int("port", port), zap.Int("pid", cmd.Process.Pid))
	return &Server{
		port:     port,
		cmd:      cmd,
		log:      log,
		attempts: healthAttempts,
		interval: healthInterval,
	}, nil
}

// WaitReady polls the server until it answers the session probe or the
// attempts run out. Exhaustion leaves the process running; the caller
// decides whether to shut it down.
func (s *Server) WaitReady(ctx context.Context, client *Client) error {
	for i := 0; i < s.attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := client.ListSessions(pctx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}
	return errors.New("opencode server on port %d did not become ready", s.port)
}

// Shutdown stops the owned server: SIGTERM first, SIGKILL once the grace
// period runs out. Safe to call more than once and with no process running;
// failures are logged, not returned.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.stopped {
		return
	}
	s.stopped = true

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.log.Debug("terminate signal failed", zap.Error(err))
	}

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		s.log.Debug("opencode server exited", zap.Error(err))
	case <-time.After(stopGrace):
		s.log.Debug("opencode server ignored terminate, killing")
		if err := s.cmd.Process.Kill(); err != nil {
			s.log.Debug("kill failed", zap.Error(err))
		}
		<-done
	}
}
