package opencode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EnvBaseURL names the environment variable holding an explicit server
// address. It outranks every other discovery candidate.
const EnvBaseURL = "OPENCODE_BASE_URL"

// DefaultPort is where `opencode serve` is started when no server is found.
const DefaultPort = 54321

// wellKnownPorts are probed on localhost during discovery, in order.
var wellKnownPorts = []int{DefaultPort, 4096, 3000, 8080}

// probeTimeout bounds a single discovery or health-poll probe.
const probeTimeout = 2 * time.Second

// ErrNoServer means no discovery candidate answered the probe.
var ErrNoServer = errors.New("no running opencode server found")

// Options configures Ensure.
type Options struct {
	// BaseURL is an explicit server address from config or flags, probed
	// after the environment override and before the well-known ports.
	BaseURL string
	// Port replaces the first well-known port and is where an owned server
	// is started. Zero means DefaultPort.
	Port int
	// Timeout bounds each request issued by the returned client.
	Timeout time.Duration
	// OnStatus, when set, receives user-facing progress lines.
	OnStatus func(msg string)
	Log      *zap.Logger
}

func (o Options) status(msg string) {
	if o.OnStatus != nil {
		o.OnStatus(msg)
	}
}

// Candidates returns the base URLs probed during discovery, highest
// priority first.
func Candidates(baseURL string, port int) []string {
	var urls []string
	if env := os.Getenv(EnvBaseURL); env != "" {
		urls = append(urls, strings.TrimRight(env, "/"))
	}
	if baseURL != "" {
		urls = append(urls, strings.TrimRight(baseURL, "/"))
	}
	ports := make([]int, len(wellKnownPorts))
	copy(ports, wellKnownPorts)
	if port > 0 {
		ports[0] = port
	}
	for _, p := range ports {
		urls = append(urls, fmt.Sprintf("http://127.0.0.1:%d", p))
	}
	return urls
}

// Discover probes the candidates in order and returns a client for the
// first server that answers. Unreachable candidates are skipped without
// retries.
func Discover(ctx context.Context, candidates []string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	for _, base := range candidates {
		client := NewClient(base, timeout, log)
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := client.ListSessions(pctx)
		cancel()
		if err == nil {
			log.Debug("found running server", zap.String("url", base))
			return client, nil
		}
		log.Debug("candidate not reachable", zap.String("url", base), zap.Error(err))
	}
	return nil, ErrNoServer
}

// Ensure returns a client for a running server, starting one when no
// candidate answers. The returned Server is non-nil only when this process
// spawned it and therefore owns its shutdown.
func Ensure(ctx context.Context, opts Options) (*Client, *Server, error) {
	client, err := Discover(ctx, Candidates(opts.BaseURL, opts.Port), opts.Timeout, opts.Log)
	if err == nil {
		opts.status(fmt.Sprintf("Connected to opencode server at %s", client.BaseURL()))
		return client, nil, nil
	}

	port := opts.Port
	if port <= 0 {
		port = DefaultPort
	}
	opts.status(fmt.Sprintf("No running opencode server found. Starting one on port %d...", port))
	srv, err := StartServer(port, opts.Log)
	if err != nil {
		return nil, nil, err
	}

	client = NewClient(fmt.Sprintf("http://127.0.0.1:%d", port), opts.Timeout, opts.Log)
	if err := srv.WaitReady(ctx, client); err != nil {
		srv.Shutdown()
		return nil, nil, err
	}
	opts.status(fmt.Sprintf("Started opencode server on port %d", port))
	return client, srv, nil
}
