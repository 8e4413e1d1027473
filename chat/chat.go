package chat

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tbekken/ochat/errors"
	"github.com/tbekken/ochat/models"
	"github.com/tbekken/ochat/opencode"
	"github.com/tbekken/ochat/render"
)

// Service is the server surface the chat loop depends on.
type Service interface {
	ListSessions(ctx context.Context) ([]opencode.Session, error)
	CreateSession(ctx context.Context, title string) (*opencode.Session, error)
	Chat(ctx context.Context, sessionID, providerID, modelID, text string) error
	Messages(ctx context.Context, sessionID string) ([]opencode.Message, error)
	Abort(ctx context.Context, sessionID string) error
	Providers(ctx context.Context) (*opencode.Catalog, error)
}

var _ Service = (*opencode.Client)(nil)

// abortTimeout bounds the opportunistic abort fired after an interrupt and
// the /abort command.
const abortTimeout = 5 * time.Second

// Chat owns the interactive conversation state: the current session and
// the active model selection.
type Chat struct {
	service  Service
	renderer *render.Renderer
	log      *zap.Logger

	session  *opencode.Session
	model    models.Selection
	registry *models.Registry // nil when the catalog was unavailable
	timeout  time.Duration
}

// New assembles a Chat around an existing connection. The selection is
// taken as-is; callers decide how much validation it got.
func New(service Service, renderer *render.Renderer, sel models.Selection, registry *models.Registry, timeout time.Duration, log *zap.Logger) *Chat {
	return &Chat{
		service:  service,
		renderer: renderer,
		log:      log,
		model:    sel,
		registry: registry,
		timeout:  timeout,
	}
}

// Model returns the active selection.
func (c *Chat) Model() models.Selection {
	return c.model
}

// Session returns the current session, nil before StartSession.
func (c *Chat) Session() *opencode.Session {
	return c.session
}

// StartSession creates the conversation thread everything else runs in.
// Without one the client is useless, so callers treat a failure as fatal.
func (c *Chat) StartSession(ctx context.Context) error {
	sess, err := c.service.CreateSession(ctx, "ochat-"+uuid.NewString()[:8])
	if err != nil {
		return errors.Wrapf(err, "could not create a session")
	}
	c.session = sess
	c.log.Info("session created", zap.String("session", sess.ID))
	return nil
}

// Send posts one user message and renders the reply. An interrupt arriving
// mid-request cancels it, fires one best-effort abort, and renders whatever
// partial answer the server kept; Send still returns nil in that case. The
// returned error is the raw send failure, left to the caller to report.
func (c *Chat) Send(ctx context.Context, text string, interrupt <-chan os.Signal) error {
	c.renderer.Muted("Thinking...")

	sctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.service.Chat(sctx, c.session.ID, c.model.Provider, c.model.Model, text)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-interrupt:
		c.renderer.Warn("interrupted, aborting the response")
		cancel()
		<-done
		c.abortQuietly()
	}

	c.renderLast(ctx)
	return nil
}

// reportSendError prints a send failure by class; the loop carries on
// regardless.
func (c *Chat) reportSendError(err error) {
	if apiErr, ok := opencode.AsAPIError(err); ok {
		c.renderer.Errorf("the server rejected the message (%d): %s", apiErr.StatusCode, apiErr.Message)
		return
	}
	if opencode.IsConnection(err) {
		c.renderer.Errorf("lost the connection to the server: %v", err)
		return
	}
	c.renderer.Errorf("could not send the message: %v", err)
}

// abortQuietly fires one abort for the in-flight response. Failures are
// logged only; the partial render happens regardless.
func (c *Chat) abortQuietly() {
	actx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()
	if err := c.service.Abort(actx, c.session.ID); err != nil {
		c.log.Debug("abort request failed", zap.Error(err))
	}
}

// renderLast fetches the session transcript and renders its newest
// assistant message.
func (c *Chat) renderLast(ctx context.Context) {
	msgs, err := c.service.Messages(ctx, c.session.ID)
	if err != nil {
		c.renderer.Errorf("could not fetch the response: %v", err)
		return
	}
	var last *opencode.Message
	for i := range msgs {
		if msgs[i].Info.Role == "assistant" {
			last = &msgs[i]
		}
	}
	if last == nil {
		c.renderer.Muted("(no response)")
		return
	}
	c.renderer.Message(last)
}
