package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbekken/ochat/opencode"
)

func TestRunSendsPlainLines(t *testing.T) {
	fake := &fakeService{messages: []opencode.Message{assistantText("hi there")}}
	c, buf := newTestChat(t, fake)

	err := c.Run(context.Background(), strings.NewReader("hello agent\n/quit\n"), "")
	require.NoError(t, err)

	assert.Equal(t, "hello agent", fake.lastText)
	assert.Contains(t, buf.String(), "hi there")
	assert.Contains(t, buf.String(), "Goodbye.")
}

func TestRunSkipsEmptyLines(t *testing.T) {
	fake := &fakeService{}
	c, _ := newTestChat(t, fake)

	err := c.Run(context.Background(), strings.NewReader("\n   \t\nreal input\n/quit\n"), "")
	require.NoError(t, err)

	chats, _, _ := fake.stats()
	assert.Equal(t, 1, chats, "blank lines never reach the server")
	assert.Equal(t, "real input", fake.lastText)
}

func TestRunEndsAtEOF(t *testing.T) {
	c, buf := newTestChat(t, &fakeService{})

	err := c.Run(context.Background(), strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Goodbye.")
}

func TestRunInitialMessageGoesFirst(t *testing.T) {
	fake := &fakeService{messages: []opencode.Message{assistantText("opening reply")}}
	c, buf := newTestChat(t, fake)

	err := c.Run(context.Background(), strings.NewReader("/quit\n"), "  opening move  ")
	require.NoError(t, err)

	assert.Equal(t, "opening move", fake.lastText)
	assert.Contains(t, buf.String(), "You:")
	assert.Contains(t, buf.String(), "opening move")
	assert.Contains(t, buf.String(), "opening reply")
}

func TestRunInitialMessageFailureIsFatal(t *testing.T) {
	fake := &fakeService{chatErr: &opencode.APIError{StatusCode: 401, Message: "no key"}}
	c, _ := newTestChat(t, fake)

	err := c.Run(context.Background(), strings.NewReader("more input\n"), "hello")
	require.Error(t, err)
	apiErr, ok := opencode.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)

	_, fetches, _ := fake.stats()
	assert.Equal(t, 0, fetches)
}

func TestRunReportsSendFailuresAndContinues(t *testing.T) {
	fake := &fakeService{chatErr: fmt.Errorf("transient")}
	c, buf := newTestChat(t, fake)

	err := c.Run(context.Background(), strings.NewReader("doomed\n/quit\n"), "")
	require.NoError(t, err, "a failed turn does not end the loop")
	assert.Contains(t, buf.String(), "could not send the message: transient")
	assert.Contains(t, buf.String(), "Goodbye.")
}

func TestRunUnknownCommandContinues(t *testing.T) {
	c, buf := newTestChat(t, &fakeService{})

	err := c.Run(context.Background(), strings.NewReader("/bogus\n/quit\n"), "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unknown command: /bogus")
	assert.Contains(t, buf.String(), "Goodbye.")
}

func TestRunFatalDispatchUnwinds(t *testing.T) {
	fake := &fakeService{}
	c, _ := newTestChat(t, fake)
	fake.createErr = fmt.Errorf("session store gone")

	err := c.Run(context.Background(), strings.NewReader("/new\nnever reached\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not create a session")

	chats, _, _ := fake.stats()
	assert.Equal(t, 0, chats, "the loop stops before later input")
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := newTestChat(t, &fakeService{})

	// An idle reader keeps the loop parked on the select until the
	// cancelled context ends it.
	in := &idleReader{release: make(chan struct{})}
	t.Cleanup(func() { close(in.release) })

	err := c.Run(ctx, in, "")
	require.NoError(t, err)
}

// idleReader blocks until released, standing in for a quiet terminal.
type idleReader struct{ release chan struct{} }

func (r *idleReader) Read(p []byte) (int, error) {
	<-r.release
	return 0, io.EOF
}
