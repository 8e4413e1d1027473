package chat

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
)

// Run drives the interactive loop until /quit, end of input, or an
// interrupt at the prompt. A non-empty initial message is processed as the
// first turn, and a failure there is fatal; failures on later turns are
// reported and the loop continues.
func (c *Chat) Run(ctx context.Context, in io.Reader, initial string) error {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	if initial = strings.TrimSpace(initial); initial != "" {
		c.renderer.Printf("%s %s", c.renderer.Bold("You:"), initial)
		if err := c.Send(ctx, initial, interrupts); err != nil {
			return err
		}
	}

	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go readLines(in, lines, stop)

	for {
		c.renderer.Prompt()
		select {
		case line, ok := <-lines:
			if !ok {
				// EOF or read error ends the session
				c.renderer.Printf("")
				c.renderer.Muted("Goodbye.")
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "/") {
				quit, err := c.Dispatch(ctx, line)
				if err != nil {
					return err
				}
				if quit {
					c.renderer.Muted("Goodbye.")
					return nil
				}
				continue
			}
			if err := c.Send(ctx, line, interrupts); err != nil {
				c.reportSendError(err)
			}
		case <-interrupts:
			c.renderer.Printf("")
			c.renderer.Muted("Goodbye.")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// readLines feeds input lines to the loop, closing the channel at EOF. The
// stop channel releases the goroutine when the loop returns first.
func readLines(in io.Reader, lines chan<- string, stop <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-stop:
			return
		}
	}
}
