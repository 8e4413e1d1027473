// Package chat provides the interactive conversation loop for ochat.
//
// This package owns the two pieces of client-side state the rest of the
// program revolves around: the current server session and the active
// provider/model selection. Everything else (the transcript, the model
// catalog, tool activity) lives on the server and is fetched on demand.
//
// # Architecture
//
// The package is organized around three files:
//
//   - chat.go: the Chat type, session creation, and the send path with its
//     interrupt handling
//   - commands.go: the slash-command dispatcher and the individual command
//     handlers
//   - repl.go: the read-eval-print loop wiring input lines and SIGINT into
//     the Chat
//
// # The send path
//
// Send posts the user's message and then fetches the session transcript to
// render the newest assistant message; responses are not streamed. The
// request runs in its own goroutine so the loop can race it against an
// interrupt:
//
//   - the request finishes first: its error (if any) is returned for the
//     loop to report, otherwise the reply is rendered
//   - an interrupt wins: the request context is cancelled, the goroutine is
//     joined, one best-effort abort is sent, and the partial reply is
//     rendered
//
// Either way exactly one render happens and the loop regains control.
//
// # Commands
//
// Input starting with "/" is a command; the keyword is matched
// case-insensitively while argument text keeps its case. Unknown commands
// report an error and point at /help. Every command failure is printed and
// the loop continues, with one exception: a failed session creation (at
// startup or via /new) ends the program, because without a session there is
// nothing to chat in.
//
// # Usage
//
//	c := chat.New(client, renderer, selection, registry, timeout, logger)
//	if err := c.StartSession(ctx); err != nil {
//	    // fatal: no session
//	}
//	err := c.Run(ctx, os.Stdin, "")
package chat
