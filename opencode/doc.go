// Package opencode implements the client side of the opencode server's REST
// API, plus the lifecycle plumbing around it: discovering an already running
// server, spawning one when none is reachable, and shutting an owned server
// down again.
//
// The package talks to the following endpoints:
//   - GET /session: list sessions (also used as the reachability probe)
//   - POST /session: create a session
//   - POST /session/{id}/message: send a user message
//   - GET /session/{id}/message: fetch a session's messages
//   - POST /session/{id}/abort: abort an in-flight response
//   - GET /config/providers: fetch the provider/model catalog
//
// Ensure is the usual entry point: it probes the discovery candidates in
// priority order and, when nothing answers, starts `opencode serve` itself
// and polls it until it is ready.
package opencode
