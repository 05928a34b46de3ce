// Package server exposes a demo.Lab over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/pages
//	GET  /api/pages/{section}/{page}
//	POST /api/pages/{section}/{page}/actions/{action}   {"arg": "..."}
//	GET  /api/pages/{section}/{page}/events?since=N
//	GET  /metrics
//	GET  /ws/atoms
//
// Failed requests answer with {"error": ..., "code": ...}, where code is an
// internal/errors code: unknown pages are 404, unknown actions and bad
// arguments 400, scope violations 409.
//
// /ws/atoms streams every atom write of the lab's store as a JSON message:
//
//	{"type": "atom", "atom": "counterAtom", "value": 1, "version": 7}
//
// The first message on a connection is {"type": "hello", "client": <id>}.
package server
