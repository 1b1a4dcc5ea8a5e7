// Package conversation runs a single chat turn.
//
// A turn sends the system prompt, the caller-supplied history and the new
// user message to a providers.Generator, shows the user the text that
// precedes the lead marker, and hands any captured lead to a Deliverer.
// The handler keeps no state between turns: callers resend the full
// history every time.
//
// Failures are split by who sees them. Malformed input is an
// ErrInvalidInput, a failed generation is an *UpstreamError, and both are
// returned to the caller. Degraded lead parses and failed deliveries are
// only logged and counted; the user still gets their reply.
package conversation
