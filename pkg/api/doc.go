// Package api maps HTTP requests onto conversation turns.
//
// Routes:
//
//	POST /api/chatbot           {message, conversation_history} -> {response}
//	GET  /api/chatbot/greeting  -> {greeting}
//	GET  /api/health            -> {status, message}
//	GET  /api/ready             readiness report (503 when degraded)
//	GET  /api/version           build information
//
// Every error body has the shape {"error": "..."}. Malformed input is a
// 400 with a fixed message; generation failures are a 500 carrying the
// configured apology so the widget can show it verbatim.
//
// The handlers live in the handlers subpackage and the cross-cutting HTTP
// concerns (request IDs, CORS, rate limits, logging, recovery, tracing) in
// middleware.
package api
