// Package server assembles the fluxstreams HTTP API.
//
// The server ties the handlers and middleware of pkg/api to a
// conversation handler, the per-client rate limiter, metrics, tracing and
// readiness checks, and manages the listener's lifecycle.
//
//	srv := server.New(cfg, server.Deps{
//	    Turns:   turnHandler,
//	    Limiter: limits.NewManager(cfg.Limits),
//	    Metrics: collector,
//	    Tracer:  tracer,
//	    Health:  checker,
//	    Logger:  logger,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout. In-flight turns finish, including any
// lead delivery they started.
package server
