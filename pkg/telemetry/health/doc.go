// Package health aggregates component checks into a readiness report.
//
// Liveness is served by the API's own /api/health route. This package
// backs /api/ready, which runs every registered check concurrently with a
// per-check timeout, and /api/version.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("provider", func(ctx context.Context) error {
//	    if !gen.Health().IsHealthy {
//	        return errors.New("provider unhealthy")
//	    }
//	    return nil
//	})
//	mux.Handle("GET /api/ready", checker.ReadinessHandler())
//
// A failing check marks the service "degraded" and the endpoint answers
// 503, so load balancers stop routing chat traffic while the model backend
// is failing.
package health
