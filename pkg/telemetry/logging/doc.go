// Package logging configures the process logger.
//
// Logs are written with log/slog in JSON or text form to stdout and,
// optionally, to a size-rotated file managed by lumberjack. When PII
// redaction is enabled every string attribute passes through a Redactor
// before it is formatted, so lead contact details (emails, phone numbers)
// and credentials never appear in clear text.
//
// # Usage
//
//	logger, closer, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	slog.SetDefault(logger)
//
// Request-scoped loggers pick up the request ID stored by the API
// middleware:
//
//	logging.FromContext(ctx, logger).Info("turn handled")
package logging
