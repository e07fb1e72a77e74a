// Package requestid tags every request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID header from the client or
// generates a UUID, stores it in the request context and echoes it back.
// LoggerExtractor plugs the id into pkg/logger, so every log line and audit
// event written while serving the request carries it.
package requestid
