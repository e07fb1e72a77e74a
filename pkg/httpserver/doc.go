// Package httpserver runs an http.Server until its context is cancelled and
// then shuts it down gracefully, running registered shutdown hooks (closing
// the session manager, pools) afterwards. It also provides liveness and
// readiness handlers.
package httpserver
