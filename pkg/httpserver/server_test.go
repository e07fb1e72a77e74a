package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/httpserver"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	hookCalled := make(chan struct{})
	srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second},
		httpserver.WithShutdownHook(func(context.Context) error {
			close(hookCalled)
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}))
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	<-hookCalled
}

func TestServer_HookError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second},
		httpserver.WithShutdownHook(func(context.Context) error { return errors.New("boom") }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = srv.Serve(ctx, ln, http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrShutdown)
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	httpserver.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())

	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("db down") }

	w = httptest.NewRecorder()
	httpserver.ReadinessHandler(logger.Discard(), ok)(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	httpserver.ReadinessHandler(logger.Discard(), ok, fail)(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "NOT_READY", w.Body.String())
}
