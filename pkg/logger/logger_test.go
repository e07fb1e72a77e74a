package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

func TestSessionID(t *testing.T) {
	t.Parallel()

	token := "Zm9vYmFyYmF6cXV4LXNlc3Npb24tdG9rZW4tdmFsdWU"
	attr := logger.SessionID(token)

	require.Equal(t, "session_id", attr.Key)
	assert.Equal(t, "Zm9vYmFy…", attr.Value.String())
	assert.NotContains(t, attr.Value.String(), token[8:])
}

func TestRedactToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", logger.RedactToken(""))
	assert.Equal(t, "***", logger.RedactToken("short"))
	assert.Equal(t, "abcdefgh…", logger.RedactToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	attr := logger.Errors(errors.New("a"), nil, errors.New("b"))
	require.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)
	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestNew_EnvironmentAndExtractors(t *testing.T) {
	t.Parallel()

	type key struct{}
	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithEnvironment("production", "sessionguard"),
		logger.WithOutput(buf),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(key{}).(string)
			return slog.String("request_id", v), ok
		}),
	)

	ctx := context.WithValue(context.Background(), key{}, "req-1")
	log.DebugContext(ctx, "hidden")
	log.InfoContext(ctx, "session created", logger.Outcome("valid"), logger.IP("192.0.2.1"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "session created", rec["msg"])
	assert.Equal(t, "sessionguard", rec["service"])
	assert.Equal(t, "production", rec["env"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "valid", rec["outcome"])
	assert.Equal(t, "192.0.2.1", rec["ip"])
}

func TestNew_Development(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(logger.WithEnvironment("dev", "svc"), logger.WithOutput(buf))
	log.Debug("msg")

	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "service=svc")
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
}
