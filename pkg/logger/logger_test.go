package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "production").Info("hello", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestNewLocalLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "local").Debug("details")

	assert.Contains(t, buf.String(), "msg=details")
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))
}

func TestWithCtxReturnsInjected(t *testing.T) {
	var buf bytes.Buffer
	reqLog := New(&buf, "local").With("request_id", "abc")
	ctx := InjectLogger(context.Background(), reqLog)

	WithCtx(ctx).Info("tagged")
	assert.Contains(t, buf.String(), "request_id=abc")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)

	slog.New(h).With("request_id", "r1").Info("fan")

	require.Contains(t, a.String(), "msg=fan")
	assert.Contains(t, a.String(), "request_id=r1")
	assert.Contains(t, b.String(), `"msg":"fan"`)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LevelFor(200))
	assert.Equal(t, slog.LevelWarn, LevelFor(404))
	assert.Equal(t, slog.LevelError, LevelFor(502))
}
