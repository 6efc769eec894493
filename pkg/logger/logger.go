// Package logger wraps log/slog with the process-wide logger and a
// per-request variant carried in the context.
//
//	log := logger.WithCtx(r.Context())
//	log.Info("review created", "review_id", id)
//	// → time=... level=INFO msg="review created" request_id=5f0c... review_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/crowdfork/crowdfork/config"
)

var (
	L *slog.Logger

	sinkMu sync.Mutex
	sink   *MongoHandler
)

func init() {
	L = New(os.Stdout, config.AppEnv())
	slog.SetDefault(L)
}

// New builds a logger for env: JSON at INFO in production, text at DEBUG
// everywhere else.
func New(w io.Writer, env string) *slog.Logger {
	if env == "production" || env == "prod" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// AttachMongo fans every record out to a MongoDB collection in addition to
// stdout. The sink is flushed by Shutdown.
func AttachMongo(uri, db string) error {
	h, err := NewMongoHandler(uri, db, "logs")
	if err != nil {
		return err
	}

	sinkMu.Lock()
	sink = h
	sinkMu.Unlock()

	L = slog.New(NewMultiHandler(L.Handler(), h))
	slog.SetDefault(L)
	return nil
}

// Shutdown flushes the MongoDB sink if one is attached.
func Shutdown() {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink != nil {
		sink.Close()
		sink = nil
	}
}

type ctxKey struct{}

// WithCtx returns the request logger stored by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. The request logger middleware calls it.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor picks the access-log level for an HTTP status.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
