package loopkit

import (
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// activeLogger is the package-wide logger used to report UserHandlerFault
// and dropped-message events. log/slog fills the same structured-record
// role as ergo-services-ergo/gen/default_logger.go's MessageLog; see
// DESIGN.md for why no ecosystem structured logger is wired here.
var activeLogger atomic.Pointer[slog.Logger]

func init() {
	SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// SetLogger replaces the package-wide logger. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	activeLogger.Store(l)
}

func logger() *slog.Logger { return activeLogger.Load() }

func levelFromString(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a *slog.Logger whose level is derived from cfg.LogLevel.
func NewLogger(cfg Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelFromString(cfg.LogLevel)}))
}

func logUserHandlerFault(l *Looper, msg *Message, recovered any) {
	logger().Error("handler fault recovered",
		"component", "looper",
		"looper_id", l.id.String(),
		"thread_id", l.ThreadID(),
		"code", msg.Code,
		"panic", recovered,
		"stack", string(debug.Stack()),
	)
}

func logDroppedMessage(l *Looper, msg *Message) {
	logger().Warn("dropped message with no live target",
		"component", "looper",
		"looper_id", l.id.String(),
		"code", msg.Code,
	)
}
