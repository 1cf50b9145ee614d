//go:build debug

package logger

import (
	"context"
	"log/slog"
)

// Usage:
//
// logger.DebugLazy(ctx, "scoring ticker", func() []slog.Attr {
// 	return []slog.Attr{
// 		slog.String("ticker", t),
// 		slog.Float64("composite", expensiveComposite()),
// 	}
// })

func DebugLazy(ctx context.Context, msg string, build func() []slog.Attr) {
	l := slog.Default()
	if l.Enabled(ctx, slog.LevelDebug) {
		l.LogAttrs(ctx, slog.LevelDebug, msg, build()...)
	}
}
