package logger

import (
	"context"
	"fmt"
	"time"
)

// StoreOperation logs the outcome of a store command. Failures are logged
// at error level; successes and misses at debug level.
func (l *Logger) StoreOperation(ctx context.Context, operation, key string, duration time.Duration, err error, args ...any) {
	attrs := []any{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}
	if key != "" {
		attrs = append(attrs, "key", key)
	}
	attrs = append(attrs, args...)

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		l.ErrorContext(ctx, "Store operation failed", attrs...)
		return
	}
	l.DebugContext(ctx, "Store operation", attrs...)
}

// StartupInfo logs the application start
func (l *Logger) StartupInfo(appName, version, address string) {
	l.Info("Application starting",
		"app", appName,
		"version", version,
		"address", address,
	)
}

// ShutdownInfo logs the application stop
func (l *Logger) ShutdownInfo(appName string, duration time.Duration) {
	l.Info("Application shutdown",
		"app", appName,
		"shutdown_duration_ms", duration.Milliseconds(),
	)
}

// Recovery logs a recovered panic
func (l *Logger) Recovery(ctx context.Context, r any, stack []byte) {
	l.ErrorContext(ctx, "Panic recovered",
		"panic", fmt.Sprintf("%v", r),
		"stack", string(stack),
	)
}
