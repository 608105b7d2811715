// Package upperphylog provides the structured logging surface used
// throughout the uplink pipeline: a swappable package-level *zap.Logger
// accessor, mirroring caddy's logging.go Log() pattern, plus an Assert
// helper for invariant violations that should only ever fire in debug
// builds.
package upperphylog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   = mustNewProductionLogger()
)

func mustNewProductionLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		// No writable stderr at process start is unrecoverable; there is
		// nowhere else to report it.
		panic(err)
	}
	return logger
}

// Log returns the current package-level logger.
func Log() *zap.Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the package-level logger, returning the previous one
// so callers can restore it.
func SetLogger(l *zap.Logger) *zap.Logger {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	prev := defaultLogger
	defaultLogger = l
	return prev
}

// Assert logs a DPanic-level message if cond is false: it panics in
// development builds (zap.NewDevelopment) and merely logs in production,
// restricting invariant panics to debug builds.
func Assert(cond bool, msg string, fields ...zap.Field) {
	if cond {
		return
	}
	Log().DPanic(msg, fields...)
}
