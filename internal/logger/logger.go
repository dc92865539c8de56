// Package logger holds the process-wide structured logger the ingestion
// pipeline reports through, built on zap. Batch workers log with
// key-value context (accession, filer, dialect) via the sugared API.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init configures the global logger for the given environment. Production
// runs emit JSON for log shipping; any other environment gets the
// human-readable console encoder. Safe to call more than once; only the
// first call takes effect.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development
// logger if Init has not run yet.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Call before process exit so the final
// run summary is not lost.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
