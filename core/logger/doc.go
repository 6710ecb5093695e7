// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and helpers that attach the identifiers used to follow a
// single sync run through the logs.
//
// # Correlation
//
// WithRun attaches the run id generated by the run driver; WithBatch attaches a batch
// number and the correlation token dispatched to the editor for it. Every message logged
// while a batch is in flight carries both, so a stray completion signal can be traced
// back to the batch it claims to belong to.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithRun(log, runID)
//	l.Info("run started")
package logger
