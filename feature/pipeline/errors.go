package pipeline

import (
	"errors"

	"catalog-sync/core/script"
	"catalog-sync/feature/export"
)

// IsDegraded reports whether err only affects the batch it came from.
// Partial renders, export timeouts and failed application commands qualify.
// Everything else, including cancellation, aborts the run.
func IsDegraded(err error) bool {
	var (
		partial *export.PartialBatchError
		timeout *export.ExportTimeoutError
	)
	switch {
	case errors.As(err, &partial), errors.As(err, &timeout):
		return true
	case script.IsCommandError(err):
		return true
	default:
		return false
	}
}

// scratchOf returns the scratch directory a failed batch left behind, if known.
func scratchOf(outcome *export.BatchOutcome, err error) string {
	if outcome != nil {
		return outcome.ScratchDir
	}
	var timeout *export.ExportTimeoutError
	if errors.As(err, &timeout) {
		return timeout.ScratchDir
	}
	return ""
}
