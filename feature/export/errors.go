package export

import (
	"fmt"
	"strings"
	"time"
)

// CorrelationError reports a completion signal that does not belong to the dispatched batch.
// Something else drove the editor during the run, so no output of the run can be trusted.
type CorrelationError struct {
	BatchID  int
	Expected string
	Actual   string
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("batch %d: completion token %q does not match dispatched token %q", e.BatchID, e.Actual, e.Expected)
}

// PartialBatchError reports that the editor rendered fewer files than dispatched.
type PartialBatchError struct {
	BatchID  int
	Expected int
	Actual   int
	Missing  []string
}

func (e *PartialBatchError) Error() string {
	msg := fmt.Sprintf("batch %d: expected %d rendered files, found %d", e.BatchID, e.Expected, e.Actual)
	if len(e.Missing) > 0 {
		msg += " (missing: " + strings.Join(e.Missing, ", ") + ")"
	}
	return msg
}

// ExportTimeoutError reports that no completion signal arrived in time.
type ExportTimeoutError struct {
	BatchID    int
	Timeout    time.Duration
	ScratchDir string
}

func (e *ExportTimeoutError) Error() string {
	return fmt.Sprintf("batch %d: no completion signal within %s", e.BatchID, e.Timeout)
}
