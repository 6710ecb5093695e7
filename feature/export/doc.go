// Package export renders batches through the editing application.
//
// The editor has no synchronous completion signal. For each batch the coordinator
// installs a completion hook that writes the batch's correlation token into a sentinel
// file, triggers the export and waits on an fsnotify watch of the sentinel. The hook is
// cleared again on every exit path.
//
// Outcomes are verified twice: the sentinel token must match the dispatched token
// (CorrelationError otherwise) and every dispatched asset must have a rendered file
// (PartialBatchError otherwise). A missing signal ends with ExportTimeoutError.
package export
