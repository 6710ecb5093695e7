// Package pipeline drives one synchronization run.
//
// A run moves through Idle, Reading, Reconciling and BatchLoop and ends in Done or
// Aborted. Pending assets are batched and each batch is exported and imported in turn.
// A batch that fails locally is recorded as degraded and the loop moves on; the next run
// retries it through reconciliation. Errors that make the run's view of either catalog
// untrustworthy abort it.
package pipeline
