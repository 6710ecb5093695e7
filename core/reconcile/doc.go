// Package reconcile joins the source and destination catalogs on a natural key and
// plans the work needed to bring the destination up to date.
//
// The join is a pure function of its inputs: running it twice on identical catalog
// snapshots yields identical results, which is what makes repeated runs safe.
//
// # Classification
//
// Every key seen in either catalog gets exactly one classification:
//
//   - source_only: never imported, planned as an export action
//   - matched_stale: edited after import, planned as an update action
//   - matched_unchanged: current, no action
//   - dest_only: library asset with no source counterpart, never acted upon
//
// A match is stale only when both timestamps are present and the edit is newer than the
// import. Missing timestamps never trigger a re-export.
//
// Two source records sharing a key abort with DuplicateKeyError. Several destination
// records sharing a key collapse to the most recently added one.
//
// # Usage Example
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, reader)
//	if err != nil {
//	    return err
//	}
//	for _, action := range plan.Actions {
//	    fmt.Println(action.Type, action.Key)
//	}
package reconcile
