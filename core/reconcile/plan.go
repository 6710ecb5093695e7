package reconcile

import (
	"context"
	"fmt"
	"time"
)

// ReconcileWithPlan loads both record sequences and returns a plan.
// It does NOT execute actions; the run driver batches and applies them.
func ReconcileWithPlan(ctx context.Context, loader Loader) (*Plan, error) {
	source, dest, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := Reconcile(source, dest)
	if err != nil {
		return nil, err
	}

	return BuildPlan(result), nil
}

// BuildPlan derives the pending actions and summary from a match result.
// Actions follow source order: export for source-only keys, update for stale matches.
func BuildPlan(result *MatchResult) *Plan {
	plan := &Plan{Result: result, Actions: []Action{}}

	for _, match := range result.Matches() {
		switch match.Class {
		case ClassSourceOnly:
			plan.Summary.SourceOnly++
			plan.Summary.SourceRecords++
			plan.Actions = append(plan.Actions, Action{
				Type:     ActionExport,
				Key:      match.Key,
				SourceID: match.Source.SourceID,
				Reason:   "missing in library",
			})
			plan.Summary.ExportActions++
		case ClassMatchedStale:
			plan.Summary.Stale++
			plan.Summary.SourceRecords++
			plan.Summary.DestinationRecords++
			plan.Actions = append(plan.Actions, Action{
				Type:     ActionUpdate,
				Key:      match.Key,
				SourceID: match.Source.SourceID,
				Reason:   staleReason(match),
			})
			plan.Summary.UpdateActions++
		case ClassMatchedUnchanged:
			plan.Summary.Unchanged++
			plan.Summary.SourceRecords++
			plan.Summary.DestinationRecords++
		case ClassDestOnly:
			plan.Summary.DestOnly++
			plan.Summary.DestinationRecords++
		}
	}

	return plan
}

// staleReason builds a reason string for why an asset should be re-exported.
func staleReason(match Match) string {
	return fmt.Sprintf("edited %s, imported %s",
		match.Source.LastModifiedAt.UTC().Format(time.RFC3339),
		match.Destination.AddedAt.UTC().Format(time.RFC3339))
}

// ByType returns the actions of one type in plan order.
func (p *Plan) ByType(actionType ActionType) []Action {
	var out []Action
	for _, action := range p.Actions {
		if action.Type == actionType {
			out = append(out, action)
		}
	}
	return out
}
