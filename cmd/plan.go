package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"catalog-sync/core/reconcile"

	"github.com/spf13/cobra"
)

var (
	planLimit   int
	planJSON    bool
	planType    string
	planIgnored bool
)

// planCmd reads both catalogs and shows what a run would do.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show pending exports and updates without touching either application",
	Long: `Reads working copies of both catalogs, reconciles them and prints the summary and the
pending actions. Nothing is exported or imported.

Examples:
  # Summary and the first 50 actions
  catalog-sync plan

  # Only images edited since their import
  catalog-sync plan --type update

  # Also list library images with no editor counterpart
  catalog-sync plan --ignored

  # Every action as JSON
  catalog-sync plan --json`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().IntVar(&planLimit, "limit", 50, "Maximum number of actions to list (0 lists all)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")
	planCmd.Flags().StringVar(&planType, "type", "", "List only actions of this type (export or update)")
	planCmd.Flags().BoolVar(&planIgnored, "ignored", false, "List library images that have no editor counterpart")
	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	reader, err := a.reader()
	if err != nil {
		return err
	}

	plan, err := reconcile.ReconcileWithPlan(cmd.Context(), reader)
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	out := cmd.OutOrStdout()
	if planJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	actions, err := selectActions(plan, planType)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, renderPlanSummary(plan.Summary))
	if len(actions) > 0 {
		fmt.Fprintln(out, renderActions(actions, planLimit))
	}
	if planIgnored {
		if ignored := plan.Result.ByClass(reconcile.ClassDestOnly); len(ignored) > 0 {
			fmt.Fprintln(out, renderIgnored(ignored, planLimit))
		}
	}
	return nil
}

// selectActions returns the plan's actions, optionally restricted to one type.
func selectActions(plan *reconcile.Plan, actionType string) ([]reconcile.Action, error) {
	switch reconcile.ActionType(actionType) {
	case "":
		return plan.Actions, nil
	case reconcile.ActionExport, reconcile.ActionUpdate:
		return plan.ByType(reconcile.ActionType(actionType)), nil
	default:
		return nil, fmt.Errorf("unknown action type %q (want export or update)", actionType)
	}
}

func renderPlanSummary(s reconcile.PlanSummary) string {
	rows := [][]string{
		{"Source records", strconv.Itoa(s.SourceRecords)},
		{"Library records", strconv.Itoa(s.DestinationRecords)},
		{"Missing in library", strconv.Itoa(s.SourceOnly)},
		{"Edited since import", strconv.Itoa(s.Stale)},
		{"Unchanged", strconv.Itoa(s.Unchanged)},
		{"Library only (ignored)", strconv.Itoa(s.DestOnly)},
		{"Pending", strconv.Itoa(s.Pending())},
	}
	return renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

// renderActions lists up to limit actions; limit <= 0 lists all.
func renderActions(actions []reconcile.Action, limit int) string {
	shown := actions
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	rows := make([][]string, 0, len(shown)+1)
	for _, action := range shown {
		rows = append(rows, []string{string(action.Type), action.Key.String(), action.Reason})
	}
	if hidden := len(actions) - len(shown); hidden > 0 {
		rows = append(rows, []string{"", fmt.Sprintf("... %d more", hidden), ""})
	}
	return renderTable([]string{"Action", "Asset", "Reason"}, rows, nil)
}

// renderIgnored lists library-only assets; they are never touched by a run.
func renderIgnored(matches []reconcile.Match, limit int) string {
	shown := matches
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	rows := make([][]string, 0, len(shown)+1)
	for _, m := range shown {
		added := ""
		if m.Destination != nil && !m.Destination.AddedAt.IsZero() {
			added = m.Destination.AddedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{m.Key.String(), added})
	}
	if hidden := len(matches) - len(shown); hidden > 0 {
		rows = append(rows, []string{fmt.Sprintf("... %d more", hidden), ""})
	}
	return renderTable([]string{"Library only", "Imported"}, rows, nil)
}
