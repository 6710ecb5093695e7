package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"catalog-sync/core/ratelimit"
	"catalog-sync/core/script"
	"catalog-sync/core/storage"
	"catalog-sync/feature/archive"
	"catalog-sync/feature/export"
	"catalog-sync/feature/importer"
	"catalog-sync/feature/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runJSON bool

// runCmd performs one synchronization run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Export pending images from the editor and import them into the library",
	Long: `Performs one full run: reads both catalogs, reconciles them, then exports and imports
the pending images in batches. Batches that cannot be verified are reported as degraded
and retried by the next run. The command fails only when the run aborts.`,
	RunE: runSync,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the run report as JSON")
	RootCmd.AddCommand(runCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	lock, err := a.ws.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()
	a.logger.Debug("Run lock acquired", zap.String("path", lock.Path()))

	driver, err := newDriver(a)
	if err != nil {
		return err
	}

	res := driver.Run(cmd.Context())

	if path, err := pipeline.WriteReport(filepath.Join(a.ws.Dir, "reports"), res); err != nil {
		a.logger.Warn("Failed to write run report", zap.Error(err))
	} else {
		a.logger.Info("Run report written", zap.String("path", path))
	}

	out := cmd.OutOrStdout()
	if runJSON {
		data, err := res.MarshalReport()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintln(out, renderRunResult(res))
	}

	if res.Aborted() {
		return fmt.Errorf("run %s aborted: %w", res.RunID, res.Err)
	}
	return nil
}

// newDriver wires the catalog reader, both application clients and the optional archive.
func newDriver(a *app) (*pipeline.Driver, error) {
	cfg := a.cfg

	reader, err := a.reader()
	if err != nil {
		return nil, err
	}

	// One limiter paces both applications.
	limiter, err := ratelimit.New(cfg.Sync.RequestsPerMinute)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Request pacing", zap.Duration("interval", limiter.Interval()))
	editor, err := script.New("editor", cfg.Editor.Bridge, script.WithLimiter(limiter))
	if err != nil {
		return nil, err
	}
	library, err := script.New("library", cfg.Library.Osascript, script.WithLimiter(limiter))
	if err != nil {
		return nil, err
	}

	exporter := export.NewCoordinator(export.NewBridge(editor), a.ws, cfg.Editor.ExportProfile, cfg.Sync.ExportTimeout(), a.logger)
	imp := importer.NewCoordinator(importer.NewScriptLibrary(library), cfg.Library.RootFolder, a.logger)

	opts := []pipeline.Option{
		pipeline.WithBatchSize(cfg.Sync.BatchSize),
		pipeline.WithKeepScratch(cfg.Workspace.KeepScratch),
	}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		opts = append(opts, pipeline.WithArchiver(archive.New(client, cfg.Storage, a.logger)))
	}

	return pipeline.NewDriver(reader, exporter, imp, a.logger, opts...), nil
}

func renderRunResult(res *pipeline.Result) string {
	rows := [][]string{
		{"Run", res.RunID},
		{"State", string(res.State)},
		{"Pending", strconv.Itoa(res.Summary.Pending())},
		{"Batches", strconv.Itoa(res.Batches)},
		{"Imported", strconv.Itoa(res.Imported)},
		{"Degraded batches", strconv.Itoa(len(res.Degraded))},
		{"Duration", res.Duration().Round(time.Millisecond).String()},
	}
	if res.Error != "" {
		rows = append(rows, []string{"Error", res.Error})
	}
	summary := renderTable([]string{"Run", ""}, rows, nil)
	if len(res.Degraded) == 0 {
		return summary
	}

	degraded := make([][]string, 0, len(res.Degraded))
	for _, d := range res.Degraded {
		degraded = append(degraded, []string{strconv.Itoa(d.BatchID), strconv.Itoa(len(d.Keys)), d.Reason})
	}
	return summary + "\n" + renderTable([]string{"Batch", "Items", "Reason"}, degraded, []columnAlignment{alignRight, alignRight, alignLeft})
}
