package pipeline

import (
	"context"
	"os"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/feature/batch"
	"catalog-sync/feature/export"
	"catalog-sync/feature/importer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Exporter renders one batch through the editor.
type Exporter interface {
	ExportBatch(ctx context.Context, b batch.Batch) (*export.BatchOutcome, error)
}

// Importer loads one rendered batch into the library.
type Importer interface {
	ImportBatch(ctx context.Context, outcome *export.BatchOutcome) (*importer.ImportReport, error)
}

// Archiver keeps the leftovers of degraded batches. Failures are logged only.
type Archiver interface {
	Archive(ctx context.Context, result *Result) error
}

// Option configures the driver.
type Option func(*Driver)

// WithBatchSize sets the maximum number of assets per batch.
func WithBatchSize(size int) Option {
	return func(d *Driver) {
		d.batchSize = size
	}
}

// WithKeepScratch leaves scratch directories of imported batches on disk.
func WithKeepScratch(keep bool) Option {
	return func(d *Driver) {
		d.keepScratch = keep
	}
}

// WithArchiver archives degraded batches at the end of the run.
func WithArchiver(a Archiver) Option {
	return func(d *Driver) {
		d.archiver = a
	}
}

// Driver runs the read, reconcile, export and import cycle.
type Driver struct {
	loader      reconcile.Loader
	exporter    Exporter
	importer    Importer
	archiver    Archiver
	batchSize   int
	keepScratch bool
	logger      *zap.Logger
}

// NewDriver creates a run driver.
func NewDriver(loader reconcile.Loader, exporter Exporter, importer Importer, logger *zap.Logger, opts ...Option) *Driver {
	d := &Driver{
		loader:    loader,
		exporter:  exporter,
		importer:  importer,
		batchSize: batch.DefaultSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run performs one synchronization run. It always returns a result; Result.Err is set
// when the run aborted.
func (d *Driver) Run(ctx context.Context) *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		State:     StateIdle,
		StartedAt: time.Now().UTC(),
		Degraded:  []DegradedBatch{},
	}
	log := logger.WithRun(d.logger, res.RunID)
	log.Info("Run started")

	d.enter(res, StateReading, log)
	source, dest, err := d.loader.Load(ctx)
	if err != nil {
		return d.finish(ctx, res, err, log)
	}

	d.enter(res, StateReconciling, log)
	matches, err := reconcile.Reconcile(source, dest)
	if err != nil {
		return d.finish(ctx, res, err, log)
	}
	plan := reconcile.BuildPlan(matches)
	res.Summary = plan.Summary

	batches, err := batch.MakeBatches(plan.Actions, d.batchSize)
	if err != nil {
		return d.finish(ctx, res, err, log)
	}
	res.Batches = len(batches)
	log.Info("Plan ready",
		zap.Int("keys", matches.Len()),
		zap.Int("source", plan.Summary.SourceRecords),
		zap.Int("destination", plan.Summary.DestinationRecords),
		zap.Int("export", plan.Summary.ExportActions),
		zap.Int("update", plan.Summary.UpdateActions),
		zap.Int("unchanged", plan.Summary.Unchanged),
		zap.Int("batches", len(batches)))

	d.enter(res, StateBatchLoop, log)
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return d.finish(ctx, res, err, log)
		}

		imported, scratch, err := d.runBatch(ctx, b, log)
		if err != nil {
			if !IsDegraded(err) {
				return d.finish(ctx, res, err, log)
			}
			res.Degraded = append(res.Degraded, degraded(b, scratch, err))
			logger.WithBatch(log, b.ID, b.Token).Warn("Batch degraded", zap.Error(err))
			continue
		}
		res.Imported += imported
	}

	return d.finish(ctx, res, nil, log)
}

// runBatch exports and imports one batch. It returns the number of files handed to the
// library and, on failure, the scratch directory left behind.
func (d *Driver) runBatch(ctx context.Context, b batch.Batch, log *zap.Logger) (int, string, error) {
	outcome, err := d.exporter.ExportBatch(ctx, b)
	if err != nil {
		return 0, scratchOf(outcome, err), err
	}

	// A rendered batch is imported even when the run was cancelled during the export
	// wait; the loop stops before the next batch.
	report, err := d.importer.ImportBatch(context.WithoutCancel(ctx), outcome)
	if err != nil {
		return 0, outcome.ScratchDir, err
	}

	if !d.keepScratch {
		d.removeBatchDirs(outcome, log)
	}
	return report.Imported, "", nil
}

func (d *Driver) removeBatchDirs(outcome *export.BatchOutcome, log *zap.Logger) {
	for _, dir := range []string{outcome.ScratchDir, outcome.ControlDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("Failed to remove batch directory", zap.String("dir", dir), zap.Error(err))
		}
	}
}

func (d *Driver) enter(res *Result, state State, log *zap.Logger) {
	log.Debug("Run state", zap.String("from", string(res.State)), zap.String("to", string(state)))
	res.State = state
}

// finish moves the run to its terminal state and archives degraded batches. Archiving
// runs even when ctx was cancelled.
func (d *Driver) finish(ctx context.Context, res *Result, err error, log *zap.Logger) *Result {
	if err != nil {
		d.enter(res, StateAborted, log)
		res.Err = err
		res.Error = err.Error()
	} else {
		d.enter(res, StateDone, log)
	}
	res.FinishedAt = time.Now().UTC()

	if d.archiver != nil && len(res.Degraded) > 0 {
		if archiveErr := d.archiver.Archive(context.WithoutCancel(ctx), res); archiveErr != nil {
			log.Error("Failed to archive degraded batches", zap.Error(archiveErr))
		}
	}

	fields := []zap.Field{
		zap.String("state", string(res.State)),
		zap.Int("imported", res.Imported),
		zap.Int("degraded", len(res.Degraded)),
		zap.Duration("duration", res.Duration()),
	}
	if err != nil {
		log.Error("Run aborted", append(fields, zap.Error(err))...)
	} else {
		log.Info("Run finished", fields...)
	}
	return res
}

func degraded(b batch.Batch, scratch string, err error) DegradedBatch {
	keys := make([]string, 0, b.Len())
	for _, item := range b.Items {
		keys = append(keys, item.Key.String())
	}
	return DegradedBatch{
		BatchID:    b.ID,
		Token:      b.Token,
		Keys:       keys,
		ScratchDir: scratch,
		Reason:     err.Error(),
		Err:        err,
	}
}
