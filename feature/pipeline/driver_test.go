package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog-sync/core/reconcile"
	"catalog-sync/core/script"
	"catalog-sync/feature/batch"
	"catalog-sync/feature/export"
	"catalog-sync/feature/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var epoch = time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)

// world holds both catalogs in memory. The fake importer writes into dest and the loader
// reads from it, so consecutive runs see each other's effects.
type world struct {
	source []reconcile.AssetRecord
	dest   []reconcile.DestinationRecord
	clock  time.Time
	nextID int
}

func newWorld() *world {
	return &world{clock: epoch.Add(time.Hour)}
}

func (w *world) addSource(folder, album, filename string, edited time.Duration) {
	w.source = append(w.source, reconcile.AssetRecord{
		Key:            reconcile.NaturalKey{Folder: folder, Album: album, Filename: filename},
		SourceID:       fmt.Sprintf("src-%d", len(w.source)+1),
		LastModifiedAt: epoch.Add(edited),
	})
}

func (w *world) addDest(key reconcile.NaturalKey, added time.Time) {
	w.nextID++
	w.dest = append(w.dest, reconcile.DestinationRecord{
		Key:           key,
		DestinationID: fmt.Sprintf("dst-%d", w.nextID),
		AddedAt:       added,
	})
}

func (w *world) Load(ctx context.Context) ([]reconcile.AssetRecord, []reconcile.DestinationRecord, error) {
	return append([]reconcile.AssetRecord(nil), w.source...), append([]reconcile.DestinationRecord(nil), w.dest...), nil
}

type fakeExporter struct {
	dir      string
	batches  []batch.Batch
	fail     func(b batch.Batch, outcome *export.BatchOutcome) error
	onExport func(b batch.Batch)
}

func (f *fakeExporter) ExportBatch(ctx context.Context, b batch.Batch) (*export.BatchOutcome, error) {
	f.batches = append(f.batches, b)
	if f.onExport != nil {
		f.onExport(b)
	}

	scratch := filepath.Join(f.dir, "scratch", fmt.Sprintf("batch-%d", b.ID))
	control := filepath.Join(f.dir, "control", fmt.Sprintf("batch-%d", b.ID))
	for _, dir := range []string{scratch, control} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	outcome := &export.BatchOutcome{BatchID: b.ID, Token: b.Token, ScratchDir: scratch, ControlDir: control, ExpectedCount: b.Len()}
	for _, item := range b.Items {
		path := filepath.Join(scratch, item.Key.Filename+".jpg")
		if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
			return nil, err
		}
		outcome.Produced = append(outcome.Produced, export.ProducedFile{Key: item.Key, Path: path})
		outcome.ActualCount++
	}

	if f.fail != nil {
		if err := f.fail(b, outcome); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

type fakeImporter struct {
	w        *world
	calls    int
	failures int
}

func (f *fakeImporter) ImportBatch(ctx context.Context, outcome *export.BatchOutcome) (*importer.ImportReport, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failures > 0 {
		f.failures--
		return nil, &script.CommandError{App: "library", Command: "import", Err: errors.New("Photos got an error")}
	}
	for _, p := range outcome.Produced {
		f.w.addDest(p.Key, f.w.clock)
	}
	f.w.clock = f.w.clock.Add(time.Minute)
	return &importer.ImportReport{BatchID: outcome.BatchID, Imported: len(outcome.Produced)}, nil
}

type fakeArchiver struct {
	results []*Result
	err     error
}

func (f *fakeArchiver) Archive(ctx context.Context, result *Result) error {
	f.results = append(f.results, result)
	return f.err
}

type harness struct {
	world    *world
	exporter *fakeExporter
	importer *fakeImporter
	logs     *observer.ObservedLogs
	driver   *Driver
}

func newHarness(t *testing.T, w *world, opts ...Option) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	h := &harness{
		world:    w,
		exporter: &fakeExporter{dir: t.TempDir()},
		importer: &fakeImporter{w: w},
		logs:     logs,
	}
	h.driver = NewDriver(w, h.exporter, h.importer, zap.New(core), opts...)
	return h
}

func TestRun_Convergence(t *testing.T) {
	w := newWorld()
	for i := 1; i <= 65; i++ {
		w.addSource("2023", "Trip", fmt.Sprintf("IMG_%04d", i), time.Duration(i)*time.Second)
	}
	h := newHarness(t, w, WithBatchSize(30))

	first := h.driver.Run(context.Background())
	require.NoError(t, first.Err)
	assert.Equal(t, StateDone, first.State)
	assert.Equal(t, 65, first.Summary.ExportActions)
	assert.Equal(t, 3, first.Batches)
	assert.Equal(t, 65, first.Imported)
	assert.Empty(t, first.Degraded)
	require.Len(t, h.exporter.batches, 3)
	assert.Equal(t, 30, h.exporter.batches[0].Len())
	assert.Equal(t, 5, h.exporter.batches[2].Len())

	second := h.driver.Run(context.Background())
	require.NoError(t, second.Err)
	assert.Zero(t, second.Summary.Pending())
	assert.Equal(t, 65, second.Summary.Unchanged)
	assert.Zero(t, second.Batches)
	assert.Len(t, h.exporter.batches, 3, "converged run must not export")
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_NewAsset(t *testing.T) {
	w := newWorld()
	w.addSource("2023", "Trip", "IMG1", 100*time.Second)
	h := newHarness(t, w)

	res := h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Summary.SourceOnly)
	assert.Equal(t, 1, res.Imported)

	res = h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Summary.Unchanged)
	assert.Zero(t, res.Summary.Pending())
}

func TestRun_StaleAsset(t *testing.T) {
	w := newWorld()
	w.addSource("2023", "Trip", "IMG1", 200*time.Second)
	w.addDest(reconcile.NaturalKey{Folder: "2023", Album: "Trip", Filename: "IMG1"}, epoch.Add(100*time.Second))
	h := newHarness(t, w)

	res := h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Summary.Stale)
	assert.Equal(t, 1, res.Summary.UpdateActions)
	require.Len(t, h.exporter.batches, 1)
	assert.Equal(t, reconcile.ActionUpdate, h.exporter.batches[0].Items[0].Action)

	res = h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Summary.Unchanged)
	assert.Zero(t, res.Summary.Pending())
}

func TestRun_DuplicateSourceKeyAborts(t *testing.T) {
	w := newWorld()
	w.addSource("2023", "Trip", "IMG1", time.Second)
	w.addSource("2023", "Trip", "IMG1", 2*time.Second)
	h := newHarness(t, w)

	res := h.driver.Run(context.Background())
	assert.Equal(t, StateAborted, res.State)
	assert.True(t, res.Aborted())
	assert.True(t, reconcile.IsDuplicateKey(res.Err))
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, res.Batches)
	assert.Empty(t, h.exporter.batches)
	assert.Equal(t, 1, h.logs.FilterMessage("Run aborted").Len())
}

func TestRun_LoaderErrorAborts(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	loader := reconcile.LoaderFunc(func(ctx context.Context) ([]reconcile.AssetRecord, []reconcile.DestinationRecord, error) {
		return nil, nil, errors.New("catalog locked")
	})
	d := NewDriver(loader, &fakeExporter{dir: t.TempDir()}, &fakeImporter{w: newWorld()}, zap.New(core))

	res := d.Run(context.Background())
	assert.Equal(t, StateAborted, res.State)
	assert.EqualError(t, res.Err, "catalog locked")
}

// TestRun_PartialBatchDegrades tests that a partial render skips the import of that batch
// only, keeps its scratch directory and is retried by the next run.
func TestRun_PartialBatchDegrades(t *testing.T) {
	w := newWorld()
	for i := 1; i <= 4; i++ {
		w.addSource("", "Loose", fmt.Sprintf("IMG_%d", i), time.Second)
	}
	h := newHarness(t, w, WithBatchSize(2))
	failed := false
	h.exporter.fail = func(b batch.Batch, outcome *export.BatchOutcome) error {
		if b.ID != 1 || failed {
			return nil
		}
		failed = true
		return &export.PartialBatchError{BatchID: b.ID, Expected: 2, Actual: 1, Missing: []string{b.Items[1].Key.String()}}
	}

	res := h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Degraded, 1)
	assert.Equal(t, 1, res.Degraded[0].BatchID)
	assert.Equal(t, []string{"Loose/IMG_1", "Loose/IMG_2"}, res.Degraded[0].Keys)
	assert.Contains(t, res.Degraded[0].Reason, "expected 2 rendered files, found 1")
	assert.DirExists(t, res.Degraded[0].ScratchDir)
	assert.Equal(t, 1, h.importer.calls)
	assert.Equal(t, 1, h.logs.FilterMessage("Batch degraded").Len())

	res = h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Summary.ExportActions)
	assert.Equal(t, 2, res.Imported)

	res = h.driver.Run(context.Background())
	assert.Zero(t, res.Summary.Pending())
}

func TestRun_ScratchPolicy(t *testing.T) {
	t.Run("Removed after import", func(t *testing.T) {
		w := newWorld()
		w.addSource("", "A", "IMG_1", time.Second)
		h := newHarness(t, w)

		require.NoError(t, h.driver.Run(context.Background()).Err)
		assert.NoDirExists(t, filepath.Join(h.exporter.dir, "scratch", "batch-1"))
		assert.NoDirExists(t, filepath.Join(h.exporter.dir, "control", "batch-1"))
	})

	t.Run("Kept when configured", func(t *testing.T) {
		w := newWorld()
		w.addSource("", "A", "IMG_1", time.Second)
		h := newHarness(t, w, WithKeepScratch(true))

		require.NoError(t, h.driver.Run(context.Background()).Err)
		assert.DirExists(t, filepath.Join(h.exporter.dir, "scratch", "batch-1"))
	})

	t.Run("Left for degraded import", func(t *testing.T) {
		w := newWorld()
		w.addSource("", "A", "IMG_1", time.Second)
		h := newHarness(t, w)
		h.importer.failures = 1

		res := h.driver.Run(context.Background())
		require.NoError(t, res.Err)
		require.Len(t, res.Degraded, 1)
		scratch := filepath.Join(h.exporter.dir, "scratch", "batch-1")
		assert.Equal(t, scratch, res.Degraded[0].ScratchDir)
		assert.DirExists(t, scratch)
	})
}

func TestRun_FlakyImporterConverges(t *testing.T) {
	w := newWorld()
	for i := 1; i <= 6; i++ {
		w.addSource("2024", "Family", fmt.Sprintf("IMG_%d", i), time.Second)
	}
	h := newHarness(t, w, WithBatchSize(2))
	h.importer.failures = 2

	res := h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Len(t, res.Degraded, 2)
	assert.Equal(t, 2, res.Imported)

	res = h.driver.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Empty(t, res.Degraded)
	assert.Equal(t, 4, res.Imported)

	res = h.driver.Run(context.Background())
	assert.Equal(t, 6, res.Summary.Unchanged)
	assert.Zero(t, res.Batches)
}

func TestRun_CorrelationAborts(t *testing.T) {
	w := newWorld()
	for i := 1; i <= 4; i++ {
		w.addSource("", "A", fmt.Sprintf("IMG_%d", i), time.Second)
	}
	h := newHarness(t, w, WithBatchSize(2))
	h.exporter.fail = func(b batch.Batch, _ *export.BatchOutcome) error {
		return &export.CorrelationError{BatchID: b.ID, Expected: b.Token, Actual: "foreign"}
	}

	res := h.driver.Run(context.Background())
	assert.Equal(t, StateAborted, res.State)
	var corr *export.CorrelationError
	require.ErrorAs(t, res.Err, &corr)
	assert.Len(t, h.exporter.batches, 1)
	assert.Zero(t, h.importer.calls)
}

func TestRun_CancellationBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := newWorld()
	for i := 1; i <= 4; i++ {
		w.addSource("", "A", fmt.Sprintf("IMG_%d", i), time.Second)
	}
	h := newHarness(t, w, WithBatchSize(2))
	h.exporter.onExport = func(batch.Batch) { cancel() }

	res := h.driver.Run(ctx)
	assert.Equal(t, StateAborted, res.State)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Len(t, h.exporter.batches, 1)
	assert.Equal(t, 1, h.importer.calls)
	assert.Equal(t, 2, res.Imported, "the batch rendered before cancellation is still imported")
	assert.Empty(t, res.Degraded)
	assert.Len(t, w.dest, 2)
}

func TestRun_Archiver(t *testing.T) {
	w := newWorld()
	w.addSource("", "A", "IMG_1", time.Second)
	w.addSource("", "B", "IMG_2", time.Second)

	t.Run("Called for degraded batches", func(t *testing.T) {
		archiver := &fakeArchiver{}
		h := newHarness(t, w, WithBatchSize(1), WithArchiver(archiver))
		h.importer.failures = 1

		res := h.driver.Run(context.Background())
		require.Len(t, archiver.results, 1)
		assert.Same(t, res, archiver.results[0])
		assert.Len(t, res.Degraded, 1)
	})

	t.Run("Failure does not change the outcome", func(t *testing.T) {
		archiver := &fakeArchiver{err: errors.New("bucket unreachable")}
		w2 := newWorld()
		w2.addSource("", "A", "IMG_1", time.Second)
		h := newHarness(t, w2, WithArchiver(archiver))
		h.importer.failures = 1

		res := h.driver.Run(context.Background())
		assert.Equal(t, StateDone, res.State)
		assert.NoError(t, res.Err)
		assert.Equal(t, 1, h.logs.FilterMessage("Failed to archive degraded batches").Len())
	})

	t.Run("Not called for clean runs", func(t *testing.T) {
		archiver := &fakeArchiver{}
		w3 := newWorld()
		w3.addSource("", "A", "IMG_1", time.Second)
		h := newHarness(t, w3, WithArchiver(archiver))

		h.driver.Run(context.Background())
		assert.Empty(t, archiver.results)
	})
}

func TestRun_LogsRunID(t *testing.T) {
	h := newHarness(t, newWorld())
	res := h.driver.Run(context.Background())

	finished := h.logs.FilterMessage("Run finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, res.RunID, finished[0].ContextMap()["run_id"])
	assert.Equal(t, "done", finished[0].ContextMap()["state"])
}
