package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/workspace"
	"catalog-sync/feature/batch"

	"go.uber.org/zap"
)

// hookClearTimeout bounds the bridge command that resets the hook after a batch.
const hookClearTimeout = 30 * time.Second

// ProducedFile is one rendered file matched to its asset.
type ProducedFile struct {
	Key  reconcile.NaturalKey `json:"key"`
	Path string               `json:"path"`
}

// BatchOutcome is the verified output of one export. It is only trusted when Token
// equals the token dispatched for the batch.
type BatchOutcome struct {
	BatchID       int            `json:"batch_id"`
	Token         string         `json:"token"`
	ScratchDir    string         `json:"scratch_dir"`
	ControlDir    string         `json:"-"`
	Produced      []ProducedFile `json:"produced"`
	ExpectedCount int            `json:"expected_count"`
	ActualCount   int            `json:"actual_count"`
}

// Coordinator renders batches through the editor.
type Coordinator struct {
	bridge       *Bridge
	ws           *workspace.Workspace
	profile      string
	timeout      time.Duration
	clearTimeout time.Duration
	logger       *zap.Logger
}

// NewCoordinator creates an export coordinator for the named export profile.
func NewCoordinator(bridge *Bridge, ws *workspace.Workspace, profile string, timeout time.Duration, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		bridge:       bridge,
		ws:           ws,
		profile:      profile,
		timeout:      timeout,
		clearTimeout: hookClearTimeout,
		logger:       logger,
	}
}

// ExportBatch renders the batch into a fresh scratch directory and waits for the editor's
// completion hook. The wait is bounded by the export timeout only; cancelling ctx does not
// interrupt it because the editor cannot cancel a running export.
//
// A partial render returns both the outcome and a *PartialBatchError. A foreign completion
// token returns *CorrelationError and no outcome.
func (c *Coordinator) ExportBatch(ctx context.Context, b batch.Batch) (*BatchOutcome, error) {
	log := logger.WithBatch(c.logger, b.ID, b.Token)

	scratch, err := c.ws.ScratchDir(b.ID, b.Token)
	if err != nil {
		return nil, err
	}
	control, err := c.ws.ControlDir(b.ID, b.Token)
	if err != nil {
		return nil, err
	}

	hookPath := filepath.Join(control, HookName)
	sentinelPath := filepath.Join(control, SentinelName)
	if err := workspace.WriteFileAtomic(hookPath, []byte(hookScript(b.Token, sentinelPath)), 0o755); err != nil {
		return nil, fmt.Errorf("write completion hook: %w", err)
	}

	watch, err := watchSentinel(control)
	if err != nil {
		return nil, err
	}
	defer watch.Close()

	defer c.clearHook(ctx, log)

	if err := c.bridge.SetExportDir(ctx, c.profile, scratch); err != nil {
		return nil, err
	}
	if err := c.bridge.SetHook(ctx, c.profile, hookPath); err != nil {
		return nil, err
	}
	if err := c.bridge.Select(ctx, b.SourceIDs()); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := c.bridge.Export(ctx, c.profile); err != nil {
		return nil, err
	}
	log.Info("Export started", zap.Int("items", b.Len()), zap.String("scratch", scratch))

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	token, err := watch.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, errWaitTimeout) {
			return nil, &ExportTimeoutError{BatchID: b.ID, Timeout: c.timeout, ScratchDir: scratch}
		}
		return nil, err
	}
	if token != b.Token {
		return nil, &CorrelationError{BatchID: b.ID, Expected: b.Token, Actual: token}
	}

	outcome, missing, err := collect(scratch, b)
	if err != nil {
		return nil, err
	}
	outcome.ControlDir = control
	log.Info("Export completed",
		zap.Int("expected", outcome.ExpectedCount),
		zap.Int("actual", outcome.ActualCount),
		zap.Duration("duration", time.Since(start)))

	if outcome.ActualCount != outcome.ExpectedCount || len(missing) > 0 {
		return outcome, &PartialBatchError{
			BatchID:  b.ID,
			Expected: outcome.ExpectedCount,
			Actual:   outcome.ActualCount,
			Missing:  missing,
		}
	}
	return outcome, nil
}

// clearHook resets the completion hook on every exit path, even after cancellation.
// The limiter wait is unbounded so a slow request rate cannot skip the reset.
func (c *Coordinator) clearHook(ctx context.Context, log *zap.Logger) {
	if err := c.bridge.ClearHook(context.WithoutCancel(ctx), c.profile, c.clearTimeout); err != nil {
		log.Error("Failed to clear completion hook", zap.Error(err))
	}
}

// collect matches rendered files to batch items by base name (case-insensitive).
// Hidden files and directories are ignored.
func collect(scratch string, b batch.Batch) (*BatchOutcome, []string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return nil, nil, fmt.Errorf("read scratch dir: %w", err)
	}

	rendered := make(map[string]string, len(entries))
	actual := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		actual++
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		rendered[base] = filepath.Join(scratch, name)
	}

	outcome := &BatchOutcome{
		BatchID:       b.ID,
		Token:         b.Token,
		ScratchDir:    scratch,
		ExpectedCount: b.Len(),
		ActualCount:   actual,
	}

	var missing []string
	for _, item := range b.Items {
		path, ok := rendered[strings.ToLower(item.Key.Filename)]
		if !ok {
			missing = append(missing, item.Key.String())
			continue
		}
		outcome.Produced = append(outcome.Produced, ProducedFile{Key: item.Key, Path: path})
	}
	return outcome, missing, nil
}
