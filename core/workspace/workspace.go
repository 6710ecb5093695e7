package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the local directory a run works in.
//
//	<dir>/catalog-sync.lock          run lock
//	<dir>/copies/snapshot-*/         catalog working copies
//	<dir>/scratch/batch-<id>-<tok>/  rendered files of one batch
//	<dir>/control/batch-<id>-<tok>/  completion hook and sentinel of one batch
type Workspace struct {
	Dir string
}

// New creates the workspace directory when it does not exist.
func New(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: abs}, nil
}

// Lock takes the run lock.
func (w *Workspace) Lock() (*Lock, error) {
	return AcquireLock(w.Dir)
}

// Snapshot takes a working copy of a live catalog.
func (w *Workspace) Snapshot(ctx context.Context, livePath string) (*Snapshot, error) {
	return Acquire(ctx, livePath, filepath.Join(w.Dir, "copies"))
}

// ScratchDir creates an empty output directory for one batch.
func (w *Workspace) ScratchDir(batchID int, token string) (string, error) {
	return w.batchDir("scratch", batchID, token)
}

// ControlDir creates an empty directory for one batch's hook script and sentinel.
func (w *Workspace) ControlDir(batchID int, token string) (string, error) {
	return w.batchDir("control", batchID, token)
}

func (w *Workspace) batchDir(kind string, batchID int, token string) (string, error) {
	short := token
	if len(short) > 8 {
		short = short[:8]
	}
	dir := filepath.Join(w.Dir, kind, fmt.Sprintf("batch-%d-%s", batchID, short))

	// A leftover from an earlier run with the same id must not leak files into this batch
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("reset %s dir: %w", kind, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", kind, err)
	}
	return dir, nil
}

// WriteFileAtomic writes data to path through a temporary file and a rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
