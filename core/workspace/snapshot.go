package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Snapshot is a run-scoped, private copy of a live catalog file.
type Snapshot struct {
	// Path is the copy to open.
	Path string
	// Live is the catalog the copy was taken from.
	Live string
	// Copied is true when the consistent snapshot failed and the files were copied byte for byte.
	Copied bool

	dir string
}

// Acquire copies the live catalog at livePath into a fresh directory under dir.
// It first asks SQLite for a consistent copy (VACUUM INTO over a read-only connection).
// When the owner holds a lock that prevents this, it falls back to copying the main file
// and its -wal sidecar, then checkpoints the copy so it stands alone.
// The caller must call Release on every exit path.
func Acquire(ctx context.Context, livePath, dir string) (*Snapshot, error) {
	if _, err := os.Stat(livePath); err != nil {
		return nil, fmt.Errorf("stat catalog %s: %w", livePath, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot root: %w", err)
	}
	tmpDir, err := os.MkdirTemp(dir, "snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	snap := &Snapshot{
		Path: filepath.Join(tmpDir, filepath.Base(livePath)),
		Live: livePath,
		dir:  tmpDir,
	}

	if vacErr := vacuumInto(ctx, livePath, snap.Path); vacErr != nil {
		// A half-written target would shadow the byte copy
		_ = os.Remove(snap.Path)
		if err := copyCatalog(livePath, snap.Path); err != nil {
			_ = snap.Release()
			return nil, fmt.Errorf("snapshot %s: %w (vacuum: %v)", livePath, err, vacErr)
		}
		if err := checkpoint(ctx, snap.Path); err != nil {
			_ = snap.Release()
			return nil, fmt.Errorf("snapshot %s: %w", livePath, err)
		}
		snap.Copied = true
	}

	return snap, nil
}

// Release removes the copy. It is safe to call more than once and on a nil snapshot.
func (s *Snapshot) Release() error {
	if s == nil || s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	if err != nil {
		return fmt.Errorf("remove snapshot %s: %w", s.Path, err)
	}
	return nil
}

func readOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro&_pragma=busy_timeout(2000)"
}

func vacuumInto(ctx context.Context, livePath, target string) error {
	db, err := sql.Open("sqlite", readOnlyDSN(livePath))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return err
	}
	return nil
}

// checkpoint folds a copied -wal file into the main file of the copy.
func checkpoint(ctx context.Context, path string) error {
	if _, err := os.Stat(path + "-wal"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint copy: %w", err)
	}
	return nil
}

func copyCatalog(livePath, target string) error {
	if err := copyFile(livePath, target); err != nil {
		return err
	}
	err := copyFile(livePath+"-wal", target+"-wal")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
