package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// File names inside a batch's control directory.
const (
	HookName     = "on-export-complete.sh"
	SentinelName = "sentinel"
)

var errWaitTimeout = errors.New("sentinel wait timed out")

// hookScript returns a shell script that writes token to sentinelPath. The token lands in a
// temporary file first and is renamed into place, so the watcher never sees a partial write.
func hookScript(token, sentinelPath string) string {
	tmp := sentinelPath + ".tmp"
	return fmt.Sprintf("#!/bin/sh\nprintf '%%s' %s > %s && mv -f %s %s\n",
		shellQuote(token), shellQuote(tmp), shellQuote(tmp), shellQuote(sentinelPath))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// sentinelWatch is a one-shot watch on the control directory.
// It must be started before the export is triggered.
type sentinelWatch struct {
	watcher *fsnotify.Watcher
	path    string
}

func watchSentinel(controlDir string) (*sentinelWatch, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(controlDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", controlDir, err)
	}
	return &sentinelWatch{watcher: watcher, path: filepath.Join(controlDir, SentinelName)}, nil
}

func (w *sentinelWatch) Close() error {
	return w.watcher.Close()
}

// Wait blocks until the sentinel holds a token or ctx is done.
// Callers pass a context detached from run cancellation and bounded by the export timeout.
func (w *sentinelWatch) Wait(ctx context.Context) (string, error) {
	// The hook may have fired before the first event was read
	if token, ok := w.read(); ok {
		return token, nil
	}

	for {
		select {
		case <-ctx.Done():
			if token, ok := w.read(); ok {
				return token, nil
			}
			return "", errWaitTimeout
		case event, ok := <-w.watcher.Events:
			if !ok {
				return "", errors.New("watcher closed")
			}
			if filepath.Clean(event.Name) != w.path || !(event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				continue
			}
			if token, ok := w.read(); ok {
				return token, nil
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return "", errors.New("watcher closed")
			}
			return "", fmt.Errorf("watch sentinel: %w", err)
		}
	}
}

func (w *sentinelWatch) read() (string, bool) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}
