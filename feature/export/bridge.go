package export

import (
	"context"
	"strings"
	"time"

	"catalog-sync/core/script"
)

// Bridge issues commands to the editor through its scripting bridge.
// Each method is one blocking invocation of the bridge executable.
type Bridge struct {
	client *script.Client
}

// NewBridge wraps a script client configured for the editor.
func NewBridge(client *script.Client) *Bridge {
	return &Bridge{client: client}
}

// SetExportDir points the export profile's output at dir.
func (b *Bridge) SetExportDir(ctx context.Context, profile, dir string) error {
	_, err := b.client.Call(ctx, "set-export-dir", "set-export-dir", "--profile", profile, "--dir", dir)
	return err
}

// SetHook installs the script run when an export of profile completes. An empty path clears it.
func (b *Bridge) SetHook(ctx context.Context, profile, scriptPath string) error {
	_, err := b.client.Call(ctx, "set-hook", "set-hook", "--profile", profile, "--script", scriptPath)
	return err
}

// ClearHook removes the completion hook of profile. timeout bounds the bridge command
// only; the wait for the rate limiter is governed by ctx alone.
func (b *Bridge) ClearHook(ctx context.Context, profile string, timeout time.Duration) error {
	_, err := b.client.CallTimeout(ctx, timeout, "set-hook", "set-hook", "--profile", profile, "--script", "")
	return err
}

// Select selects exactly the given images.
func (b *Bridge) Select(ctx context.Context, ids []string) error {
	_, err := b.client.Call(ctx, "select", "select", "--ids", strings.Join(ids, ","))
	return err
}

// Export starts rendering the selection with profile. It returns once the editor has
// accepted the request, not when rendering is done.
func (b *Bridge) Export(ctx context.Context, profile string) error {
	_, err := b.client.Call(ctx, "export", "export", "--profile", profile)
	return err
}
