package importer

import (
	"context"
	"fmt"
	"strings"

	"catalog-sync/core/script"
)

// DefaultApplication is the scripting name of the library application.
const DefaultApplication = "Photos"

// Library is the subset of the library application's scripting interface the importer
// drives. Folder paths are absolute, starting with the top-level folder.
type Library interface {
	FolderExists(ctx context.Context, path []string) (bool, error)
	CreateFolder(ctx context.Context, parent []string, name string) error
	AlbumExists(ctx context.Context, folder []string, name string) (bool, error)
	CreateAlbum(ctx context.Context, folder []string, name string) error
	Import(ctx context.Context, folder []string, album string, files []string) error
}

// ScriptLibrary drives the library through osascript.
type ScriptLibrary struct {
	client *script.Client
	app    string
}

// NewScriptLibrary returns a Library that runs AppleScript through client.
func NewScriptLibrary(client *script.Client) *ScriptLibrary {
	return &ScriptLibrary{client: client, app: DefaultApplication}
}

func (l *ScriptLibrary) FolderExists(ctx context.Context, path []string) (bool, error) {
	if len(path) == 0 {
		return true, nil
	}
	out, err := l.run(ctx, "exists folder", existsFolderScript(l.app, path))
	if err != nil {
		return false, err
	}
	return l.parseBool("exists folder", out)
}

func (l *ScriptLibrary) CreateFolder(ctx context.Context, parent []string, name string) error {
	_, err := l.run(ctx, "make folder", makeFolderScript(l.app, parent, name))
	return err
}

func (l *ScriptLibrary) AlbumExists(ctx context.Context, folder []string, name string) (bool, error) {
	out, err := l.run(ctx, "exists album", existsAlbumScript(l.app, folder, name))
	if err != nil {
		return false, err
	}
	return l.parseBool("exists album", out)
}

func (l *ScriptLibrary) CreateAlbum(ctx context.Context, folder []string, name string) error {
	_, err := l.run(ctx, "make album", makeAlbumScript(l.app, folder, name))
	return err
}

func (l *ScriptLibrary) Import(ctx context.Context, folder []string, album string, files []string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := l.run(ctx, "import", importScript(l.app, folder, album, files))
	return err
}

func (l *ScriptLibrary) run(ctx context.Context, command, source string) (string, error) {
	return l.client.Call(ctx, command, "-e", source)
}

// parseBool reads an AppleScript boolean. Anything else is reported as a failed command.
func (l *ScriptLibrary) parseBool(command, out string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(out)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &script.CommandError{
			App:     l.client.App(),
			Command: command,
			Output:  out,
			Err:     fmt.Errorf("unexpected osascript output %q", out),
		}
	}
}
