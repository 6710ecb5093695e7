package importer

import (
	"strings"
)

// quote renders s as an AppleScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// folderRef builds an object specifier for a folder path, outermost segment last:
// folder "b" of folder "a". An empty path yields "".
func folderRef(path []string) string {
	parts := make([]string, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		parts = append(parts, "folder "+quote(path[i]))
	}
	return strings.Join(parts, " of ")
}

// albumRef builds an object specifier for an album inside folder.
func albumRef(folder []string, name string) string {
	ref := "album " + quote(name)
	if len(folder) > 0 {
		ref += " of " + folderRef(folder)
	}
	return ref
}

func tell(app string, lines ...string) string {
	var b strings.Builder
	b.WriteString("tell application " + quote(app) + "\n")
	for _, line := range lines {
		b.WriteString("\t" + line + "\n")
	}
	b.WriteString("end tell")
	return b.String()
}

func existsFolderScript(app string, path []string) string {
	return tell(app, "exists "+folderRef(path))
}

func makeFolderScript(app string, parent []string, name string) string {
	line := "make new folder named " + quote(name)
	if len(parent) > 0 {
		line += " at " + folderRef(parent)
	}
	return tell(app, line)
}

func existsAlbumScript(app string, folder []string, name string) string {
	return tell(app, "exists "+albumRef(folder, name))
}

func makeAlbumScript(app string, folder []string, name string) string {
	line := "make new album named " + quote(name)
	if len(folder) > 0 {
		line += " at " + folderRef(folder)
	}
	return tell(app, line)
}

// importScript imports files into an existing album. "skip check duplicates false" keeps
// the library's duplicate detection on.
func importScript(app string, folder []string, album string, files []string) string {
	refs := make([]string, len(files))
	for i, f := range files {
		refs[i] = "POSIX file " + quote(f)
	}
	return tell(app,
		"set theAlbum to "+albumRef(folder, album),
		"import {"+strings.Join(refs, ", ")+"} into theAlbum skip check duplicates false",
	)
}
