package importer

import (
	"context"
	"fmt"
	"strings"

	"catalog-sync/core/logger"
	"catalog-sync/feature/export"

	"go.uber.org/zap"
)

// AlbumImport records the files handed to one album.
type AlbumImport struct {
	Folder []string `json:"folder"`
	Album  string   `json:"album"`
	Files  int      `json:"files"`
}

// ImportReport summarizes one imported batch.
type ImportReport struct {
	BatchID  int           `json:"batch_id"`
	Albums   []AlbumImport `json:"albums"`
	Imported int           `json:"imported"`
}

// Coordinator imports export outcomes into the library under a root folder.
type Coordinator struct {
	lib    Library
	root   string
	logger *zap.Logger
}

// NewCoordinator creates an import coordinator. Every album is placed under rootFolder.
func NewCoordinator(lib Library, rootFolder string, logger *zap.Logger) *Coordinator {
	return &Coordinator{lib: lib, root: rootFolder, logger: logger}
}

type albumGroup struct {
	folder []string
	album  string
	files  []string
}

// ImportBatch groups the outcome's files by album and imports each group.
// Groups are processed in the order their first file appears.
func (c *Coordinator) ImportBatch(ctx context.Context, outcome *export.BatchOutcome) (*ImportReport, error) {
	if outcome == nil {
		return nil, fmt.Errorf("import: nil batch outcome")
	}
	log := logger.WithBatch(c.logger, outcome.BatchID, outcome.Token)

	report := &ImportReport{BatchID: outcome.BatchID}
	for _, group := range c.group(outcome.Produced) {
		if err := c.ensureFolder(ctx, group.folder); err != nil {
			return report, err
		}
		if err := c.ensureAlbum(ctx, group.folder, group.album); err != nil {
			return report, err
		}
		if err := c.lib.Import(ctx, group.folder, group.album, group.files); err != nil {
			return report, err
		}

		report.Albums = append(report.Albums, AlbumImport{Folder: group.folder, Album: group.album, Files: len(group.files)})
		report.Imported += len(group.files)
		log.Debug("Imported album",
			zap.String("folder", strings.Join(group.folder, "/")),
			zap.String("album", group.album),
			zap.Int("files", len(group.files)))
	}

	log.Info("Import completed", zap.Int("albums", len(report.Albums)), zap.Int("files", report.Imported))
	return report, nil
}

func (c *Coordinator) group(files []export.ProducedFile) []*albumGroup {
	var groups []*albumGroup
	index := make(map[string]*albumGroup)
	for _, f := range files {
		id := f.Key.Folder + "\x00" + f.Key.Album
		g, ok := index[id]
		if !ok {
			folder := append([]string{c.root}, f.Key.FolderPath()...)
			g = &albumGroup{folder: folder, album: f.Key.Album}
			index[id] = g
			groups = append(groups, g)
		}
		g.files = append(g.files, f.Path)
	}
	return groups
}

// ensureFolder creates each missing segment of path, outermost first.
func (c *Coordinator) ensureFolder(ctx context.Context, path []string) error {
	for i := range path {
		current := path[:i+1]
		exists, err := c.lib.FolderExists(ctx, current)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := c.lib.CreateFolder(ctx, path[:i], path[i]); err != nil {
			return err
		}
		c.logger.Info("Created folder", zap.String("path", strings.Join(current, "/")))
	}
	return nil
}

func (c *Coordinator) ensureAlbum(ctx context.Context, folder []string, album string) error {
	exists, err := c.lib.AlbumExists(ctx, folder, album)
	if err != nil || exists {
		return err
	}
	if err := c.lib.CreateAlbum(ctx, folder, album); err != nil {
		return err
	}
	c.logger.Info("Created album", zap.String("folder", strings.Join(folder, "/")), zap.String("album", album))
	return nil
}
