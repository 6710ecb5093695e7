package catalog

import (
	"context"
	"fmt"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/workspace"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reader reads both catalogs through run-scoped working copies.
// It implements reconcile.Loader.
type Reader struct {
	ws         *workspace.Workspace
	sourcePath string
	destPath   string
	rootFolder string
	profile    DestinationProfile
	policy     VariantPolicy
	logger     *zap.Logger
}

// NewReader builds a reader from the catalog and library configuration.
func NewReader(ws *workspace.Workspace, catalogCfg config.CatalogConfig, rootFolder string, logger *zap.Logger) (*Reader, error) {
	profile, err := GetProfileByName(catalogCfg.DestinationProfile)
	if err != nil {
		return nil, err
	}
	policy, err := GetVariantPolicy(catalogCfg.VariantPolicy)
	if err != nil {
		return nil, err
	}
	return &Reader{
		ws:         ws,
		sourcePath: catalogCfg.SourcePath,
		destPath:   catalogCfg.DestinationPath,
		rootFolder: rootFolder,
		profile:    profile,
		policy:     policy,
		logger:     logger,
	}, nil
}

// Read returns the normalized records of both catalogs.
// A missing table or column fails with *SchemaMismatchError before any record query runs.
func (r *Reader) Read(ctx context.Context) ([]reconcile.AssetRecord, []reconcile.DestinationRecord, error) {
	var (
		source []reconcile.AssetRecord
		dest   []reconcile.DestinationRecord
	)

	err := r.withCopy(ctx, SourceCatalog, r.sourcePath, func(db *gorm.DB) error {
		if err := CheckSchema(db, SourceCatalog, SourceSchema()); err != nil {
			return err
		}
		var err error
		source, err = ReadSource(ctx, db, r.policy)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	err = r.withCopy(ctx, DestinationCatalog, r.destPath, func(db *gorm.DB) error {
		if err := CheckSchema(db, DestinationCatalog, DestinationSchema(r.profile)); err != nil {
			return err
		}
		var err error
		dest, err = ReadDestination(ctx, db, r.profile, r.rootFolder)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	r.logger.Info("Catalogs read",
		zap.Int("source_records", len(source)),
		zap.Int("destination_records", len(dest)),
		zap.String("variant_policy", r.policy.Name()),
		zap.String("destination_profile", r.profile.Name))
	return source, dest, nil
}

// Load implements reconcile.Loader.
func (r *Reader) Load(ctx context.Context) ([]reconcile.AssetRecord, []reconcile.DestinationRecord, error) {
	return r.Read(ctx)
}

// Check inspects both catalogs against their contract and reports every problem.
func (r *Reader) Check(ctx context.Context) ([]*SchemaReport, error) {
	var reports []*SchemaReport

	targets := []struct {
		catalog string
		path    string
		schema  Schema
	}{
		{SourceCatalog, r.sourcePath, SourceSchema()},
		{DestinationCatalog, r.destPath, DestinationSchema(r.profile)},
	}

	for _, target := range targets {
		err := r.withCopy(ctx, target.catalog, target.path, func(db *gorm.DB) error {
			report, err := InspectSchema(db, target.catalog, target.schema)
			if err != nil {
				return err
			}
			reports = append(reports, report)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// withCopy runs fn against a read-only working copy of livePath and releases the copy
// on every exit path.
func (r *Reader) withCopy(ctx context.Context, catalog, livePath string, fn func(db *gorm.DB) error) error {
	start := time.Now()
	snap, err := r.ws.Snapshot(ctx, livePath)
	if err != nil {
		return fmt.Errorf("copy %s catalog: %w", catalog, err)
	}
	defer func() {
		if err := snap.Release(); err != nil {
			r.logger.Warn("Failed to release working copy", zap.String("catalog", catalog), zap.Error(err))
		}
	}()

	r.logger.Debug("Working copy acquired",
		zap.String("catalog", catalog),
		zap.String("path", snap.Path),
		zap.Bool("byte_copy", snap.Copied),
		zap.Duration("duration", time.Since(start)))

	db, err := database.Connect(database.Config{Path: snap.Path, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("open %s catalog: %w", catalog, err)
	}
	defer database.Close(db)

	return fn(db)
}
