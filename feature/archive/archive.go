package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"catalog-sync/core/storage"
	"catalog-sync/feature/pipeline"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ReportName is the object name of the run report inside a run's prefix.
const ReportName = "report.json"

// Archiver implements pipeline.Archiver on top of a storage client.
type Archiver struct {
	client storage.Client
	bucket string
	region string
	prefix string
	logger *zap.Logger
}

// New creates an archiver for the configured bucket.
func New(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
		logger: logger,
	}
}

// Archive uploads the scratch directories of the result's degraded batches and the
// report. Upload failures of single files are collected and returned together.
func (a *Archiver) Archive(ctx context.Context, result *pipeline.Result) error {
	if err := storage.EnsureBucket(ctx, a.client, a.bucket, a.region); err != nil {
		return err
	}

	var errs []error
	uploaded := 0
	for _, d := range result.Degraded {
		if d.ScratchDir == "" {
			continue
		}
		n, err := a.uploadDir(ctx, d.ScratchDir, a.key(result.RunID, fmt.Sprintf("batch-%d", d.BatchID)))
		uploaded += n
		if err != nil {
			errs = append(errs, fmt.Errorf("batch %d: %w", d.BatchID, err))
		}
	}

	report, err := result.MarshalReport()
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("encode report: %w", err))...)
	}
	reportKey := a.key(result.RunID, ReportName)
	if _, err := a.client.PutObject(ctx, a.bucket, reportKey, bytes.NewReader(report), int64(len(report)),
		minio.PutObjectOptions{ContentType: "application/json"}); err != nil {
		errs = append(errs, fmt.Errorf("upload %s: %w", reportKey, err))
	}

	a.logger.Info("Archived degraded batches",
		zap.String("run_id", result.RunID),
		zap.String("bucket", a.bucket),
		zap.Int("batches", len(result.Degraded)),
		zap.Int("files", uploaded))
	return errors.Join(errs...)
}

func (a *Archiver) key(parts ...string) string {
	return path.Join(append([]string{a.prefix}, parts...)...)
}

// uploadDir uploads every regular file below dir, keeping relative paths.
func (a *Archiver) uploadDir(ctx context.Context, dir, prefix string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if err := a.uploadFile(ctx, p, path.Join(prefix, filepath.ToSlash(rel))); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	return uploaded, err
}

func (a *Archiver) uploadFile(ctx context.Context, src, key string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(filepath.Ext(src))}
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}
	if _, err := a.client.PutObject(ctx, a.bucket, key, f, info.Size(), opts); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
