package export

import (
	"bytes"
	"context"
	"fmt"

	"talent_pipeline_backend/internal/adapters/storage"
	"talent_pipeline_backend/platform/logger"
)

// Archiver stores rendered reports in object storage.
type Archiver struct {
	store  storage.ReportStore
	bucket string
	log    *logger.Logger
}

// NewArchiver creates an Archiver writing into bucket.
func NewArchiver(store storage.ReportStore, bucket string, log *logger.Logger) *Archiver {
	if log == nil {
		log = logger.Discard()
	}
	return &Archiver{store: store, bucket: bucket, log: log}
}

// Init makes sure the report bucket exists.
func (a *Archiver) Init(ctx context.Context) error {
	return a.store.EnsureBucketExists(ctx, a.bucket)
}

// Archive uploads report under folder and returns a download link.
func (a *Archiver) Archive(ctx context.Context, folder, filename string, report []byte) (*storage.PresignedURL, error) {
	key, err := a.store.UploadFile(ctx, a.bucket, folder, filename, ContentType, bytes.NewReader(report), int64(len(report)))
	if err != nil {
		return nil, fmt.Errorf("archive report: %w", err)
	}

	link, err := a.store.GenerateDownloadURL(ctx, a.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("presign report: %w", err)
	}

	a.log.WithContext(ctx).Info("pipeline report archived", "bucket", a.bucket, "key", key, "bytes", len(report))
	return link, nil
}
