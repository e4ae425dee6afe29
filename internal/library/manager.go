package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"vidforge/internal/blobstore"
	"vidforge/internal/catalog"
	"vidforge/internal/config"
	"vidforge/internal/logging"
	"vidforge/internal/metrics"
	"vidforge/internal/pipeline"
)

// Runner executes the artifact pipeline for a staged original.
type Runner interface {
	Run(ctx context.Context, inputKey string) (*pipeline.Result, error)
}

// Manager owns the record lifecycle: it validates uploads at the boundary,
// stores originals, drives the pipeline, and keeps catalog rows and blobs
// consistent on both the commit and the delete path.
type Manager struct {
	cfg    *config.Config
	store  *catalog.Store
	blobs  blobstore.Store
	runner Runner
	pool   *pipeline.Pool
	logger *slog.Logger
}

// NewManager wires a lifecycle manager from its collaborators.
func NewManager(cfg *config.Config, store *catalog.Store, blobs blobstore.Store, runner Runner, pool *pipeline.Pool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		blobs:  blobs,
		runner: runner,
		pool:   pool,
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// Upload validates and ingests a single video synchronously. The returned
// record is the committed catalog row. When no pipeline slot is free the
// upload is rejected with pipeline.ErrBusy before any byte is stored.
func (m *Manager) Upload(ctx context.Context, title, filename string, r io.Reader, size int64) (*catalog.Record, error) {
	normalized, err := NormalizeTitle(title)
	if err != nil {
		metrics.UploadResult("rejected")
		return nil, err
	}
	if size > m.cfg.Upload.MaxBytes {
		metrics.UploadResult("rejected")
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	header := make([]byte, sniffLimit)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		metrics.UploadResult("rejected")
		return nil, fmt.Errorf("read upload: %w", err)
	}
	header = header[:n]
	if int64(n) > m.cfg.Upload.MaxBytes {
		metrics.UploadResult("rejected")
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrTooLarge, m.cfg.Upload.MaxBytes)
	}
	if err := checkContainer(header, m.cfg.Upload.AllowedFormats); err != nil {
		metrics.UploadResult("rejected")
		return nil, err
	}

	if !m.pool.TryAcquire() {
		metrics.UploadResult("busy")
		return nil, pipeline.ErrBusy
	}
	defer m.pool.Release()

	// The declared size is advisory; the stream itself is capped at one
	// byte past the ceiling so an understated size still gets caught.
	originalKey := blobstore.OriginalKey(filename)
	counted := &countingReader{r: io.MultiReader(bytes.NewReader(header), io.LimitReader(r, m.cfg.Upload.MaxBytes+1-int64(n)))}
	if err := m.blobs.Put(ctx, originalKey, counted); err != nil {
		metrics.UploadResult("failed")
		return nil, fmt.Errorf("store original: %w", err)
	}
	if counted.n > m.cfg.Upload.MaxBytes {
		m.discardBlobs(ctx, []string{originalKey})
		metrics.UploadResult("rejected")
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrTooLarge, m.cfg.Upload.MaxBytes)
	}

	result, err := m.runner.Run(ctx, originalKey)
	if err != nil {
		// The pipeline rolls back its own blobs, the original included.
		metrics.UploadResult("failed")
		return nil, err
	}

	record := &catalog.Record{
		Title:        normalized,
		OriginalKey:  originalKey,
		ThumbnailKey: result.Artifacts[pipeline.KindThumbnail],
		CanonicalKey: result.Artifacts[pipeline.KindCanonical],
		ResizedKey:   result.Artifacts[pipeline.KindResized],
		AudioKey:     result.Artifacts[pipeline.KindAudio],
	}
	committed, err := m.store.Insert(ctx, record)
	if err != nil {
		m.discardBlobs(ctx, record.BlobKeys())
		metrics.UploadResult("failed")
		return nil, err
	}

	m.logger.Info("upload committed",
		logging.Int64(logging.FieldRecordID, committed.ID),
		logging.String(logging.FieldJobID, result.JobID),
		logging.String("title", committed.Title))
	metrics.UploadResult("committed")
	return committed, nil
}

// Delete removes a record and every blob it references. Blob deletion runs
// first so a crash never leaves a catalog row pointing at reclaimed keys
// without a record to find them by. Individual blob failures are logged and
// do not abort the row delete.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	record, err := m.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, key := range record.BlobKeys() {
		if err := m.blobs.Delete(ctx, key); err != nil {
			m.logger.Warn("blob delete failed",
				logging.Int64(logging.FieldRecordID, id),
				logging.String(logging.FieldBlobKey, key),
				logging.Error(err))
		}
	}
	if err := m.store.DeleteByID(ctx, id); err != nil {
		return err
	}
	m.logger.Info("record deleted", logging.Int64(logging.FieldRecordID, id))
	return nil
}

// Get returns a single catalog record.
func (m *Manager) Get(ctx context.Context, id int64) (*catalog.Record, error) {
	return m.store.GetByID(ctx, id)
}

// List returns all records, newest first.
func (m *Manager) List(ctx context.Context) ([]*catalog.Record, error) {
	return m.store.List(ctx)
}

// Status reports catalog size and pipeline load.
type Status struct {
	Records         int `json:"records"`
	ActivePipelines int `json:"active_pipelines"`
	PipelineSlots   int `json:"pipeline_slots"`
}

func (m *Manager) Status(ctx context.Context) (Status, error) {
	count, err := m.store.Count(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Records:         count,
		ActivePipelines: m.pool.Active(),
		PipelineSlots:   m.pool.Capacity(),
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	read, err := c.r.Read(p)
	c.n += int64(read)
	return read, err
}

func (m *Manager) discardBlobs(ctx context.Context, keys []string) {
	cleanup := context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := m.blobs.Delete(cleanup, key); err != nil {
			m.logger.Warn("cleanup delete failed",
				logging.String(logging.FieldBlobKey, key),
				logging.Error(err))
		}
	}
}
