package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vidforge/internal/blobstore"
	"vidforge/internal/config"
	"vidforge/internal/logging"
	"vidforge/internal/metrics"
	"vidforge/internal/probe"
	"vidforge/internal/transcode"
)

// Prober inspects a staged input file.
type Prober interface {
	Inspect(ctx context.Context, path string) (probe.Result, error)
}

// Transcoder produces one derived artifact per call. Implementations must
// tolerate concurrent calls against the same input path.
type Transcoder interface {
	ExtractFrame(ctx context.Context, inputPath, outputKey string, atSeconds float64) error
	Reencode(ctx context.Context, inputPath, outputKey string, profile transcode.VideoProfile) error
	Resize(ctx context.Context, inputPath, outputKey string, profile transcode.VideoProfile, width, height int) error
	ExtractAudio(ctx context.Context, inputPath, outputKey string, profile transcode.AudioProfile) error
}

// Result is the terminal outcome of one pipeline execution.
type Result struct {
	JobID     string
	State     State
	Info      probe.StreamInfo
	Artifacts map[Kind]string
}

// Orchestrator drives one upload through probe, dispatch, collect, and the
// commit-or-rollback decision. It owns every blob it produces until the
// caller commits the artifact set to the catalog.
type Orchestrator struct {
	cfg    *config.Config
	prober Prober
	trans  Transcoder
	blobs  blobstore.Store
	policy Policy
	logger *slog.Logger
}

// NewOrchestrator constructs an orchestrator from its collaborators.
func NewOrchestrator(cfg *config.Config, prober Prober, trans Transcoder, blobs blobstore.Store, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		prober: prober,
		trans:  trans,
		blobs:  blobs,
		policy: Policy{StrictAudio: cfg.Pipeline.StrictAudio},
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes the full pipeline for the original upload stored under
// inputKey. On any fatal failure every blob this job produced, including
// the original upload, is deleted before Run returns.
func (o *Orchestrator) Run(ctx context.Context, inputKey string) (*Result, error) {
	job := NewJob(inputKey)
	logger := o.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldBlobKey, inputKey),
	)
	start := time.Now()
	metrics.PipelineStarted()
	defer metrics.PipelineFinished()

	workDir := filepath.Join(o.cfg.Paths.WorkDir, job.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		o.rollback(ctx, logger, job)
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "input"+path.Ext(inputKey))
	if err := o.stageInput(ctx, inputKey, inputPath); err != nil {
		o.rollback(ctx, logger, job)
		o.observe(job, start)
		return nil, err
	}

	// Probing
	probed, err := o.prober.Inspect(ctx, inputPath)
	if err != nil {
		logger.Error("probe failed, aborting pipeline", logging.Args(logging.Error(err))...)
		o.rollback(ctx, logger, job)
		o.observe(job, start)
		return nil, err
	}
	job.Info = probed.StreamInfo()
	logger.Info("input probed",
		logging.Args(
			logging.Bool("has_video", job.Info.HasVideo),
			logging.Bool("has_audio", job.Info.HasAudio),
			logging.Float64("duration_seconds", job.Info.DurationSeconds),
			logging.String("video_codec", job.Info.VideoCodec),
		)...)

	// Dispatching
	job.State = StateDispatching
	kinds := o.policy.RequiredArtifacts(job.Info)
	var wg sync.WaitGroup
	for _, kind := range kinds {
		wg.Add(1)
		go func(kind Kind) {
			defer wg.Done()
			key := blobstore.DerivedKey(job.ID, kind.ArtifactName())
			if err := o.produce(ctx, kind, inputPath, key); err != nil {
				job.recordOutcome(kind, Outcome{Err: err})
				return
			}
			job.recordOutcome(kind, Outcome{Key: key})
		}(kind)
	}

	// Collecting: a full join so cleanup always sees the complete outcome
	// set, never a short-circuited prefix of it.
	job.State = StateCollecting
	wg.Wait()

	fatal := o.decide(logger, job, kinds)
	if fatal == nil && ctx.Err() != nil {
		fatal = ctx.Err()
	}
	if fatal != nil {
		o.rollback(ctx, logger, job)
		o.observe(job, start)
		return nil, fatal
	}

	job.State = StateCommitted
	artifacts := make(map[Kind]string, len(kinds))
	for _, kind := range kinds {
		if outcome, ok := job.Outcome(kind); ok && outcome.Succeeded() {
			artifacts[kind] = outcome.Key
		}
	}
	o.observe(job, start)
	logger.Info("pipeline committed",
		logging.Args(
			logging.Int("artifacts", len(artifacts)),
			logging.Duration("elapsed", time.Since(start)),
		)...)
	return &Result{JobID: job.ID, State: job.State, Info: job.Info, Artifacts: artifacts}, nil
}

func (o *Orchestrator) produce(ctx context.Context, kind Kind, inputPath, outputKey string) error {
	p := o.cfg.Pipeline
	videoProfile := transcode.VideoProfile{Codec: p.VideoCodec, Preset: p.VideoPreset, CRF: p.VideoCRF}
	switch kind {
	case KindThumbnail:
		return o.trans.ExtractFrame(ctx, inputPath, outputKey, p.FrameOffsetSeconds)
	case KindCanonical:
		return o.trans.Reencode(ctx, inputPath, outputKey, videoProfile)
	case KindResized:
		return o.trans.Resize(ctx, inputPath, outputKey, videoProfile, p.ResizeWidth, p.ResizeHeight)
	case KindAudio:
		return o.trans.ExtractAudio(ctx, inputPath, outputKey, transcode.AudioProfile{Codec: p.AudioCodec, Bitrate: p.AudioBitrate})
	default:
		return fmt.Errorf("unknown artifact kind %q", kind)
	}
}

// decide converts the per-artifact outcomes into a single commit/rollback
// decision. The returned error is the first fatal cause in deterministic
// kind order, or nil to commit.
func (o *Orchestrator) decide(logger *slog.Logger, job *Job, kinds []Kind) error {
	var fatal error
	for _, kind := range kindOrder {
		if !contains(kinds, kind) {
			continue
		}
		outcome, ok := job.Outcome(kind)
		if !ok {
			continue
		}
		if outcome.Err == nil {
			continue
		}
		metrics.ArtifactFailed(string(kind))
		if o.policy.HardRequired(kind) {
			logger.Error("required artifact failed",
				logging.Args(
					logging.String(logging.FieldArtifact, string(kind)),
					logging.Error(outcome.Err),
				)...)
			if fatal == nil {
				fatal = fmt.Errorf("artifact %s: %w", kind, outcome.Err)
			}
			continue
		}
		logger.Warn("best-effort artifact failed, committing without it",
			logging.Args(
				logging.String(logging.FieldArtifact, string(kind)),
				logging.Error(outcome.Err),
			)...)
	}
	return fatal
}

// rollback deletes every blob the job produced plus the original upload.
// It runs even when the surrounding context is cancelled so an aborted
// pipeline never leaks blobs.
func (o *Orchestrator) rollback(ctx context.Context, logger *slog.Logger, job *Job) {
	job.State = StateRolledBack
	cleanupCtx := context.WithoutCancel(ctx)
	keys := append(job.ProducedKeys(), job.InputKey)
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := o.blobs.Delete(cleanupCtx, key); err != nil {
			logger.Warn("rollback blob delete failed",
				logging.Args(
					logging.String(logging.FieldBlobKey, key),
					logging.Error(err),
				)...)
		}
	}
	logger.Info("pipeline rolled back", logging.Args(logging.Int("blobs_deleted", len(keys)))...)
}

// stager is implemented by blob stores that can materialize a blob as a
// local file more directly than Get plus a copy.
type stager interface {
	StageTo(ctx context.Context, key, dst string) error
}

func (o *Orchestrator) stageInput(ctx context.Context, inputKey, inputPath string) error {
	if st, ok := o.blobs.(stager); ok {
		if err := st.StageTo(ctx, inputKey, inputPath); err != nil {
			return fmt.Errorf("stage input: %w", err)
		}
		return nil
	}

	src, err := o.blobs.Get(ctx, inputKey)
	if err != nil {
		return fmt.Errorf("stage input: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(inputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("stage input: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("stage input: %w", err)
	}
	return dst.Close()
}

func (o *Orchestrator) observe(job *Job, start time.Time) {
	metrics.ObservePipeline(string(job.State), time.Since(start))
}

func contains(kinds []Kind, kind Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
