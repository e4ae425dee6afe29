package transcode

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"vidforge/internal/blobstore"
)

// Transcoder runs ffmpeg against staged local inputs and publishes outputs
// to the blob store. Operations are independent and safe to run
// concurrently against the same input; each writes a distinct output key.
type Transcoder struct {
	binary string
	blobs  blobstore.Store
}

// New constructs a Transcoder. An empty binary resolves "ffmpeg" via PATH.
func New(binary string, blobs blobstore.Store) *Transcoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{binary: binary, blobs: blobs}
}

// ExtractFrame captures a single frame at atSeconds and stores it under
// outputKey. An offset beyond the input's end yields an Error wrapping
// ErrNoFrame.
func (t *Transcoder) ExtractFrame(ctx context.Context, inputPath, outputKey string, atSeconds float64) error {
	output := scratchPath(inputPath, outputKey)
	args := buildFrameArgs(inputPath, atSeconds, output)
	if err := t.run(ctx, OpExtractFrame, args); err != nil {
		// A cancelled run also leaves no output; report the cancellation,
		// not a bogus out-of-range capture.
		if ctx.Err() != nil {
			return err
		}
		// An out-of-range seek makes ffmpeg fail on the empty output.
		if missingOutput(output) {
			return opError(OpExtractFrame, "capture offset beyond input duration", ErrNoFrame)
		}
		return err
	}
	if missingOutput(output) {
		return opError(OpExtractFrame, "capture offset beyond input duration", ErrNoFrame)
	}
	return t.publish(ctx, OpExtractFrame, output, outputKey)
}

// Reencode produces the canonical full-resolution re-encode under outputKey.
func (t *Transcoder) Reencode(ctx context.Context, inputPath, outputKey string, profile VideoProfile) error {
	output := scratchPath(inputPath, outputKey)
	if err := t.run(ctx, OpReencode, buildReencodeArgs(inputPath, profile, output)); err != nil {
		return err
	}
	return t.publish(ctx, OpReencode, output, outputKey)
}

// Resize produces a downsized re-encode at the given resolution under
// outputKey.
func (t *Transcoder) Resize(ctx context.Context, inputPath, outputKey string, profile VideoProfile, width, height int) error {
	output := scratchPath(inputPath, outputKey)
	if err := t.run(ctx, OpResize, buildResizeArgs(inputPath, profile, width, height, output)); err != nil {
		return err
	}
	return t.publish(ctx, OpResize, output, outputKey)
}

// ExtractAudio demuxes and encodes the audio track under outputKey.
func (t *Transcoder) ExtractAudio(ctx context.Context, inputPath, outputKey string, profile AudioProfile) error {
	output := scratchPath(inputPath, outputKey)
	if err := t.run(ctx, OpExtractAudio, buildAudioArgs(inputPath, profile, output)); err != nil {
		return err
	}
	return t.publish(ctx, OpExtractAudio, output, outputKey)
}

func (t *Transcoder) run(ctx context.Context, op string, args []string) error {
	cmd := exec.CommandContext(ctx, t.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = "ffmpeg exited with an error"
		}
		return opError(op, truncate(reason, 500), err)
	}
	return nil
}

// publish moves a finished scratch output into the blob store and removes
// the local copy regardless of outcome.
func (t *Transcoder) publish(ctx context.Context, op, output, outputKey string) error {
	defer os.Remove(output)

	file, err := os.Open(output)
	if err != nil {
		return opError(op, "open transcode output", err)
	}
	defer file.Close()

	if err := t.blobs.Put(ctx, outputKey, file); err != nil {
		return opError(op, "store transcode output", err)
	}
	return nil
}

// scratchPath places the local output next to the staged input so one job
// directory holds all in-flight files.
func scratchPath(inputPath, outputKey string) string {
	return filepath.Join(filepath.Dir(inputPath), path.Base(outputKey))
}

func missingOutput(output string) bool {
	info, err := os.Stat(output)
	if err != nil {
		return errors.Is(err, os.ErrNotExist)
	}
	return info.Size() == 0
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
