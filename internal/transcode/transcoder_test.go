package transcode_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"vidforge/internal/blobstore"
	"vidforge/internal/transcode"
)

// writeStub installs a fake ffmpeg that writes content to the final
// argument, mimicking a successful encode.
func writeStub(t *testing.T, dir, behavior string) string {
	t.Helper()
	stub := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\n"+behavior+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return stub
}

func newFixture(t *testing.T, behavior string) (*transcode.Transcoder, *blobstore.FS, string) {
	t.Helper()
	base := t.TempDir()
	blobs, err := blobstore.NewFS(filepath.Join(base, "blobs"))
	if err != nil {
		t.Fatalf("NewFS failed: %v", err)
	}
	stub := writeStub(t, base, behavior)

	jobDir := filepath.Join(base, "job")
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatalf("mkdir job dir: %v", err)
	}
	input := filepath.Join(jobDir, "input.mp4")
	if err := os.WriteFile(input, []byte("source"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return transcode.New(stub, blobs), blobs, input
}

const emitOutput = `for a in "$@"; do out="$a"; done
printf 'encoded' > "$out"`

func TestExtractFramePublishes(t *testing.T) {
	trans, blobs, input := newFixture(t, emitOutput)
	ctx := context.Background()

	if err := trans.ExtractFrame(ctx, input, "derived/job/thumbnail.png", 2.0); err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}

	rc, err := blobs.Get(ctx, "derived/job/thumbnail.png")
	if err != nil {
		t.Fatalf("blob missing: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "encoded" {
		t.Fatalf("unexpected blob content: %q", data)
	}

	// Scratch output is removed after publishing.
	if _, err := os.Stat(filepath.Join(filepath.Dir(input), "thumbnail.png")); !os.IsNotExist(err) {
		t.Fatalf("scratch file should be gone: %v", err)
	}
}

func TestExtractFrameBeyondDuration(t *testing.T) {
	// ffmpeg exits zero but produces no output when the seek lands past EOF.
	trans, _, input := newFixture(t, "exit 0")

	err := trans.ExtractFrame(context.Background(), input, "derived/job/thumbnail.png", 9999)
	if !errors.Is(err, transcode.ErrNoFrame) {
		t.Fatalf("expected ErrNoFrame, got %v", err)
	}
	var opErr *transcode.Error
	if !errors.As(err, &opErr) || opErr.Op != transcode.OpExtractFrame {
		t.Fatalf("expected extract_frame op, got %+v", err)
	}
}

func TestReencodeCapturesStderr(t *testing.T) {
	trans, _, input := newFixture(t, "echo 'unsupported codec' >&2; exit 1")

	err := trans.Reencode(context.Background(), input, "derived/job/canonical.mp4", transcode.VideoProfile{Codec: "libx264", Preset: "fast", CRF: 23})
	var opErr *transcode.Error
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *transcode.Error, got %v", err)
	}
	if opErr.Op != transcode.OpReencode || opErr.Reason != "unsupported codec" {
		t.Fatalf("unexpected error details: %+v", opErr)
	}
}

func TestResizeAndAudioPublish(t *testing.T) {
	trans, blobs, input := newFixture(t, emitOutput)
	ctx := context.Background()

	if err := trans.Resize(ctx, input, "derived/job/resized.mp4", transcode.VideoProfile{Codec: "libx264", Preset: "fast", CRF: 23}, 320, 240); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if err := trans.ExtractAudio(ctx, input, "derived/job/audio.mp3", transcode.AudioProfile{Codec: "libmp3lame", Bitrate: "192k"}); err != nil {
		t.Fatalf("ExtractAudio failed: %v", err)
	}

	for _, key := range []string{"derived/job/resized.mp4", "derived/job/audio.mp3"} {
		ok, err := blobs.Exists(ctx, key)
		if err != nil || !ok {
			t.Fatalf("expected blob %s: %v", key, err)
		}
	}
}

func TestExtractFrameCancellationIsNotNoFrame(t *testing.T) {
	// A cancelled run leaves no output file; the caller must still see the
	// cancellation rather than an out-of-range capture error.
	trans, _, input := newFixture(t, "sleep 10")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := trans.ExtractFrame(ctx, input, "derived/job/thumbnail.png", 2.0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, transcode.ErrNoFrame) {
		t.Fatalf("cancellation must not be reported as a missing frame: %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	trans, _, input := newFixture(t, "sleep 10")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := trans.Reencode(ctx, input, "derived/job/canonical.mp4", transcode.VideoProfile{Codec: "libx264", Preset: "fast", CRF: 23})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
