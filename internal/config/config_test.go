package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidforge/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists to be false for a missing file")
	}
	defaults := config.Default()
	if cfg.Pipeline.VideoCodec != defaults.Pipeline.VideoCodec {
		t.Fatalf("unexpected video codec: %q", cfg.Pipeline.VideoCodec)
	}
	if cfg.Upload.MaxBytes != defaults.Upload.MaxBytes {
		t.Fatalf("unexpected upload ceiling: %d", cfg.Upload.MaxBytes)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vidforge.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
blob_dir = "` + filepath.Join(dir, "blobs") + `"
work_dir = "` + filepath.Join(dir, "work") + `"
api_bind = "127.0.0.1:9999"

[pipeline]
resize_width = 640
resize_height = 480
strict_audio = true

[upload]
allowed_formats = [".MP4", "mov"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be detected")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Pipeline.ResizeWidth != 640 || cfg.Pipeline.ResizeHeight != 480 {
		t.Fatalf("unexpected resize target: %dx%d", cfg.Pipeline.ResizeWidth, cfg.Pipeline.ResizeHeight)
	}
	if !cfg.Pipeline.StrictAudio {
		t.Fatal("expected strict_audio to be enabled")
	}
	if len(cfg.Upload.AllowedFormats) != 2 || cfg.Upload.AllowedFormats[0] != "mp4" {
		t.Fatalf("expected normalized formats, got %v", cfg.Upload.AllowedFormats)
	}
}

func TestLoadRejectsInvalidCRF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vidforge.toml")
	content := `
[pipeline]
video_crf = 99
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for crf out of range")
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestToolEnvOverrides(t *testing.T) {
	t.Setenv("VIDFORGE_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("VIDFORGE_FFPROBE", "/opt/ffmpeg/bin/ffprobe")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tools.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Tools.FFmpegBinary)
	}
	if cfg.Tools.FFprobeBinary != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.Tools.FFprobeBinary)
	}
}

func TestToolEnvOverridesBeatConfiguredBinaries(t *testing.T) {
	t.Setenv("VIDFORGE_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("VIDFORGE_FFPROBE", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "vidforge.toml")
	content := `
[tools]
ffmpeg_binary = "/usr/local/bin/ffmpeg"
ffprobe_binary = "/usr/local/bin/ffprobe"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tools.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env to win over configured binary, got %q", cfg.Tools.FFmpegBinary)
	}
	if cfg.Tools.FFprobeBinary != "/usr/local/bin/ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.Tools.FFprobeBinary)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.BlobDir = filepath.Join(base, "blobs")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.BlobDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if got := cfg.CatalogPath(); got != filepath.Join(cfg.Paths.DataDir, "catalog.db") {
		t.Fatalf("unexpected catalog path: %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config did not load: %v", err)
	}
}
