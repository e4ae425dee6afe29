package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidforge/internal/catalog"
	"vidforge/internal/config"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`
[paths]
data_dir = %q
blob_dir = %q
work_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"
`, filepath.Join(base, "data"), filepath.Join(base, "blobs"), filepath.Join(base, "work"), filepath.Join(base, "logs"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "vidforge.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("generated sample does not load: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestListEmptyCatalog(t *testing.T) {
	base := t.TempDir()
	path := writeTestConfig(t, base)

	out, err := runCommand(t, "--config", path, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Catalog is empty") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestListRendersRecords(t *testing.T) {
	base := t.TempDir()
	path := writeTestConfig(t, base)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if _, err := store.Insert(context.Background(), &catalog.Record{
		Title:        "CLI Row",
		OriginalKey:  "originals/cli.mp4",
		ThumbnailKey: "derived/j/thumbnail.png",
		CanonicalKey: "derived/j/canonical.mp4",
		ResizedKey:   "derived/j/resized.mp4",
	}); err != nil {
		t.Fatalf("insert record: %v", err)
	}
	store.Close()

	out, err := runCommand(t, "--config", path, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "CLI Row") {
		t.Fatalf("expected record title in output: %q", out)
	}

	jsonOut, err := runCommand(t, "--config", path, "list", "--json")
	if err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
	if !strings.Contains(jsonOut, "\"Title\": \"CLI Row\"") {
		t.Fatalf("expected JSON payload: %q", jsonOut)
	}
}

func TestRemoveUnknownRecord(t *testing.T) {
	base := t.TempDir()
	path := writeTestConfig(t, base)

	if _, err := runCommand(t, "--config", path, "rm", "999"); err == nil {
		t.Fatal("expected error for unknown record")
	}
	if _, err := runCommand(t, "--config", path, "rm", "not-a-number"); err == nil {
		t.Fatal("expected error for invalid id")
	}
}
