package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vidforge/internal/catalog"
	"vidforge/internal/testsupport"
)

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := store.Insert(ctx, &catalog.Record{
		Title:        "Launch Footage",
		OriginalKey:  "originals/abc.mp4",
		ThumbnailKey: "derived/job/thumbnail.png",
		CanonicalKey: "derived/job/canonical.mp4",
		ResizedKey:   "derived/job/resized.mp4",
		AudioKey:     "derived/job/audio.mp3",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}
	if record.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be populated")
	}

	fetched, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Title != "Launch Footage" {
		t.Fatalf("unexpected title: %q", fetched.Title)
	}
	if !fetched.HasAudio() {
		t.Fatal("expected audio key to survive the round trip")
	}
}

func TestInsertWithoutAudioKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	record := testsupport.NewRecord(t, store, "silent")
	fetched, err := store.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.HasAudio() {
		t.Fatalf("expected empty audio key, got %q", fetched.AudioKey)
	}
}

func TestGetByIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.GetByID(context.Background(), 4242)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.NewRecord(t, store, "ephemeral")

	if err := store.DeleteByID(ctx, record.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if _, err := store.GetByID(ctx, record.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteByID(ctx, record.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		testsupport.NewRecord(t, store, fmt.Sprintf("clip-%d", i))
		time.Sleep(5 * time.Millisecond)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Fatalf("records out of order: %v before %v", records[i-1].CreatedAt, records[i].CreatedAt)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
}

func TestBlobKeysSkipsEmpty(t *testing.T) {
	record := catalog.Record{
		OriginalKey:  "originals/a.mp4",
		ThumbnailKey: "derived/j/thumbnail.png",
		CanonicalKey: "derived/j/canonical.mp4",
		ResizedKey:   "derived/j/resized.mp4",
	}
	keys := record.BlobKeys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %d: %v", len(keys), keys)
	}
	for _, key := range keys {
		if key == "" {
			t.Fatal("unexpected empty key")
		}
	}
}
