package testsupport

import (
	"context"
	"testing"

	"vidforge/internal/catalog"
	"vidforge/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecord inserts a committed record for tests using the provided store.
func NewRecord(t testing.TB, store *catalog.Store, title string) *catalog.Record {
	t.Helper()

	record, err := store.Insert(context.Background(), &catalog.Record{
		Title:        title,
		OriginalKey:  "originals/" + title + ".mp4",
		ThumbnailKey: "derived/" + title + "/thumbnail.png",
		CanonicalKey: "derived/" + title + "/canonical.mp4",
		ResizedKey:   "derived/" + title + "/resized.mp4",
	})
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return record
}
