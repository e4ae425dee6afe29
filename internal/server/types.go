package server

import (
	"time"

	"vidforge/internal/catalog"
)

// VideoResponse is the wire form of a catalog record.
type VideoResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	OriginalKey  string    `json:"original_key"`
	ThumbnailKey string    `json:"thumbnail_key"`
	CanonicalKey string    `json:"canonical_key"`
	ResizedKey   string    `json:"resized_key"`
	AudioKey     string    `json:"audio_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// VideoListResponse wraps the list endpoint payload.
type VideoListResponse struct {
	Videos []VideoResponse `json:"videos"`
}

func fromRecord(record *catalog.Record) VideoResponse {
	return VideoResponse{
		ID:           record.ID,
		Title:        record.Title,
		OriginalKey:  record.OriginalKey,
		ThumbnailKey: record.ThumbnailKey,
		CanonicalKey: record.CanonicalKey,
		ResizedKey:   record.ResizedKey,
		AudioKey:     record.AudioKey,
		CreatedAt:    record.CreatedAt,
	}
}

func fromRecords(records []*catalog.Record) []VideoResponse {
	out := make([]VideoResponse, 0, len(records))
	for _, record := range records {
		out = append(out, fromRecord(record))
	}
	return out
}
