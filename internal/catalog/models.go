package catalog

import (
	"strings"
	"time"
)

// Record describes one uploaded video and its derived artifacts. Every
// non-empty key references a blob that must exist for the record's entire
// lifetime. AudioKey is empty when the original input carried no audio
// stream.
type Record struct {
	ID           int64
	Title        string
	OriginalKey  string
	ThumbnailKey string
	CanonicalKey string
	ResizedKey   string
	AudioKey     string
	CreatedAt    time.Time
}

// HasAudio reports whether an audio artifact was committed for the record.
func (r Record) HasAudio() bool {
	return strings.TrimSpace(r.AudioKey) != ""
}

// BlobKeys returns every non-empty blob key referenced by the record, in a
// stable order. Used by the lifecycle manager for deletion.
func (r Record) BlobKeys() []string {
	candidates := []string{r.OriginalKey, r.ThumbnailKey, r.CanonicalKey, r.ResizedKey, r.AudioKey}
	keys := make([]string, 0, len(candidates))
	for _, key := range candidates {
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
