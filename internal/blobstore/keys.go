package blobstore

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// OriginalKey derives a fresh key for an uploaded source file, preserving a
// sanitized form of its extension.
func OriginalKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return "originals/" + uuid.NewString() + ext
}

// DerivedKey places a named artifact under the job that produced it.
func DerivedKey(jobID, name string) string {
	return "derived/" + jobID + "/" + name
}
