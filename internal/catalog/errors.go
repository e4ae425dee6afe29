package catalog

import "errors"

// ErrNotFound is returned for lookups and deletes on unknown record ids.
var ErrNotFound = errors.New("record not found")

// ErrWriteFailed marks a rejected catalog write. The lifecycle manager
// reacts by rolling back the blobs the record would have referenced.
var ErrWriteFailed = errors.New("catalog write failed")
