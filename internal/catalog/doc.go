// Package catalog persists media records in SQLite. A record exists only
// for fully committed pipelines; the lifecycle manager guarantees the blobs
// it references outlive the row.
package catalog
