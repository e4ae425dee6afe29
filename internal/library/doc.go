// Package library owns the record lifecycle. It validates uploads at the
// boundary, stores originals, runs the artifact pipeline, and keeps catalog
// rows and blobs consistent when inserts fail or records are removed.
package library
