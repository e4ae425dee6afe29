// Package blobstore stores original uploads and derived artifacts under
// path-like keys. The filesystem implementation is the only backend; the
// Store interface keeps the pipeline and lifecycle manager storage-agnostic.
package blobstore
