// Package server exposes the ingest and catalog operations over a small
// JSON HTTP API, plus Prometheus metrics.
package server
