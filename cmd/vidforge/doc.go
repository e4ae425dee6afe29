// Package main hosts the vidforge CLI entrypoint and command graph.
//
// The Cobra-based command tree covers serving the ingest API, catalog
// listing and removal, and configuration scaffolding. It centralizes
// configuration resolution and logging setup so subcommands can focus on
// user experience instead of wiring.
package main
