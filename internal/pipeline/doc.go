// Package pipeline orchestrates the derived-artifact transcoding for one
// uploaded video: probe the input, consult the artifact policy, run the
// required transcodes concurrently, and convert the per-artifact outcomes
// into a single commit-or-rollback decision.
//
// A rolled-back job deletes every blob it produced, including the original
// upload; partial artifact sets never escape this package.
package pipeline
