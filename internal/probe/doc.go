// Package probe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - StreamInfo: the distilled composition consumed by the artifact policy
//
// Primary entry point:
//   - Prober.Inspect: executes ffprobe and returns a parsed Result
package probe
