// Package transcode wraps ffmpeg invocations for the four derived
// artifacts: still-frame thumbnail, canonical re-encode, downsized preview,
// and extracted audio. It stages nothing itself; callers hand it a local
// input path and it publishes outputs to the blob store.
package transcode
