package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrProbeFailed marks inputs that could not be read or decoded as a media
// container. It is fatal for the whole pipeline.
var ErrProbeFailed = errors.New("probe failed")

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// StreamInfo is the distilled stream composition the artifact policy
// consumes. Audio presence reflects the stream list, never container
// headers.
type StreamInfo struct {
	HasVideo        bool
	HasAudio        bool
	DurationSeconds float64
	VideoCodec      string
	AudioCodec      string
}

// Prober inspects media files with ffprobe.
type Prober struct {
	binary string
}

// NewProber constructs a Prober using the given ffprobe binary. An empty
// binary resolves "ffprobe" via PATH.
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response. Failures wrap ErrProbeFailed.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, fmt.Errorf("%w: empty path", ErrProbeFailed)
	}

	cmd := exec.CommandContext(ctx, p.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("%w: ffprobe: %s: %s", ErrProbeFailed, err, strings.TrimSpace(string(output)))
	}

	return ParseJSON(output)
}

// ParseJSON converts raw ffprobe JSON output into a Result. Exported for
// testing without a real ffprobe binary.
func ParseJSON(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("%w: parse ffprobe output: %s", ErrProbeFailed, err)
	}
	return result, nil
}

// StreamInfo derives the policy-facing stream composition by enumerating
// streams. A container that declares an audio track but carries no audio
// stream reports HasAudio false.
func (r Result) StreamInfo() StreamInfo {
	info := StreamInfo{DurationSeconds: r.DurationSeconds()}
	for _, stream := range r.Streams {
		switch stream.CodecType {
		case "video":
			if !info.HasVideo {
				info.HasVideo = true
				info.VideoCodec = stream.CodecName
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = stream.CodecName
			}
		}
	}
	return info
}

// DurationSeconds returns the container duration, falling back to the
// longest stream duration when the format section omits it.
func (r Result) DurationSeconds() float64 {
	if d := parseSeconds(r.Format.Duration); d > 0 {
		return d
	}
	var longest float64
	for _, stream := range r.Streams {
		if d := parseSeconds(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// AudioStreamCount returns the number of audio streams in the container.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if stream.CodecType == "audio" {
			count++
		}
	}
	return count
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
