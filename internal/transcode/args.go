package transcode

import (
	"fmt"
	"strconv"
)

// VideoProfile describes the target codec settings for re-encodes.
type VideoProfile struct {
	Codec  string
	Preset string
	CRF    int
}

// AudioProfile describes the target codec settings for audio extraction.
type AudioProfile struct {
	Codec   string
	Bitrate string
}

// preamble is shared by every ffmpeg invocation: non-interactive, overwrite
// scratch outputs, quiet except for real errors.
func preamble() []string {
	return []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error"}
}

// buildFrameArgs captures a single frame at the given offset. The seek flag
// precedes the input so ffmpeg seeks by demuxing, which is exact enough for
// thumbnail purposes and much faster on long inputs.
func buildFrameArgs(input string, atSeconds float64, output string) []string {
	args := preamble()
	args = append(args,
		"-ss", strconv.FormatFloat(atSeconds, 'f', -1, 64),
		"-i", input,
		"-frames:v", "1",
		"-q:v", "2",
		output,
	)
	return args
}

// buildReencodeArgs re-encodes to the profile codec preserving the source
// resolution.
func buildReencodeArgs(input string, profile VideoProfile, output string) []string {
	args := preamble()
	args = append(args, "-i", input)
	args = append(args, videoCodecArgs(profile)...)
	args = append(args,
		"-c:a", "aac",
		"-movflags", "+faststart",
		output,
	)
	return args
}

// buildResizeArgs re-encodes with an exact target resolution. Width and
// height come from the artifact policy, not from this package.
func buildResizeArgs(input string, profile VideoProfile, width, height int, output string) []string {
	args := preamble()
	args = append(args, "-i", input)
	args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", width, height))
	args = append(args, videoCodecArgs(profile)...)
	args = append(args,
		"-c:a", "aac",
		"-movflags", "+faststart",
		output,
	)
	return args
}

// buildAudioArgs demuxes and encodes the audio stream only.
func buildAudioArgs(input string, profile AudioProfile, output string) []string {
	args := preamble()
	args = append(args,
		"-i", input,
		"-vn",
		"-c:a", profile.Codec,
		"-b:a", profile.Bitrate,
		output,
	)
	return args
}

func videoCodecArgs(profile VideoProfile) []string {
	return []string{
		"-c:v", profile.Codec,
		"-preset", profile.Preset,
		"-crf", strconv.Itoa(profile.CRF),
	}
}
