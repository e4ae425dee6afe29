package config

const (
	defaultDataDir = "~/.local/share/vidforge"
	defaultBlobDir = "~/.local/share/vidforge/blobs"
	defaultWorkDir = "~/.local/share/vidforge/work"
	defaultLogDir  = "~/.local/share/vidforge/logs"
	defaultAPIBind = "127.0.0.1:7590"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultFrameOffsetSeconds = 2.0
	defaultResizeWidth        = 320
	defaultResizeHeight       = 240
	defaultVideoCodec         = "libx264"
	defaultVideoPreset        = "medium"
	defaultVideoCRF           = 23
	defaultAudioCodec         = "libmp3lame"
	defaultAudioBitrate       = "192k"

	defaultUploadMaxBytes = 100 << 20

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

func defaultAllowedFormats() []string {
	return []string{"mp4", "mov", "avi"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			BlobDir: defaultBlobDir,
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Pipeline: Pipeline{
			FrameOffsetSeconds: defaultFrameOffsetSeconds,
			ResizeWidth:        defaultResizeWidth,
			ResizeHeight:       defaultResizeHeight,
			VideoCodec:         defaultVideoCodec,
			VideoPreset:        defaultVideoPreset,
			VideoCRF:           defaultVideoCRF,
			AudioCodec:         defaultAudioCodec,
			AudioBitrate:       defaultAudioBitrate,
		},
		Upload: Upload{
			MaxBytes:       defaultUploadMaxBytes,
			AllowedFormats: defaultAllowedFormats(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
