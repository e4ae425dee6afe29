package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.BlobDir == "" {
		return errors.New("paths.blob_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.FrameOffsetSeconds < 0 {
		return errors.New("pipeline.frame_offset_seconds must not be negative")
	}
	if c.Pipeline.ResizeWidth <= 0 || c.Pipeline.ResizeHeight <= 0 {
		return fmt.Errorf("pipeline resize target %dx%d is invalid", c.Pipeline.ResizeWidth, c.Pipeline.ResizeHeight)
	}
	if c.Pipeline.VideoCRF < 0 || c.Pipeline.VideoCRF > 51 {
		return errors.New("pipeline.video_crf must be between 0 and 51")
	}
	if c.Pipeline.MaxConcurrent < 0 {
		return errors.New("pipeline.max_concurrent must not be negative")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	if len(c.Upload.AllowedFormats) == 0 {
		return errors.New("upload.allowed_formats must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
