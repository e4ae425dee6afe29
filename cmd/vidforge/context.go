package main

import (
	"strings"
	"sync"

	"log/slog"

	"vidforge/internal/blobstore"
	"vidforge/internal/catalog"
	"vidforge/internal/config"
	"vidforge/internal/library"
	"vidforge/internal/pipeline"
	"vidforge/internal/probe"
	"vidforge/internal/transcode"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// buildManager wires the full ingest stack from the loaded config. The
// caller owns closing the returned store.
func buildManager(cfg *config.Config, logger *slog.Logger) (*library.Manager, *catalog.Store, error) {
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := blobstore.NewFS(cfg.Paths.BlobDir)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	prober := probe.NewProber(cfg.Tools.FFprobeBinary)
	trans := transcode.New(cfg.Tools.FFmpegBinary, blobs)
	orchestrator := pipeline.NewOrchestrator(cfg, prober, trans, blobs, logger)
	pool := pipeline.NewPool(cfg.Pipeline.MaxConcurrent)
	manager := library.NewManager(cfg, store, blobs, orchestrator, pool, logger)
	return manager, store, nil
}
